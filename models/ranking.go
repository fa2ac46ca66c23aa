package models

import (
	"time"

	"github.com/google/uuid"
)

// Ranking is a membership's cumulative point ledger for its semester. The row
// is created lazily by the first settlement and incremented by later ones.
type Ranking struct {
	ID           int       `json:"id" db:"id"`
	MembershipID uuid.UUID `json:"membership_id" db:"membership_id"`
	Points       int       `json:"points" db:"points"`
	Attendance   int       `json:"attendance" db:"attendance"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RankingRow is the listing shape served to the admin UI, joined with the
// member behind each membership.
type RankingRow struct {
	MembershipID uuid.UUID `json:"membership_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Points       int       `json:"points"`
	Attendance   int       `json:"attendance"`
}
