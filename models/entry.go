package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one membership's registration record for one event. SignedOutAt is
// nil while the player is still in; Placement stays nil until the event is
// ended, after which the record is a historical artifact and never mutated.
type Entry struct {
	ID           int        `json:"id" db:"id"`
	MembershipID uuid.UUID  `json:"membership_id" db:"membership_id"`
	EventID      int        `json:"event_id" db:"event_id"`
	SignedOutAt  *time.Time `json:"signed_out_at,omitempty" db:"signed_out_at"`
	Placement    *int       `json:"placement,omitempty" db:"placement"`
	Rebuys       int        `json:"rebuys" db:"rebuys"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`

	// Optional joined member data, populated by list queries.
	FirstName string `json:"first_name,omitempty" db:"-"`
	LastName  string `json:"last_name,omitempty" db:"-"`
}
