package models

import (
	"time"

	"github.com/google/uuid"
)

// Semester is the scoping unit for memberships, events and the points ranking.
type Semester struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
