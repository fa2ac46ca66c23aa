package models

import (
	"time"

	"github.com/google/uuid"
)

// EventState mirrors the event_state ENUM in the database.
type EventState string

const (
	EventStateActive EventState = "active"
	EventStateEnded  EventState = "ended"
)

// Event is a single tournament night. Entry mutations are only permitted while
// the state is active; ending an event assigns placements and settles points.
type Event struct {
	ID         int        `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Format     string     `json:"format" db:"format"`
	StartDate  time.Time  `json:"start_date" db:"start_date"`
	Notes      *string    `json:"notes,omitempty" db:"notes"`
	SemesterID uuid.UUID  `json:"semester_id" db:"semester_id"`
	State      EventState `json:"state" db:"state"`
	Rebuys     int        `json:"rebuys" db:"rebuys"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`

	// Optional related entities, populated by the service layer.
	Entries []*Entry `json:"entries,omitempty" db:"-"`
}
