package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership ties a member to one semester. A member has at most one
// membership per semester, and all entry and ranking records hang off it.
type Membership struct {
	ID         uuid.UUID `json:"id" db:"id"`
	MemberID   int       `json:"member_id" db:"member_id"`
	SemesterID uuid.UUID `json:"semester_id" db:"semester_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Optional joined member data, populated by list queries.
	Member *Member `json:"member,omitempty" db:"-"`
}
