package models

import "time"

// Member is a person known to the club. The ID is the student number, so it is
// provided by the caller rather than generated by the database.
type Member struct {
	ID        int       `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
