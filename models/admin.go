package models

import "time"

type AdminRole string

const (
	RoleAdmin     AdminRole = "admin"
	RoleExecutive AdminRole = "executive"
)

// Admin is a club executive allowed into the administration UI.
type Admin struct {
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         AdminRole `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
