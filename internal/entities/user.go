package entities

import "time"

// User represents an account holder in the database
type User struct {
	ID           string     `json:"id"` // UUID
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Don't expose password hash in JSON
	FullName     string     `json:"full_name"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"` // nil until the first successful login
}
