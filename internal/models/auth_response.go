package models

import (
	"time"

	"finanzas-be/internal/entities"
)

// UserResponse is the public view of an account
type UserResponse struct {
	ID          string     `json:"id"` // UUID
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// NewUserResponse strips everything a client must not see
func NewUserResponse(u *entities.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token     string       `json:"token"` // JWT token
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// RegisterResponse represents the response after user registration
type RegisterResponse struct {
	Message string       `json:"message"`
	Auth    AuthResponse `json:"auth"`
}

// SessionResponse describes the session behind the presented token
type SessionResponse struct {
	SessionID string       `json:"session_id"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// AvailabilityResponse answers username/email availability checks
type AvailabilityResponse struct {
	Value     string `json:"value"`
	Available bool   `json:"available"`
}
