package dto

import (
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UserCreateRequest payload.
type UserCreateRequest struct {
	FullName     string           `json:"full_name"`
	Email        string           `json:"email"`
	Password     string           `json:"password"`
	Role         domain.StaffRole `json:"role"`
	Capacity     *int             `json:"capacity"`
	TeamLeaderID *string          `json:"team_leader_id"`
}

// UserUpdateRequest payload.
type UserUpdateRequest struct {
	FullName     string           `json:"full_name"`
	Email        string           `json:"email"`
	Role         domain.StaffRole `json:"role"`
	Capacity     *int             `json:"capacity"`
	TeamLeaderID *string          `json:"team_leader_id"`
	Active       *bool            `json:"active"`
}

// UserResponse represents a staff member.
type UserResponse struct {
	ID           string           `json:"id"`
	FullName     string           `json:"full_name"`
	Email        string           `json:"email"`
	Role         domain.StaffRole `json:"role"`
	Capacity     *int             `json:"capacity"`
	TeamLeaderID *string          `json:"team_leader_id"`
	Active       bool             `json:"active"`
	CreatedAt    time.Time        `json:"created_at"`
}
