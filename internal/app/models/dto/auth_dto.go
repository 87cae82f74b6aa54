package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/deniz/commverse/internal/app/models"
)

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=32"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName *string `json:"fullName,omitempty"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileResponse represents a user profile in API responses
type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  *string   `json:"fullName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TokenResponse represents a successful authentication
type TokenResponse struct {
	Token     string          `json:"token"`
	ExpiresIn int64           `json:"expiresIn"`
	User      ProfileResponse `json:"user"`
}

// NewProfileResponse maps a profile model to its response form
func NewProfileResponse(profile *models.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        profile.ID,
		Username:  profile.Username,
		Email:     profile.Email,
		FullName:  profile.FullName,
		CreatedAt: profile.CreatedAt,
	}
}
