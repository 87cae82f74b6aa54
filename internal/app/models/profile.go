package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile defines the user profile model based on the 'profiles' table
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"` // Hashed password (excluded from JSON)
	FullName  *string   `json:"fullName,omitempty" db:"full_name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
