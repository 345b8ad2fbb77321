package model

import "time"

// Student represents a registered learner account.
type Student struct {
	ID           int       `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Level        string    `json:"level"` // e.g. "SS3", "Year 11"
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the payload for student login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterRequest is the payload for creating a student account.
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Level    string `json:"level" binding:"omitempty,max=20"`
}
