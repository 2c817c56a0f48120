package auth

import "time"

// User represents a back-office account managed from the control panel.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateUserInput for control panel account creation.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	IsAdmin  bool
}

// UpdateUserInput for control panel account updates. A nil Password leaves
// the current hash untouched.
type UpdateUserInput struct {
	Name     string
	Password *string
	IsAdmin  bool
	IsActive bool
}
