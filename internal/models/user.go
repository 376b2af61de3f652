package models

import "time"

// User represents a registered user in the system
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // Not serialized
	CreatedAt    time.Time `json:"created_at"`
}

// Registration is the input for creating a user. Password is plaintext and
// only ever reaches the credential hasher.
type Registration struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdate carries the mutable user fields.
type UserUpdate struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}
