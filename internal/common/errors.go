// Package common defines the sentinel errors shared by the store, the engine
// and the HTTP layer. Callers match them with errors.Is.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Engine-level errors.
	ErrUnauthorized     = errors.New("unauthorized")
	ErrIdentityNotFound = errors.New("identity not found")
	ErrValidation       = errors.New("validation error")
	ErrInternal         = errors.New("internal error")

	// Session errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
