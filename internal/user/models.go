// Package user provides patient account management services.
package user

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// User represents a patient account.
type User struct {
	ID          string
	Email       string
	DisplayName string
	DateOfBirth *string
	Locale      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
