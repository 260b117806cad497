// Package record provides health record management services.
package record

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrRecordNotFound = errors.New("health record not found")
)

// HealthRecord represents one entry in a user's health history.
type HealthRecord struct {
	ID         string
	UserID     string
	Type       string
	Title      string
	Detail     *string
	RecordedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
