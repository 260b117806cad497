// Package medication provides medication list management services.
package medication

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrMedicationNotFound = errors.New("medication not found")
)

// Medication represents a medication a user is taking.
type Medication struct {
	ID        string
	UserID    string
	Name      string
	Dosage    string
	Schedule  string
	Notes     *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
