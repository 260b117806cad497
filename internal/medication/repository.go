package medication

import "context"

// ListOptions contains options for listing medications.
type ListOptions struct {
	Limit      int
	Cursor     string
	ActiveOnly bool
}

// ListResult contains the results of listing medications.
type ListResult struct {
	Items      []*Medication
	NextCursor string
}

// Repository defines the interface for medication data persistence.
type Repository interface {
	// GetByUserAndID retrieves a medication by user ID and medication ID.
	// Returns ErrMedicationNotFound if the medication doesn't exist or
	// doesn't belong to the user.
	GetByUserAndID(ctx context.Context, userID, medicationID string) (*Medication, error)

	// List retrieves all medications for a user with pagination.
	List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error)

	// Create creates a new medication.
	Create(ctx context.Context, med *Medication) error

	// Update updates an existing medication.
	Update(ctx context.Context, med *Medication) error

	// Delete deletes a medication by ID.
	Delete(ctx context.Context, id string) error
}
