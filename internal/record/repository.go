package record

import "context"

// ListOptions contains options for listing health records.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing health records.
type ListResult struct {
	Items      []*HealthRecord
	NextCursor string
}

// Repository defines the interface for health record persistence.
type Repository interface {
	// GetByUserAndID retrieves a record by user ID and record ID.
	// Returns ErrRecordNotFound if the record doesn't exist or doesn't
	// belong to the user.
	GetByUserAndID(ctx context.Context, userID, recordID string) (*HealthRecord, error)

	// List retrieves all records for a user with pagination.
	List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error)

	// Create creates a new record.
	Create(ctx context.Context, rec *HealthRecord) error

	// Update updates an existing record.
	Update(ctx context.Context, rec *HealthRecord) error

	// Delete deletes a record by ID.
	Delete(ctx context.Context, id string) error
}
