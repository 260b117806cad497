package user

import "context"

// ListOptions contains options for listing users.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing users.
type ListResult struct {
	Items      []*User
	NextCursor string
}

// Repository defines the interface for user data persistence.
type Repository interface {
	// Get retrieves a user by ID. Returns ErrUserNotFound if absent.
	Get(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List retrieves users with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Create creates a new user. Returns ErrDuplicateEmail if the email
	// is already registered.
	Create(ctx context.Context, user *User) error

	// Update updates an existing user.
	Update(ctx context.Context, user *User) error

	// Delete deletes a user by ID.
	Delete(ctx context.Context, id string) error
}
