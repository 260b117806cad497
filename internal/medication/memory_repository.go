package medication

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu   sync.RWMutex
	meds map[string]*Medication
}

// NewInMemoryRepository creates a new in-memory medication repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		meds: make(map[string]*Medication),
	}
}

// GetByUserAndID retrieves a medication by user ID and medication ID.
func (r *InMemoryRepository) GetByUserAndID(_ context.Context, userID, medicationID string) (*Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	med, ok := r.meds[medicationID]
	if !ok || med.UserID != userID {
		return nil, ErrMedicationNotFound
	}

	cpy := *med
	return &cpy, nil
}

// List retrieves all medications for a user with pagination.
func (r *InMemoryRepository) List(_ context.Context, userID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var meds []*Medication
	for _, med := range r.meds {
		if med.UserID != userID {
			continue
		}
		if opts.ActiveOnly && !med.Active {
			continue
		}
		cpy := *med
		meds = append(meds, &cpy)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{Items: meds}
	if len(meds) > limit {
		result.Items = meds[:limit]
		result.NextCursor = meds[limit-1].ID
	}

	return result, nil
}

// Create creates a new medication.
func (r *InMemoryRepository) Create(_ context.Context, med *Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *med
	r.meds[med.ID] = &cpy
	return nil
}

// Update updates an existing medication.
func (r *InMemoryRepository) Update(_ context.Context, med *Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.meds[med.ID]; !ok {
		return ErrMedicationNotFound
	}

	cpy := *med
	r.meds[med.ID] = &cpy
	return nil
}

// Delete deletes a medication by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.meds, id)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
