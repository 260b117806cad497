package record

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*HealthRecord
}

// NewInMemoryRepository creates a new in-memory health record repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string]*HealthRecord),
	}
}

// GetByUserAndID retrieves a record by user ID and record ID.
func (r *InMemoryRepository) GetByUserAndID(_ context.Context, userID, recordID string) (*HealthRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[recordID]
	if !ok || rec.UserID != userID {
		return nil, ErrRecordNotFound
	}

	cpy := *rec
	return &cpy, nil
}

// List retrieves all records for a user with pagination.
func (r *InMemoryRepository) List(_ context.Context, userID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*HealthRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			cpy := *rec
			records = append(records, &cpy)
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{Items: records}
	if len(records) > limit {
		result.Items = records[:limit]
		result.NextCursor = records[limit-1].ID
	}

	return result, nil
}

// Create creates a new record.
func (r *InMemoryRepository) Create(_ context.Context, rec *HealthRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *rec
	r.records[rec.ID] = &cpy
	return nil
}

// Update updates an existing record.
func (r *InMemoryRepository) Update(_ context.Context, rec *HealthRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.ID]; !ok {
		return ErrRecordNotFound
	}

	cpy := *rec
	r.records[rec.ID] = &cpy
	return nil
}

// Delete deletes a record by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
