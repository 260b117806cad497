package record

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caremate/caremate/internal/api/models"
)

// Validation constants.
const (
	MaxTitleLength  = 120
	MaxDetailLength = 2000
)

var validTypes = map[models.RecordType]bool{
	models.RecordTypeCondition:   true,
	models.RecordTypeAllergy:     true,
	models.RecordTypeMeasurement: true,
	models.RecordTypeNote:        true,
}

// Service provides health record operations.
type Service struct {
	repo Repository
}

// NewService creates a new health record service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves all records for a user.
func (s *Service) List(ctx context.Context, userID string, limit int) (*models.PagedRecords, error) {
	result, err := s.repo.List(ctx, userID, ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	items := make([]models.HealthRecord, 0, len(result.Items))
	for _, rec := range result.Items {
		items = append(items, s.toAPIRecord(rec))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedRecords{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a record by ID for a user.
func (s *Service) Get(ctx context.Context, userID, recordID string) (*models.HealthRecord, error) {
	rec, err := s.repo.GetByUserAndID(ctx, userID, recordID)
	if err != nil {
		return nil, err
	}

	result := s.toAPIRecord(rec)
	return &result, nil
}

// Create creates a new health record for a user.
func (s *Service) Create(ctx context.Context, userID string, input *models.RecordCreateRequest) (*models.HealthRecord, error) {
	if fieldErrors := s.validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	recordedAt := now
	if input.RecordedAt != nil {
		recordedAt = input.RecordedAt.Time()
	}

	rec := &HealthRecord{
		ID:         "rec_" + uuid.New().String()[:22],
		UserID:     userID,
		Type:       string(input.Type),
		Title:      input.Title,
		Detail:     input.Detail,
		RecordedAt: recordedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	result := s.toAPIRecord(rec)
	return &result, nil
}

// Update updates an existing health record for a user.
func (s *Service) Update(ctx context.Context, userID, recordID string, input *models.RecordUpdateRequest) (*models.HealthRecord, error) {
	rec, err := s.repo.GetByUserAndID(ctx, userID, recordID)
	if err != nil {
		return nil, err
	}

	if fieldErrors := s.validateUpdateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if input.Type != nil {
		rec.Type = string(*input.Type)
	}
	if input.Title != nil {
		rec.Title = *input.Title
	}
	if input.Detail != nil {
		rec.Detail = input.Detail
	}
	if input.RecordedAt != nil {
		rec.RecordedAt = input.RecordedAt.Time()
	}
	rec.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}

	result := s.toAPIRecord(rec)
	return &result, nil
}

// Delete deletes a health record for a user.
func (s *Service) Delete(ctx context.Context, userID, recordID string) error {
	if _, err := s.repo.GetByUserAndID(ctx, userID, recordID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, recordID)
}

func (s *Service) validateCreateInput(input *models.RecordCreateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Type == "" {
		errs = append(errs, models.FieldError{Field: "type", Message: "is required"})
	} else if !validTypes[input.Type] {
		errs = append(errs, models.FieldError{Field: "type", Message: "must be one of CONDITION, ALLERGY, MEASUREMENT, NOTE"})
	}

	if input.Title == "" {
		errs = append(errs, models.FieldError{Field: "title", Message: "is required"})
	} else if len(input.Title) > MaxTitleLength {
		errs = append(errs, models.FieldError{Field: "title", Message: "must be at most 120 characters"})
	}

	if input.Detail != nil && len(*input.Detail) > MaxDetailLength {
		errs = append(errs, models.FieldError{Field: "detail", Message: "must be at most 2000 characters"})
	}

	return errs
}

func (s *Service) validateUpdateInput(input *models.RecordUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Type != nil && !validTypes[*input.Type] {
		errs = append(errs, models.FieldError{Field: "type", Message: "must be one of CONDITION, ALLERGY, MEASUREMENT, NOTE"})
	}

	if input.Title != nil {
		if *input.Title == "" {
			errs = append(errs, models.FieldError{Field: "title", Message: "cannot be empty"})
		} else if len(*input.Title) > MaxTitleLength {
			errs = append(errs, models.FieldError{Field: "title", Message: "must be at most 120 characters"})
		}
	}

	if input.Detail != nil && len(*input.Detail) > MaxDetailLength {
		errs = append(errs, models.FieldError{Field: "detail", Message: "must be at most 2000 characters"})
	}

	return errs
}

func (s *Service) toAPIRecord(rec *HealthRecord) models.HealthRecord {
	return models.HealthRecord{
		ID:         rec.ID,
		UserID:     rec.UserID,
		Type:       models.RecordType(rec.Type),
		Title:      rec.Title,
		Detail:     rec.Detail,
		RecordedAt: models.Timestamp(rec.RecordedAt),
		CreatedAt:  models.Timestamp(rec.CreatedAt),
		UpdatedAt:  models.Timestamp(rec.UpdatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
