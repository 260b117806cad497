package medication

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caremate/caremate/internal/api/models"
)

// Validation constants.
const (
	MaxNameLength     = 120
	MaxDosageLength   = 80
	MaxScheduleLength = 120
	MaxNotesLength    = 500
)

// Service provides medication list operations.
type Service struct {
	repo Repository
}

// NewService creates a new medication service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves all medications for a user.
func (s *Service) List(ctx context.Context, userID string, limit int, activeOnly bool) (*models.PagedMedications, error) {
	result, err := s.repo.List(ctx, userID, ListOptions{Limit: limit, ActiveOnly: activeOnly})
	if err != nil {
		return nil, err
	}

	items := make([]models.Medication, 0, len(result.Items))
	for _, med := range result.Items {
		items = append(items, s.toAPIMedication(med))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedMedications{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a medication by ID for a user.
func (s *Service) Get(ctx context.Context, userID, medicationID string) (*models.Medication, error) {
	med, err := s.repo.GetByUserAndID(ctx, userID, medicationID)
	if err != nil {
		return nil, err
	}

	result := s.toAPIMedication(med)
	return &result, nil
}

// Create adds a new medication to a user's list. New medications are
// active until explicitly deactivated.
func (s *Service) Create(ctx context.Context, userID string, input *models.MedicationCreateRequest) (*models.Medication, error) {
	if fieldErrors := s.validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	med := &Medication{
		ID:        "med_" + uuid.New().String()[:22],
		UserID:    userID,
		Name:      input.Name,
		Dosage:    input.Dosage,
		Schedule:  input.Schedule,
		Notes:     input.Notes,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, med); err != nil {
		return nil, err
	}

	result := s.toAPIMedication(med)
	return &result, nil
}

// Update updates an existing medication for a user.
func (s *Service) Update(ctx context.Context, userID, medicationID string, input *models.MedicationUpdateRequest) (*models.Medication, error) {
	med, err := s.repo.GetByUserAndID(ctx, userID, medicationID)
	if err != nil {
		return nil, err
	}

	if fieldErrors := s.validateUpdateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if input.Name != nil {
		med.Name = *input.Name
	}
	if input.Dosage != nil {
		med.Dosage = *input.Dosage
	}
	if input.Schedule != nil {
		med.Schedule = *input.Schedule
	}
	if input.Notes != nil {
		med.Notes = input.Notes
	}
	if input.Active != nil {
		med.Active = *input.Active
	}
	med.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, med); err != nil {
		return nil, err
	}

	result := s.toAPIMedication(med)
	return &result, nil
}

// Delete deletes a medication for a user.
func (s *Service) Delete(ctx context.Context, userID, medicationID string) error {
	if _, err := s.repo.GetByUserAndID(ctx, userID, medicationID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, medicationID)
}

func (s *Service) validateCreateInput(input *models.MedicationCreateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Name == "" {
		errs = append(errs, models.FieldError{Field: "name", Message: "is required"})
	} else if len(input.Name) > MaxNameLength {
		errs = append(errs, models.FieldError{Field: "name", Message: "must be at most 120 characters"})
	}

	if input.Dosage == "" {
		errs = append(errs, models.FieldError{Field: "dosage", Message: "is required"})
	} else if len(input.Dosage) > MaxDosageLength {
		errs = append(errs, models.FieldError{Field: "dosage", Message: "must be at most 80 characters"})
	}

	if input.Schedule == "" {
		errs = append(errs, models.FieldError{Field: "schedule", Message: "is required"})
	} else if len(input.Schedule) > MaxScheduleLength {
		errs = append(errs, models.FieldError{Field: "schedule", Message: "must be at most 120 characters"})
	}

	if input.Notes != nil && len(*input.Notes) > MaxNotesLength {
		errs = append(errs, models.FieldError{Field: "notes", Message: "must be at most 500 characters"})
	}

	return errs
}

func (s *Service) validateUpdateInput(input *models.MedicationUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Name != nil {
		if *input.Name == "" {
			errs = append(errs, models.FieldError{Field: "name", Message: "cannot be empty"})
		} else if len(*input.Name) > MaxNameLength {
			errs = append(errs, models.FieldError{Field: "name", Message: "must be at most 120 characters"})
		}
	}

	if input.Dosage != nil && len(*input.Dosage) > MaxDosageLength {
		errs = append(errs, models.FieldError{Field: "dosage", Message: "must be at most 80 characters"})
	}

	if input.Schedule != nil && len(*input.Schedule) > MaxScheduleLength {
		errs = append(errs, models.FieldError{Field: "schedule", Message: "must be at most 120 characters"})
	}

	if input.Notes != nil && len(*input.Notes) > MaxNotesLength {
		errs = append(errs, models.FieldError{Field: "notes", Message: "must be at most 500 characters"})
	}

	return errs
}

func (s *Service) toAPIMedication(med *Medication) models.Medication {
	return models.Medication{
		ID:        med.ID,
		UserID:    med.UserID,
		Name:      med.Name,
		Dosage:    med.Dosage,
		Schedule:  med.Schedule,
		Notes:     med.Notes,
		Active:    med.Active,
		CreatedAt: models.Timestamp(med.CreatedAt),
		UpdatedAt: models.Timestamp(med.UpdatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
