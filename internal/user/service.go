package user

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/caremate/caremate/internal/api/models"
)

// Validation constants.
const (
	MaxDisplayNameLength = 80
	DefaultLocale        = "en-US"
)

// emailRegex is a pragmatic address check, not a full RFC 5322 parse.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// dateRegex validates YYYY-MM-DD format.
var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Service provides user account operations.
type Service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves users with pagination.
func (s *Service) List(ctx context.Context, limit int) (*models.PagedUsers, error) {
	result, err := s.repo.List(ctx, ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	items := make([]models.User, 0, len(result.Items))
	for _, u := range result.Items {
		items = append(items, s.toAPIUser(u))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedUsers{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := s.toAPIUser(u)
	return &result, nil
}

// Create creates a new user account.
func (s *Service) Create(ctx context.Context, input *models.UserCreateRequest) (*models.User, error) {
	if fieldErrors := s.validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	locale := input.Locale
	if locale == "" {
		locale = DefaultLocale
	}

	u := &User{
		ID:          "usr_" + uuid.New().String()[:22],
		Email:       input.Email,
		DisplayName: input.DisplayName,
		DateOfBirth: input.DateOfBirth,
		Locale:      locale,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	result := s.toAPIUser(u)
	return &result, nil
}

// Update updates an existing user account.
func (s *Service) Update(ctx context.Context, userID string, input *models.UserUpdateRequest) (*models.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if fieldErrors := s.validateUpdateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if input.Email != nil {
		u.Email = *input.Email
	}
	if input.DisplayName != nil {
		u.DisplayName = *input.DisplayName
	}
	if input.DateOfBirth != nil {
		u.DateOfBirth = input.DateOfBirth
	}
	if input.Locale != nil {
		u.Locale = *input.Locale
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	result := s.toAPIUser(u)
	return &result, nil
}

// Delete deletes a user account.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if _, err := s.repo.Get(ctx, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID)
}

func (s *Service) validateCreateInput(input *models.UserCreateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Email == "" {
		errs = append(errs, models.FieldError{Field: "email", Message: "is required"})
	} else if !emailRegex.MatchString(input.Email) {
		errs = append(errs, models.FieldError{Field: "email", Message: "must be a valid email address"})
	}

	if input.DisplayName == "" {
		errs = append(errs, models.FieldError{Field: "displayName", Message: "is required"})
	} else if len(input.DisplayName) > MaxDisplayNameLength {
		errs = append(errs, models.FieldError{Field: "displayName", Message: "must be at most 80 characters"})
	}

	if input.DateOfBirth != nil && !dateRegex.MatchString(*input.DateOfBirth) {
		errs = append(errs, models.FieldError{Field: "dateOfBirth", Message: "must be in YYYY-MM-DD format"})
	}

	return errs
}

func (s *Service) validateUpdateInput(input *models.UserUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Email != nil {
		if *input.Email == "" {
			errs = append(errs, models.FieldError{Field: "email", Message: "cannot be empty"})
		} else if !emailRegex.MatchString(*input.Email) {
			errs = append(errs, models.FieldError{Field: "email", Message: "must be a valid email address"})
		}
	}

	if input.DisplayName != nil {
		if *input.DisplayName == "" {
			errs = append(errs, models.FieldError{Field: "displayName", Message: "cannot be empty"})
		} else if len(*input.DisplayName) > MaxDisplayNameLength {
			errs = append(errs, models.FieldError{Field: "displayName", Message: "must be at most 80 characters"})
		}
	}

	if input.DateOfBirth != nil && !dateRegex.MatchString(*input.DateOfBirth) {
		errs = append(errs, models.FieldError{Field: "dateOfBirth", Message: "must be in YYYY-MM-DD format"})
	}

	return errs
}

func (s *Service) toAPIUser(u *User) models.User {
	return models.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		DateOfBirth: u.DateOfBirth,
		Locale:      u.Locale,
		CreatedAt:   models.Timestamp(u.CreatedAt),
		UpdatedAt:   models.Timestamp(u.UpdatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
