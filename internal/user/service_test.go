package user_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/caremate/caremate/internal/api/models"
	"github.com/caremate/caremate/internal/user"
)

func TestService_Create(t *testing.T) {
	repo := user.NewInMemoryRepository()
	service := user.NewService(repo)
	ctx := context.Background()

	input := &models.UserCreateRequest{
		Email:       "jo@example.com",
		DisplayName: "Jo",
	}

	result, err := service.Create(ctx, input)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if result.ID == "" {
		t.Error("expected user ID to be set")
	}
	if !strings.HasPrefix(result.ID, "usr_") {
		t.Errorf("expected user ID to start with 'usr_', got %q", result.ID)
	}
	if result.Locale != user.DefaultLocale {
		t.Errorf("expected default locale %q, got %q", user.DefaultLocale, result.Locale)
	}
}

func TestService_Create_ValidationErrors(t *testing.T) {
	repo := user.NewInMemoryRepository()
	service := user.NewService(repo)
	ctx := context.Background()

	dob := "not-a-date"

	tests := []struct {
		name      string
		input     *models.UserCreateRequest
		wantField string
	}{
		{
			name:      "missing email",
			input:     &models.UserCreateRequest{DisplayName: "Jo"},
			wantField: "email",
		},
		{
			name:      "invalid email",
			input:     &models.UserCreateRequest{Email: "nope", DisplayName: "Jo"},
			wantField: "email",
		},
		{
			name:      "missing display name",
			input:     &models.UserCreateRequest{Email: "jo@example.com"},
			wantField: "displayName",
		},
		{
			name: "display name too long",
			input: &models.UserCreateRequest{
				Email:       "jo@example.com",
				DisplayName: strings.Repeat("a", 81),
			},
			wantField: "displayName",
		},
		{
			name: "invalid date of birth",
			input: &models.UserCreateRequest{
				Email:       "jo@example.com",
				DisplayName: "Jo",
				DateOfBirth: &dob,
			},
			wantField: "dateOfBirth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var vErr *user.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}

			found := false
			for _, fe := range vErr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %v", tt.wantField, vErr.Errors)
			}
		})
	}
}

func TestService_Create_DuplicateEmail(t *testing.T) {
	repo := user.NewInMemoryRepository()
	service := user.NewService(repo)
	ctx := context.Background()

	input := &models.UserCreateRequest{Email: "jo@example.com", DisplayName: "Jo"}

	if _, err := service.Create(ctx, input); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := service.Create(ctx, input)
	if !errors.Is(err, user.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestService_Update(t *testing.T) {
	repo := user.NewInMemoryRepository()
	service := user.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, &models.UserCreateRequest{
		Email:       "jo@example.com",
		DisplayName: "Jo",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	newName := "Jordan"
	updated, err := service.Update(ctx, created.ID, &models.UserUpdateRequest{
		DisplayName: &newName,
	})
	if err != nil {
		t.Fatalf("failed to update user: %v", err)
	}

	if updated.DisplayName != newName {
		t.Errorf("expected display name %q, got %q", newName, updated.DisplayName)
	}
	if updated.Email != created.Email {
		t.Errorf("expected email unchanged, got %q", updated.Email)
	}
}

func TestService_Get_NotFound(t *testing.T) {
	repo := user.NewInMemoryRepository()
	service := user.NewService(repo)

	_, err := service.Get(context.Background(), "usr_missing")
	if !errors.Is(err, user.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	repo := user.NewInMemoryRepository()
	service := user.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, &models.UserCreateRequest{
		Email:       "jo@example.com",
		DisplayName: "Jo",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if err := service.Delete(ctx, created.ID); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	if _, err := service.Get(ctx, created.ID); !errors.Is(err, user.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after delete, got %v", err)
	}
}
