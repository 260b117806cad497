package record_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/caremate/caremate/internal/api/models"
	"github.com/caremate/caremate/internal/record"
)

func TestService_Create(t *testing.T) {
	repo := record.NewInMemoryRepository()
	service := record.NewService(repo)
	ctx := context.Background()

	input := &models.RecordCreateRequest{
		Type:  models.RecordTypeAllergy,
		Title: "Penicillin allergy",
	}

	result, err := service.Create(ctx, "usr_1", input)
	if err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	if !strings.HasPrefix(result.ID, "rec_") {
		t.Errorf("expected record ID to start with 'rec_', got %q", result.ID)
	}
	if result.Type != models.RecordTypeAllergy {
		t.Errorf("expected type ALLERGY, got %q", result.Type)
	}
	if result.RecordedAt.Time().IsZero() {
		t.Error("expected recordedAt to default to creation time")
	}
}

func TestService_Create_ValidationErrors(t *testing.T) {
	repo := record.NewInMemoryRepository()
	service := record.NewService(repo)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     *models.RecordCreateRequest
		wantField string
	}{
		{
			name:      "missing type",
			input:     &models.RecordCreateRequest{Title: "X"},
			wantField: "type",
		},
		{
			name:      "unknown type",
			input:     &models.RecordCreateRequest{Type: "XRAY", Title: "X"},
			wantField: "type",
		},
		{
			name:      "missing title",
			input:     &models.RecordCreateRequest{Type: models.RecordTypeNote},
			wantField: "title",
		},
		{
			name: "title too long",
			input: &models.RecordCreateRequest{
				Type:  models.RecordTypeNote,
				Title: strings.Repeat("a", 121),
			},
			wantField: "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, "usr_1", tt.input)

			var vErr *record.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
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

func TestService_Get_WrongUser(t *testing.T) {
	repo := record.NewInMemoryRepository()
	service := record.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "usr_1", &models.RecordCreateRequest{
		Type:  models.RecordTypeCondition,
		Title: "Asthma",
	})
	if err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	_, err = service.Get(ctx, "usr_2", created.ID)
	if !errors.Is(err, record.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound for another user's record, got %v", err)
	}
}

func TestService_Update(t *testing.T) {
	repo := record.NewInMemoryRepository()
	service := record.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "usr_1", &models.RecordCreateRequest{
		Type:  models.RecordTypeMeasurement,
		Title: "Blood pressure 120/80",
	})
	if err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	newTitle := "Blood pressure 130/85"
	updated, err := service.Update(ctx, "usr_1", created.ID, &models.RecordUpdateRequest{
		Title: &newTitle,
	})
	if err != nil {
		t.Fatalf("failed to update record: %v", err)
	}

	if updated.Title != newTitle {
		t.Errorf("expected title %q, got %q", newTitle, updated.Title)
	}
}

func TestService_Delete(t *testing.T) {
	repo := record.NewInMemoryRepository()
	service := record.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "usr_1", &models.RecordCreateRequest{
		Type:  models.RecordTypeNote,
		Title: "Follow up in two weeks",
	})
	if err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	if err := service.Delete(ctx, "usr_1", created.ID); err != nil {
		t.Fatalf("failed to delete record: %v", err)
	}

	if _, err := service.Get(ctx, "usr_1", created.ID); !errors.Is(err, record.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound after delete, got %v", err)
	}
}
