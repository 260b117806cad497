package medication

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL medication repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const medicationColumns = `id, user_id, name, dosage, schedule, notes, active, created_at, updated_at`

// GetByUserAndID retrieves a medication by user ID and medication ID.
func (r *PostgresRepository) GetByUserAndID(ctx context.Context, userID, medicationID string) (*Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE id = $1 AND user_id = $2`

	var med Medication
	err := r.pool.QueryRow(ctx, query, medicationID, userID).Scan(
		&med.ID,
		&med.UserID,
		&med.Name,
		&med.Dosage,
		&med.Schedule,
		&med.Notes,
		&med.Active,
		&med.CreatedAt,
		&med.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMedicationNotFound
		}
		return nil, err
	}

	return &med, nil
}

// List retrieves all medications for a user with pagination.
func (r *PostgresRepository) List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT ` + medicationColumns + `
		FROM medications
		WHERE user_id = $1 AND ($2 = false OR active = true)
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, userID, opts.ActiveOnly, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []*Medication
	for rows.Next() {
		var med Medication
		err := rows.Scan(
			&med.ID,
			&med.UserID,
			&med.Name,
			&med.Dosage,
			&med.Schedule,
			&med.Notes,
			&med.Active,
			&med.CreatedAt,
			&med.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		meds = append(meds, &med)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{Items: meds}
	if len(meds) > limit {
		result.Items = meds[:limit]
		result.NextCursor = meds[limit-1].ID
	}

	return result, nil
}

// Create creates a new medication.
func (r *PostgresRepository) Create(ctx context.Context, med *Medication) error {
	query := `
		INSERT INTO medications (id, user_id, name, dosage, schedule, notes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		med.ID,
		med.UserID,
		med.Name,
		med.Dosage,
		med.Schedule,
		med.Notes,
		med.Active,
		med.CreatedAt,
		med.UpdatedAt,
	)
	return err
}

// Update updates an existing medication.
func (r *PostgresRepository) Update(ctx context.Context, med *Medication) error {
	query := `
		UPDATE medications SET
			name = $2,
			dosage = $3,
			schedule = $4,
			notes = $5,
			active = $6,
			updated_at = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		med.ID,
		med.Name,
		med.Dosage,
		med.Schedule,
		med.Notes,
		med.Active,
		med.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrMedicationNotFound
	}

	return nil
}

// Delete deletes a medication by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM medications WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
