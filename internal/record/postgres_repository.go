package record

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

// NewPostgresRepository creates a new PostgreSQL health record repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const recordColumns = `id, user_id, record_type, title, detail, recorded_at, created_at, updated_at`

// GetByUserAndID retrieves a record by user ID and record ID.
func (r *PostgresRepository) GetByUserAndID(ctx context.Context, userID, recordID string) (*HealthRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM health_records WHERE id = $1 AND user_id = $2`

	var rec HealthRecord
	err := r.pool.QueryRow(ctx, query, recordID, userID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Type,
		&rec.Title,
		&rec.Detail,
		&rec.RecordedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &rec, nil
}

// List retrieves all records for a user with pagination.
func (r *PostgresRepository) List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT ` + recordColumns + `
		FROM health_records
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*HealthRecord
	for rows.Next() {
		var rec HealthRecord
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Type,
			&rec.Title,
			&rec.Detail,
			&rec.RecordedAt,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{Items: records}
	if len(records) > limit {
		result.Items = records[:limit]
		result.NextCursor = records[limit-1].ID
	}

	return result, nil
}

// Create creates a new record.
func (r *PostgresRepository) Create(ctx context.Context, rec *HealthRecord) error {
	query := `
		INSERT INTO health_records (id, user_id, record_type, title, detail, recorded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Type,
		rec.Title,
		rec.Detail,
		rec.RecordedAt,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

// Update updates an existing record.
func (r *PostgresRepository) Update(ctx context.Context, rec *HealthRecord) error {
	query := `
		UPDATE health_records SET
			record_type = $2,
			title = $3,
			detail = $4,
			recorded_at = $5,
			updated_at = $6
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.Type,
		rec.Title,
		rec.Detail,
		rec.RecordedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// Delete deletes a record by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM health_records WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
