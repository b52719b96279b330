package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/septivank/earthquake-catalog/internal/db"
	"github.com/septivank/earthquake-catalog/internal/earthquake"
)

// Repository is the Postgres implementation of earthquake.Store
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var (
	_ earthquake.Store     = (*Repository)(nil)
	_ earthquake.BulkStore = (*Repository)(nil)
)

// List returns one ordered window of matching earthquakes
func (r *Repository) List(ctx context.Context, q earthquake.ListQuery) ([]earthquake.Record, error) {
	query, args := buildListQuery(q)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query earthquakes: %w", err)
	}
	defer rows.Close()

	records := make([]earthquake.Record, 0, q.Take)
	for rows.Next() {
		var row db.EarthquakeRow
		if err := rows.Scan(row.ScanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan earthquake: %w", err)
		}
		records = append(records, row.Record())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// Count returns the number of earthquakes matching f
func (r *Repository) Count(ctx context.Context, f earthquake.Filter) (int, error) {
	query, args := buildCountQuery(f)

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count earthquakes: %w", err)
	}
	return count, nil
}

// Get retrieves a single earthquake
func (r *Repository) Get(ctx context.Context, id string) (earthquake.Record, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return earthquake.Record{}, earthquake.ErrNotFound
	}

	query := `SELECT ` + db.Columns + ` FROM earthquakes WHERE id = $1`

	var row db.EarthquakeRow
	if err := r.pool.QueryRow(ctx, query, uid).Scan(row.ScanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return earthquake.Record{}, earthquake.ErrNotFound
		}
		return earthquake.Record{}, fmt.Errorf("failed to query earthquake: %w", err)
	}
	return row.Record(), nil
}

// Create inserts an earthquake and returns the stored row
func (r *Repository) Create(ctx context.Context, rec earthquake.NewRecord) (earthquake.Record, error) {
	query := `
		INSERT INTO earthquakes (location, magnitude, date)
		VALUES ($1, $2, $3)
		RETURNING ` + db.Columns

	var row db.EarthquakeRow
	if err := r.pool.QueryRow(ctx, query, rec.Location, rec.Magnitude, rec.Date).Scan(row.ScanTargets()...); err != nil {
		return earthquake.Record{}, fmt.Errorf("failed to insert earthquake: %w", err)
	}
	return row.Record(), nil
}

// CreateMany bulk inserts pre-validated earthquakes with COPY
func (r *Repository) CreateMany(ctx context.Context, recs []earthquake.NewRecord) (int, error) {
	rows := make([][]any, len(recs))
	for i, rec := range recs {
		rows[i] = []any{rec.Location, rec.Magnitude, rec.Date}
	}

	n, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"earthquakes"},
		[]string{"location", "magnitude", "date"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy earthquakes: %w", err)
	}
	return int(n), nil
}

// Update applies the supplied fields and refreshes updated_at
func (r *Repository) Update(ctx context.Context, id string, patch earthquake.Patch) (earthquake.Record, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return earthquake.Record{}, earthquake.ErrNotFound
	}

	query, args := buildUpdateQuery(uid, patch)

	var row db.EarthquakeRow
	if err := r.pool.QueryRow(ctx, query, args...).Scan(row.ScanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return earthquake.Record{}, earthquake.ErrNotFound
		}
		return earthquake.Record{}, fmt.Errorf("failed to update earthquake: %w", err)
	}
	return row.Record(), nil
}

// Delete removes an earthquake
func (r *Repository) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return earthquake.ErrNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM earthquakes WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("failed to delete earthquake: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return earthquake.ErrNotFound
	}
	return nil
}
