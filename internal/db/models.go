package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/septivank/earthquake-catalog/internal/earthquake"
)

// EarthquakeRow represents an earthquake row in the database
type EarthquakeRow struct {
	ID        uuid.UUID
	Location  string
	Magnitude float64
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Columns lists the selected columns in scan order.
const Columns = "id, location, magnitude, date, created_at, updated_at"

// ScanTargets returns pointers matching Columns.
func (r *EarthquakeRow) ScanTargets() []any {
	return []any{&r.ID, &r.Location, &r.Magnitude, &r.Date, &r.CreatedAt, &r.UpdatedAt}
}

// Record converts the row to its domain form.
func (r EarthquakeRow) Record() earthquake.Record {
	return earthquake.Record{
		ID:        r.ID.String(),
		Location:  r.Location,
		Magnitude: r.Magnitude,
		Date:      r.Date.UTC(),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}
