// Package importer bulk loads catalogue CSV exports.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/validator"
	"go.uber.org/zap"
)

const DefaultBatchSize = 1000

// Column headers of a catalogue export.
const (
	ColumnDateTime  = "DateTime"
	ColumnLatitude  = "Latitude"
	ColumnLongitude = "Longitude"
	ColumnMagnitude = "Magnitude"
)

// Field names used in Summary.ErrorsByField.
const (
	FieldLocation  = "location"
	FieldMagnitude = "magnitude"
	FieldDate      = "date"
)

// Summary reports the outcome of one import.
type Summary struct {
	Total         int            `json:"total"`
	Valid         int            `json:"valid"`
	Invalid       int            `json:"invalid"`
	Skipped       int            `json:"skipped"`
	Inserted      int            `json:"inserted"`
	FailedBatches int            `json:"failedBatches"`
	ErrorsByField map[string]int `json:"errorsByField"`
}

type Importer struct {
	store     earthquake.BulkStore
	validator *validator.Validator
	batchSize int
	logger    *zap.Logger
}

// New creates an importer inserting through store in DefaultBatchSize batches.
func New(store earthquake.BulkStore, v *validator.Validator, logger *zap.Logger) *Importer {
	return &Importer{store: store, validator: v, batchSize: DefaultBatchSize, logger: logger}
}

// WithBatchSize overrides the insert batch size.
func (im *Importer) WithBatchSize(n int) *Importer {
	if n > 0 {
		im.batchSize = n
	}
	return im
}

// Import reads every row of r, validates it and inserts the valid ones.
// Rows missing a column value are skipped. A failed batch is logged and
// counted; only unreadable input or cancellation aborts the import.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{ErrorsByField: map[string]int{FieldLocation: 0, FieldMagnitude: 0, FieldDate: 0}}
	var valid []earthquake.NewRecord

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("failed to read CSV row %d: %w", summary.Total+2, err)
		}
		summary.Total++

		rec, field, ok := im.parseRow(row, cols)
		switch {
		case field == "" && !ok:
			summary.Skipped++
		case !ok:
			summary.Invalid++
			summary.ErrorsByField[field]++
		default:
			valid = append(valid, rec)
		}
	}
	summary.Valid = len(valid)

	im.logger.Info("validated CSV rows",
		zap.Int("total", summary.Total),
		zap.Int("valid", summary.Valid),
		zap.Int("invalid", summary.Invalid),
		zap.Int("skipped", summary.Skipped),
	)

	batches := (len(valid) + im.batchSize - 1) / im.batchSize
	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		start := b * im.batchSize
		end := min(start+im.batchSize, len(valid))

		n, err := im.store.CreateMany(ctx, valid[start:end])
		if err != nil {
			summary.FailedBatches++
			im.logger.Error("failed to insert batch",
				zap.Int("batch", b+1),
				zap.Int("batches", batches),
				zap.Error(err),
			)
			continue
		}
		summary.Inserted += n
		im.logger.Info("inserted batch",
			zap.Int("batch", b+1),
			zap.Int("batches", batches),
			zap.Int("inserted", n),
		)
	}

	return summary, nil
}

// parseRow returns the failing field name when the row is invalid, and an
// empty field with ok=false when the row is incomplete.
func (im *Importer) parseRow(row []string, cols map[string]int) (earthquake.NewRecord, string, bool) {
	values := make(map[string]string, len(cols))
	for name, idx := range cols {
		if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
			return earthquake.NewRecord{}, "", false
		}
		values[name] = strings.TrimSpace(row[idx])
	}

	lat, errLat := strconv.ParseFloat(values[ColumnLatitude], 64)
	long, errLong := strconv.ParseFloat(values[ColumnLongitude], 64)
	if errLat != nil || errLong != nil || validator.CheckCoordinates(lat, long) != nil {
		return earthquake.NewRecord{}, FieldLocation, false
	}
	magnitude, err := strconv.ParseFloat(values[ColumnMagnitude], 64)
	if err != nil {
		return earthquake.NewRecord{}, FieldMagnitude, false
	}

	rec, err := earthquake.Prepare(im.validator, earthquake.CreateInput{
		Location:  validator.FormatCoordinates(lat, long),
		Magnitude: magnitude,
		Date:      values[ColumnDateTime],
	})
	if err != nil {
		return earthquake.NewRecord{}, fieldOf(err), false
	}
	return rec, "", true
}

func fieldOf(err error) string {
	switch {
	case errors.Is(err, earthquake.ErrInvalidMagnitude):
		return FieldMagnitude
	case errors.Is(err, earthquake.ErrInvalidDate):
		return FieldDate
	default:
		return FieldLocation
	}
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, 4)
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch name {
		case ColumnDateTime, ColumnLatitude, ColumnLongitude, ColumnMagnitude:
			cols[name] = i
		}
	}
	for _, required := range []string{ColumnDateTime, ColumnLatitude, ColumnLongitude, ColumnMagnitude} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("CSV header is missing column %q", required)
		}
	}
	return cols, nil
}
