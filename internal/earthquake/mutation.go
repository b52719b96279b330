package earthquake

import (
	"context"
	"fmt"
	"time"

	"github.com/septivank/earthquake-catalog/internal/validator"
	"github.com/septivank/earthquake-catalog/tools/timeparser"
)

// MutationResolver validates and applies single-record writes. Like
// QueryResolver it keeps no state between calls.
type MutationResolver struct {
	store     Store
	validator *validator.Validator
}

// NewMutationResolver creates a resolver writing to store
func NewMutationResolver(store Store, v *validator.Validator) *MutationResolver {
	return &MutationResolver{store: store, validator: v}
}

// Create validates, normalizes and persists a new record.
func (r *MutationResolver) Create(ctx context.Context, in CreateInput) (Record, error) {
	rec, err := Prepare(r.validator, in)
	if err != nil {
		return Record{}, err
	}

	created, err := r.store.Create(ctx, rec)
	if err != nil {
		return Record{}, storeError("create earthquake", err)
	}
	return created, nil
}

// Update validates and applies only the supplied fields.
func (r *MutationResolver) Update(ctx context.Context, id string, in UpdateInput) (Record, error) {
	var patch Patch

	if in.Location != nil {
		location, err := r.validator.NormalizeLocation(*in.Location)
		if err != nil {
			return Record{}, err
		}
		patch.Location = &location
	}
	if in.Magnitude != nil {
		if err := r.validator.ValidateMagnitude(*in.Magnitude); err != nil {
			return Record{}, err
		}
		magnitude := *in.Magnitude
		patch.Magnitude = &magnitude
	}
	if in.Date != nil {
		date, err := parseDate(r.validator, *in.Date)
		if err != nil {
			return Record{}, err
		}
		patch.Date = &date
	}

	updated, err := r.store.Update(ctx, id, patch)
	if err != nil {
		return Record{}, storeError("update earthquake", err)
	}
	return updated, nil
}

// Delete removes a record. Deleting a missing id is ErrNotFound, including
// a second delete of the same id.
func (r *MutationResolver) Delete(ctx context.Context, id string) (bool, error) {
	if err := r.store.Delete(ctx, id); err != nil {
		return false, storeError("delete earthquake", err)
	}
	return true, nil
}

// Prepare runs the create rules over in without touching a store.
func Prepare(v *validator.Validator, in CreateInput) (NewRecord, error) {
	location, err := v.NormalizeLocation(in.Location)
	if err != nil {
		return NewRecord{}, err
	}
	if err := v.ValidateMagnitude(in.Magnitude); err != nil {
		return NewRecord{}, err
	}
	date, err := parseDate(v, in.Date)
	if err != nil {
		return NewRecord{}, err
	}
	return NewRecord{Location: location, Magnitude: in.Magnitude, Date: date}, nil
}

func parseDate(v *validator.Validator, raw string) (time.Time, error) {
	date, err := timeparser.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	if err := v.ValidateDate(date); err != nil {
		return time.Time{}, err
	}
	return date, nil
}
