package earthquake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/septivank/earthquake-catalog/internal/validator"
)

var (
	// ErrValidation marks malformed pagination or query-state input.
	ErrValidation = errors.New("validation error")

	ErrInvalidLocation  = validator.ErrInvalidLocation
	ErrInvalidMagnitude = validator.ErrInvalidMagnitude
	ErrInvalidDate      = validator.ErrInvalidDate

	ErrNotFound = errors.New("earthquake not found")

	// ErrStoreUnavailable marks a transient store failure that the caller may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Wire codes for the error taxonomy.
const (
	CodeValidation       = "ValidationError"
	CodeInvalidLocation  = "InvalidLocation"
	CodeInvalidMagnitude = "InvalidMagnitude"
	CodeInvalidDate      = "InvalidDate"
	CodeNotFound         = "NotFound"
	CodeStoreUnavailable = "StoreUnavailable"
	CodeInternal         = "Internal"
)

var codes = []struct {
	code string
	err  error
}{
	{CodeValidation, ErrValidation},
	{CodeInvalidLocation, ErrInvalidLocation},
	{CodeInvalidMagnitude, ErrInvalidMagnitude},
	{CodeInvalidDate, ErrInvalidDate},
	{CodeNotFound, ErrNotFound},
	{CodeStoreUnavailable, ErrStoreUnavailable},
}

// Code returns the wire code for err.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// FromCode rebuilds a taxonomy error from its wire code and message.
func FromCode(code, message string) error {
	for _, c := range codes {
		if c.code == code {
			message = strings.TrimPrefix(message, c.err.Error()+": ")
			return fmt.Errorf("%w: %s", c.err, message)
		}
	}
	return fmt.Errorf("%s: %s", code, message)
}

// IsRetryable reports whether err is transient.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeError passes taxonomy errors and caller cancellation through and
// classifies everything else as ErrStoreUnavailable.
func storeError(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrStoreUnavailable) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
