package validator

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidLocation  = errors.New("invalid location")
	ErrInvalidMagnitude = errors.New("invalid magnitude")
	ErrInvalidDate      = errors.New("invalid date")
)

const (
	MinMagnitude = 0.1
	MaxMagnitude = 10.0

	coordinateDecimals = 3
)

var locationPattern = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)$`)

// Validator enforces the write-time rules for earthquake records.
type Validator struct {
	now func() time.Time
}

// NewValidator creates a validator that compares dates against the wall clock
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorWithClock creates a validator with a fixed notion of "now"
func NewValidatorWithClock(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// NormalizeLocation validates a "<lat>, <long>" string and returns it with
// both coordinates rounded to three decimals.
func (v *Validator) NormalizeLocation(location string) (string, error) {
	lat, long, err := ParseCoordinates(location)
	if err != nil {
		return "", err
	}
	return FormatCoordinates(lat, long), nil
}

// ParseCoordinates splits and range-checks a "<lat>, <long>" string.
func ParseCoordinates(location string) (float64, float64, error) {
	m := locationPattern.FindStringSubmatch(strings.TrimSpace(location))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q is not in 'latitude, longitude' format", ErrInvalidLocation, location)
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: latitude: %v", ErrInvalidLocation, err)
	}
	long, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: longitude: %v", ErrInvalidLocation, err)
	}

	if err := CheckCoordinates(lat, long); err != nil {
		return 0, 0, err
	}
	return lat, long, nil
}

// CheckCoordinates range-checks raw coordinates. Callers holding numeric
// coordinates must check them before FormatCoordinates rounds them.
func CheckCoordinates(lat, long float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidLocation, lat)
	}
	if math.IsNaN(long) || long < -180 || long > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidLocation, long)
	}
	return nil
}

// FormatCoordinates renders the canonical "<lat>, <long>" form with each
// component rounded to three decimals and trailing zeros dropped.
func FormatCoordinates(lat, long float64) string {
	return roundCoordinate(lat) + ", " + roundCoordinate(long)
}

func roundCoordinate(value float64) string {
	fixed := strconv.FormatFloat(value, 'f', coordinateDecimals, 64)
	rounded, _ := strconv.ParseFloat(fixed, 64)
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// ValidateMagnitude checks that magnitude lies within [0.1, 10].
func (v *Validator) ValidateMagnitude(magnitude float64) error {
	if math.IsNaN(magnitude) || magnitude < MinMagnitude || magnitude > MaxMagnitude {
		return fmt.Errorf("%w: %v outside [%v, %v]", ErrInvalidMagnitude, magnitude, MinMagnitude, MaxMagnitude)
	}
	return nil
}

// ValidateDate rejects the zero time and any instant strictly after now.
func (v *Validator) ValidateDate(date time.Time) error {
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	if now := v.now(); date.After(now) {
		return fmt.Errorf("%w: %s is in the future", ErrInvalidDate, date.UTC().Format(time.RFC3339))
	}
	return nil
}
