package validator_test

import (
	"math"
	"testing"
	"time"

	"github.com/septivank/earthquake-catalog/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 12, 29, 10, 30, 0, 0, time.UTC)

func newTestValidator() *validator.Validator {
	return validator.NewValidatorWithClock(func() time.Time { return testNow })
}

func TestNormalizeLocation_RoundsToThreeDecimals(t *testing.T) {
	v := newTestValidator()

	location, err := v.NormalizeLocation("34.05217, -118.24368")

	require.NoError(t, err)
	assert.Equal(t, "34.052, -118.244", location)
}

func TestNormalizeLocation_CanonicalSpacing(t *testing.T) {
	v := newTestValidator()

	cases := map[string]string{
		"34.0522,-118.2437":    "34.052, -118.244",
		"  10 ,  20  ":         "10, 20",
		"-0.0001, 0.0004":      "0, 0",
		"45.1000, 100.2500":    "45.1, 100.25",
		"90, -180":             "90, -180",
		"-89.99951, 179.99949": "-90, 179.999",
	}
	for input, expected := range cases {
		location, err := v.NormalizeLocation(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, expected, location, "input %q", input)
	}
}

func TestNormalizeLocation_Invalid(t *testing.T) {
	v := newTestValidator()

	for _, input := range []string{"", "Los Angeles", "34.05", "91, 0", "0, 180.5", "-90.1, 0", "1,2,3", "a, b"} {
		_, err := v.NormalizeLocation(input)
		assert.ErrorIs(t, err, validator.ErrInvalidLocation, "input %q", input)
	}
}

func TestValidateMagnitude_Boundaries(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateMagnitude(0.1))
	assert.NoError(t, v.ValidateMagnitude(10))
	assert.NoError(t, v.ValidateMagnitude(5.5))

	assert.ErrorIs(t, v.ValidateMagnitude(0.09), validator.ErrInvalidMagnitude)
	assert.ErrorIs(t, v.ValidateMagnitude(10.01), validator.ErrInvalidMagnitude)
	assert.ErrorIs(t, v.ValidateMagnitude(-1), validator.ErrInvalidMagnitude)
}

func TestValidateDate_NowIsAccepted(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateDate(testNow))
	assert.NoError(t, v.ValidateDate(testNow.Add(-24*time.Hour)))
}

func TestValidateDate_FutureRejected(t *testing.T) {
	v := newTestValidator()

	err := v.ValidateDate(testNow.Add(time.Second))

	assert.ErrorIs(t, err, validator.ErrInvalidDate)
	assert.Contains(t, err.Error(), "future")
}

func TestValidateDate_ZeroRejected(t *testing.T) {
	v := newTestValidator()

	assert.ErrorIs(t, v.ValidateDate(time.Time{}), validator.ErrInvalidDate)
}

func TestCheckCoordinates(t *testing.T) {
	assert.NoError(t, validator.CheckCoordinates(90, -180))
	assert.NoError(t, validator.CheckCoordinates(-89.9996, 179.9996))
	assert.ErrorIs(t, validator.CheckCoordinates(90.0004, 0), validator.ErrInvalidLocation)
	assert.ErrorIs(t, validator.CheckCoordinates(0, -180.0004), validator.ErrInvalidLocation)
	assert.ErrorIs(t, validator.CheckCoordinates(math.NaN(), 0), validator.ErrInvalidLocation)
}
