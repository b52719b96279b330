package timeparser_test

import (
	"testing"
	"time"

	"github.com/septivank/earthquake-catalog/tools/timeparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_RFC3339(t *testing.T) {
	result, err := timeparser.ParseDate("2023-01-01T00:00:00Z")
	require.NoError(t, err)
	assert.True(t, result.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDate_OffsetIsConvertedToUTC(t *testing.T) {
	result, err := timeparser.ParseDate("2023-06-15T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, result.Location())
	assert.Equal(t, 8, result.Hour())
}

func TestParseDate_CatalogueFormat(t *testing.T) {
	result, err := timeparser.ParseDate("2019/07/06 03:19:53.04")
	require.NoError(t, err)

	expected := time.Date(2019, 7, 6, 3, 19, 53, 40_000_000, time.UTC)
	assert.True(t, result.Equal(expected), "got %v", result)
}

func TestParseDate_DateOnly(t *testing.T) {
	result, err := timeparser.ParseDate("  2020-02-29 ")
	require.NoError(t, err)
	assert.True(t, result.Equal(time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)))
}

func TestParseDate_EpochMilliseconds(t *testing.T) {
	result, err := timeparser.ParseDate("1672531200000")
	require.NoError(t, err)
	assert.True(t, result.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDate_EpochSeconds(t *testing.T) {
	result, err := timeparser.ParseDate("1672531200")
	require.NoError(t, err)
	assert.True(t, result.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDate_ShortEpochFallsBackToMilliseconds(t *testing.T) {
	// 9999999999 seconds is year 2286, so the millisecond reading wins.
	result, err := timeparser.ParseDate("9999999999")
	require.NoError(t, err)
	assert.Equal(t, 1970, result.Year())
}

func TestParseDate_ImplausibleEpoch(t *testing.T) {
	_, err := timeparser.ParseDate("99999999999999999")
	assert.Error(t, err)
}

func TestParseDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "invalid-date-string", "2023-13-45", "1899-12-31"} {
		_, err := timeparser.ParseDate(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestFormatISO(t *testing.T) {
	ts := time.Date(2023, 1, 1, 12, 30, 5, 123_000_000, time.FixedZone("X", 3600))
	assert.Equal(t, "2023-01-01T11:30:05.123Z", timeparser.FormatISO(ts))
	assert.Equal(t, "", timeparser.FormatISO(time.Time{}))
}
