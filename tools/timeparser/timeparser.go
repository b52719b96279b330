package timeparser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	minPlausibleYear = 1900
	maxPlausibleYear = 2100

	maxEpochSeconds = 1<<63/1000 - 1
)

var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05", // catalogue CSV, fractional seconds accepted
	"2006/01/02",
}

// ParseDate parses an ISO-8601 string, a catalogue timestamp, or a numeric
// epoch string. Epochs of up to 10 digits are read as seconds first and
// longer ones as milliseconds first, falling back to the other unit.
// Results outside the plausible year range are rejected. The returned time
// is always UTC.
func ParseDate(dateStr string) (time.Time, error) {
	s := strings.TrimSpace(dateStr)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if isDigits(s) {
		if t, ok := parseEpoch(s); ok {
			return t, nil
		}
	}

	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			lastErr = err
			continue
		}
		if !isPlausible(t) {
			return time.Time{}, fmt.Errorf("year %d out of range for '%s'", t.Year(), dateStr)
		}
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("failed to parse date '%s': %w", dateStr, lastErr)
}

// parseEpoch reads ten digits or fewer as seconds first and longer strings
// as milliseconds first, falling back to the other unit when the first
// reading lands outside the plausible year range.
func parseEpoch(s string) (time.Time, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	millis := func() time.Time { return time.UnixMilli(n).UTC() }
	seconds := func() time.Time {
		if n > maxEpochSeconds {
			return time.Time{}
		}
		return time.Unix(n, 0).UTC()
	}

	readings := []func() time.Time{millis, seconds}
	if len(s) <= 10 {
		readings = []func() time.Time{seconds, millis}
	}
	for _, read := range readings {
		if t := read(); isPlausible(t) {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatISO renders t as a UTC ISO-8601 string with millisecond precision.
// The zero time renders as the empty string.
func FormatISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func isPlausible(t time.Time) bool {
	y := t.UTC().Year()
	return y >= minPlausibleYear && y <= maxPlausibleYear
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
