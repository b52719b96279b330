package earthquake

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/septivank/earthquake-catalog/tools/timeparser"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// InvalidDateDisplay is shown in place of a date that could not be read.
	InvalidDateDisplay = "Invalid date"
)

// Record is a single earthquake observation.
type Record struct {
	ID        string
	Location  string
	Magnitude float64
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type recordJSON struct {
	ID        string  `json:"id"`
	Location  string  `json:"location"`
	Magnitude float64 `json:"magnitude"`
	Date      string  `json:"date"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// MarshalJSON renders timestamps as ISO-8601 strings.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		ID:        r.ID,
		Location:  r.Location,
		Magnitude: r.Magnitude,
		Date:      timeparser.FormatISO(r.Date),
		CreatedAt: timeparser.FormatISO(r.CreatedAt),
		UpdatedAt: timeparser.FormatISO(r.UpdatedAt),
	})
}

// UnmarshalJSON never fails on a bad timestamp: an unreadable date becomes
// the zero time, which DisplayDate renders as InvalidDateDisplay.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		ID:        raw.ID,
		Location:  raw.Location,
		Magnitude: raw.Magnitude,
		Date:      readTimestamp(raw.Date),
		CreatedAt: readTimestamp(raw.CreatedAt),
		UpdatedAt: readTimestamp(raw.UpdatedAt),
	}
	return nil
}

func readTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// DisplayDate formats t for people, degrading to InvalidDateDisplay.
func DisplayDate(t time.Time) string {
	if t.IsZero() {
		return InvalidDateDisplay
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

// NewRecord holds validated fields for a record about to be persisted.
type NewRecord struct {
	Location  string
	Magnitude float64
	Date      time.Time
}

// Patch holds validated fields for a partial update. Nil fields are left
// untouched.
type Patch struct {
	Location  *string
	Magnitude *float64
	Date      *time.Time
}

// CreateInput is the unvalidated create payload.
type CreateInput struct {
	Location  string  `json:"location"`
	Magnitude float64 `json:"magnitude"`
	Date      string  `json:"date"`
}

// UpdateInput is the unvalidated partial update payload.
type UpdateInput struct {
	Location  *string  `json:"location,omitempty"`
	Magnitude *float64 `json:"magnitude,omitempty"`
	Date      *string  `json:"date,omitempty"`
}

// Filter is a conjunction of optional constraints. The zero value matches
// every record.
type Filter struct {
	Location      string
	MagnitudeFrom *float64
	MagnitudeTo   *float64
	DateFrom      *time.Time
	DateTo        *time.Time
}

// IsEmpty reports whether the filter imposes no constraint.
func (f Filter) IsEmpty() bool {
	return f.Location == "" && f.MagnitudeFrom == nil && f.MagnitudeTo == nil &&
		f.DateFrom == nil && f.DateTo == nil
}

// Matches evaluates the filter against a single record.
func (f Filter) Matches(r Record) bool {
	if f.Location != "" && !strings.Contains(strings.ToLower(r.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.MagnitudeFrom != nil && r.Magnitude < *f.MagnitudeFrom {
		return false
	}
	if f.MagnitudeTo != nil && r.Magnitude > *f.MagnitudeTo {
		return false
	}
	if f.DateFrom != nil && r.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.Date.After(*f.DateTo) {
		return false
	}
	return true
}

type SortField string

const (
	SortByDate      SortField = "date"
	SortByMagnitude SortField = "magnitude"
	SortByLocation  SortField = "location"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

// Valid reports whether records can be ordered by f.
func (f SortField) Valid() bool {
	switch f {
	case SortByDate, SortByMagnitude, SortByLocation, SortByCreatedAt, SortByUpdatedAt:
		return true
	}
	return false
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type Sort struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders newest first.
var DefaultSort = Sort{Field: SortByDate, Direction: Desc}

// normalizeSort falls back to DefaultSort for an unknown field and treats
// any direction other than asc as desc.
func normalizeSort(s *Sort) Sort {
	if s == nil || !s.Field.Valid() {
		return DefaultSort
	}
	if s.Direction != Asc {
		return Sort{Field: s.Field, Direction: Desc}
	}
	return *s
}

// QueryRequest carries the page, filter and sort of a collection read. Nil
// Page, Limit and Sort take their defaults.
type QueryRequest struct {
	Page   *int
	Limit  *int
	Filter Filter
	Sort   *Sort
}

// NormalizedQuery is a QueryRequest with defaults applied and the limit
// clamped.
type NormalizedQuery struct {
	Page   int
	Limit  int
	Skip   int
	Filter Filter
	Sort   Sort
}

// Normalize applies defaults and the limit cap. Only a page or limit below 1
// is rejected.
func (q QueryRequest) Normalize() (NormalizedQuery, error) {
	page := DefaultPage
	if q.Page != nil {
		page = *q.Page
	}
	limit := DefaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}
	if page < 1 {
		return NormalizedQuery{}, validationErrorf("page must be >= 1, got %d", page)
	}
	if limit < 1 {
		return NormalizedQuery{}, validationErrorf("limit must be >= 1, got %d", limit)
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return NormalizedQuery{
		Page:   page,
		Limit:  limit,
		Skip:   (page - 1) * limit,
		Filter: q.Filter,
		Sort:   normalizeSort(q.Sort),
	}, nil
}

// Request converts back to a QueryRequest with every field explicit.
func (n NormalizedQuery) Request() QueryRequest {
	page, limit, sort := n.Page, n.Limit, n.Sort
	return QueryRequest{Page: &page, Limit: &limit, Filter: n.Filter, Sort: &sort}
}

// PagedResult is one window of a collection read.
type PagedResult struct {
	Data    []Record `json:"data"`
	Count   int      `json:"count"`
	HasMore bool     `json:"hasMore"`
}

// Clone returns a copy that shares no slice storage with p.
func (p PagedResult) Clone() PagedResult {
	data := make([]Record, len(p.Data))
	copy(data, p.Data)
	return PagedResult{Data: data, Count: p.Count, HasMore: p.HasMore}
}

// Int returns a pointer to v, for optional request fields.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for optional filter and patch fields.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v, for optional patch fields.
func String(v string) *string { return &v }

// Time returns a pointer to v, for optional filter fields.
func Time(v time.Time) *time.Time { return &v }
