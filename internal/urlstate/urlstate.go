// Package urlstate round-trips a QueryRequest through flat key/value form.
// An absent key means the default for that field.
package urlstate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/tools/timeparser"
)

const (
	KeyLocation      = "location"
	KeyMagnitudeFrom = "magnitudeFrom"
	KeyMagnitudeTo   = "magnitudeTo"
	KeyDateFrom      = "dateFrom"
	KeyDateTo        = "dateTo"
	KeyPage          = "page"
	KeyLimit         = "limit"
	KeySortField     = "sortField"
	KeySortDir       = "sortDir"
)

// Encode writes the non-default fields of req.
func Encode(req earthquake.QueryRequest) url.Values {
	values := url.Values{}

	f := req.Filter
	if f.Location != "" {
		values.Set(KeyLocation, f.Location)
	}
	setFloat(values, KeyMagnitudeFrom, f.MagnitudeFrom)
	setFloat(values, KeyMagnitudeTo, f.MagnitudeTo)
	setTime(values, KeyDateFrom, f.DateFrom)
	setTime(values, KeyDateTo, f.DateTo)

	if req.Page != nil && *req.Page != earthquake.DefaultPage {
		values.Set(KeyPage, strconv.Itoa(*req.Page))
	}
	if req.Limit != nil && *req.Limit != earthquake.DefaultLimit {
		values.Set(KeyLimit, strconv.Itoa(*req.Limit))
	}
	if req.Sort != nil && *req.Sort != earthquake.DefaultSort {
		values.Set(KeySortField, string(req.Sort.Field))
		values.Set(KeySortDir, string(req.Sort.Direction))
	}

	return values
}

// Decode reads a request from values. Malformed numbers or dates are
// reported as earthquake.ErrValidation.
func Decode(values url.Values) (earthquake.QueryRequest, error) {
	var req earthquake.QueryRequest
	var err error

	req.Filter.Location = strings.TrimSpace(values.Get(KeyLocation))
	if req.Filter.MagnitudeFrom, err = getFloat(values, KeyMagnitudeFrom); err != nil {
		return earthquake.QueryRequest{}, err
	}
	if req.Filter.MagnitudeTo, err = getFloat(values, KeyMagnitudeTo); err != nil {
		return earthquake.QueryRequest{}, err
	}
	if req.Filter.DateFrom, err = getTime(values, KeyDateFrom); err != nil {
		return earthquake.QueryRequest{}, err
	}
	if req.Filter.DateTo, err = getTime(values, KeyDateTo); err != nil {
		return earthquake.QueryRequest{}, err
	}
	if req.Page, err = getInt(values, KeyPage); err != nil {
		return earthquake.QueryRequest{}, err
	}
	if req.Limit, err = getInt(values, KeyLimit); err != nil {
		return earthquake.QueryRequest{}, err
	}

	field, dir := values.Get(KeySortField), values.Get(KeySortDir)
	if field != "" || dir != "" {
		s := earthquake.DefaultSort
		if field != "" {
			s.Field = earthquake.SortField(field)
		}
		if dir != "" {
			s.Direction = earthquake.Direction(strings.ToLower(dir))
		}
		req.Sort = &s
	}

	return req, nil
}

// Signature is the cache identity of req: requests that normalize to the
// same window, filter and sort share a signature.
func Signature(req earthquake.QueryRequest) string {
	n, err := req.Normalize()
	if err != nil {
		return Encode(req).Encode()
	}
	return Encode(n.Request()).Encode()
}

// WithFilter replaces the filter and resets to the first page.
func WithFilter(req earthquake.QueryRequest, f earthquake.Filter) earthquake.QueryRequest {
	req.Filter = f
	req.Page = nil
	return req
}

// WithPage moves to page.
func WithPage(req earthquake.QueryRequest, page int) earthquake.QueryRequest {
	req.Page = &page
	return req
}

// WithSort replaces the sort, keeping the current page.
func WithSort(req earthquake.QueryRequest, s earthquake.Sort) earthquake.QueryRequest {
	req.Sort = &s
	return req
}

func setFloat(values url.Values, key string, v *float64) {
	if v != nil {
		values.Set(key, strconv.FormatFloat(*v, 'f', -1, 64))
	}
}

// setTime keeps sub-millisecond bounds exact so an inclusive range does not
// narrow after a round trip.
func setTime(values url.Values, key string, v *time.Time) {
	if v == nil {
		return
	}
	if v.Nanosecond()%int(time.Millisecond) != 0 {
		values.Set(key, v.UTC().Format(time.RFC3339Nano))
		return
	}
	values.Set(key, timeparser.FormatISO(*v))
}

func getFloat(values url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number, got %q", earthquake.ErrValidation, key, raw)
	}
	return &v, nil
}

func getInt(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer, got %q", earthquake.ErrValidation, key, raw)
	}
	return &v, nil
}

func getTime(values url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := timeparser.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", earthquake.ErrValidation, key, err)
	}
	return &v, nil
}
