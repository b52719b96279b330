package urlstate_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/urlstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_DefaultsAreOmitted(t *testing.T) {
	values := urlstate.Encode(earthquake.QueryRequest{
		Page:  earthquake.Int(1),
		Limit: earthquake.Int(10),
		Sort:  &earthquake.DefaultSort,
	})

	assert.Empty(t, values)
}

func TestRoundTrip(t *testing.T) {
	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 6, 30, 23, 59, 59, 0, time.UTC)
	req := earthquake.QueryRequest{
		Page:  earthquake.Int(3),
		Limit: earthquake.Int(25),
		Filter: earthquake.Filter{
			Location:      "chile",
			MagnitudeFrom: earthquake.Float(4.5),
			MagnitudeTo:   earthquake.Float(9),
			DateFrom:      &from,
			DateTo:        &to,
		},
		Sort: &earthquake.Sort{Field: earthquake.SortByMagnitude, Direction: earthquake.Asc},
	}

	encoded := urlstate.Encode(req).Encode()
	values, err := url.ParseQuery(encoded)
	require.NoError(t, err)
	decoded, err := urlstate.Decode(values)

	require.NoError(t, err)
	assert.Equal(t, req, decoded)
	assert.Equal(t,
		"dateFrom=2023-01-01T00%3A00%3A00.000Z&dateTo=2023-06-30T23%3A59%3A59.000Z&limit=25&location=chile"+
			"&magnitudeFrom=4.5&magnitudeTo=9&page=3&sortDir=asc&sortField=magnitude",
		encoded)
}

func TestRoundTrip_SubMillisecondBoundIsExact(t *testing.T) {
	to := time.Date(2023, 6, 30, 23, 59, 59, 999999999, time.UTC)
	req := earthquake.QueryRequest{Filter: earthquake.Filter{DateTo: &to}}

	values := urlstate.Encode(req)
	decoded, err := urlstate.Decode(values)

	require.NoError(t, err)
	assert.Equal(t, "2023-06-30T23:59:59.999999999Z", values.Get(urlstate.KeyDateTo))
	require.NotNil(t, decoded.Filter.DateTo)
	assert.True(t, decoded.Filter.DateTo.Equal(to))
}

func TestDecode_AbsentKeysMeanDefaults(t *testing.T) {
	req, err := urlstate.Decode(url.Values{})
	require.NoError(t, err)

	n, err := req.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 1, n.Page)
	assert.Equal(t, earthquake.DefaultSort, n.Sort)
	assert.True(t, n.Filter.IsEmpty())
}

func TestDecode_PartialSort(t *testing.T) {
	req, err := urlstate.Decode(url.Values{"sortDir": {"ASC"}})

	require.NoError(t, err)
	assert.Equal(t, &earthquake.Sort{Field: earthquake.SortByDate, Direction: earthquake.Asc}, req.Sort)
}

func TestDecode_TolerantDates(t *testing.T) {
	req, err := urlstate.Decode(url.Values{"dateFrom": {"1672531200000"}})

	require.NoError(t, err)
	require.NotNil(t, req.Filter.DateFrom)
	assert.True(t, req.Filter.DateFrom.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDecode_MalformedValues(t *testing.T) {
	for _, values := range []url.Values{
		{"page": {"two"}},
		{"limit": {"1.5"}},
		{"magnitudeFrom": {"big"}},
		{"dateTo": {"someday"}},
	} {
		_, err := urlstate.Decode(values)
		assert.ErrorIs(t, err, earthquake.ErrValidation, "values %v", values)
	}
}

func TestDecode_ZeroPagePassesThroughForResolverToReject(t *testing.T) {
	req, err := urlstate.Decode(url.Values{"page": {"0"}})

	require.NoError(t, err)
	_, err = req.Normalize()
	assert.ErrorIs(t, err, earthquake.ErrValidation)
}

func TestSignature_EquivalentRequestsMatch(t *testing.T) {
	a := earthquake.QueryRequest{}
	b := earthquake.QueryRequest{
		Page:  earthquake.Int(1),
		Limit: earthquake.Int(10),
		Sort:  &earthquake.Sort{Field: "unknown", Direction: earthquake.Asc},
	}
	c := earthquake.QueryRequest{Limit: earthquake.Int(250)}
	d := earthquake.QueryRequest{Limit: earthquake.Int(100)}

	assert.Equal(t, urlstate.Signature(a), urlstate.Signature(b))
	assert.Equal(t, urlstate.Signature(c), urlstate.Signature(d))
	assert.NotEqual(t, urlstate.Signature(a), urlstate.Signature(d))
}

func TestWithFilter_ResetsPage(t *testing.T) {
	req := earthquake.QueryRequest{Page: earthquake.Int(4), Sort: &earthquake.Sort{Field: earthquake.SortByMagnitude, Direction: earthquake.Asc}}

	next := urlstate.WithFilter(req, earthquake.Filter{Location: "peru"})

	assert.Nil(t, next.Page)
	assert.Equal(t, "peru", next.Filter.Location)
	assert.Equal(t, req.Sort, next.Sort)
	assert.Equal(t, 4, *req.Page, "original request is untouched")
}

func TestWithPageAndSort(t *testing.T) {
	req := urlstate.WithSort(urlstate.WithPage(earthquake.QueryRequest{}, 2),
		earthquake.Sort{Field: earthquake.SortByLocation, Direction: earthquake.Desc})

	values := urlstate.Encode(req)

	assert.Equal(t, "2", values.Get(urlstate.KeyPage))
	assert.Equal(t, "location", values.Get(urlstate.KeySortField))
	assert.Equal(t, "desc", values.Get(urlstate.KeySortDir))
}
