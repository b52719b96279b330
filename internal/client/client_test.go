package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/httpapi"
	"github.com/septivank/earthquake-catalog/internal/service"
	"github.com/septivank/earthquake-catalog/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAPI(t *testing.T) *Client {
	t.Helper()
	store := earthquake.NewMemoryStore()
	svc := service.NewEarthquakeService(
		earthquake.NewQueryResolver(store),
		earthquake.NewMutationResolver(store, validator.NewValidator()),
		nil, nil, zap.NewNop(),
	)
	srv := httptest.NewServer(httpapi.NewRouter(svc, zap.NewNop()))
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, zap.NewNop())
}

func TestClient_CRUD(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()

	created, err := c.Create(ctx, earthquake.CreateInput{
		Location:  "34.05217, -118.24368",
		Magnitude: 5.5,
		Date:      "2023-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "34.052, -118.244", created.Location)
	assert.True(t, created.Date.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := c.Update(ctx, created.ID, earthquake.UpdateInput{Magnitude: earthquake.Float(6)})
	require.NoError(t, err)
	assert.Equal(t, 6.0, updated.Magnitude)
	assert.Equal(t, created.Location, updated.Location)

	page, err := c.Query(ctx, earthquake.QueryRequest{Filter: earthquake.Filter{MagnitudeFrom: earthquake.Float(5.9)}})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)

	deleted, err := c.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = c.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, earthquake.ErrNotFound)
}

func TestClient_MapsErrorCodes(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()

	_, err := c.Create(ctx, earthquake.CreateInput{Location: "1, 1", Magnitude: 0.09, Date: "2024-01-01"})
	assert.ErrorIs(t, err, earthquake.ErrInvalidMagnitude)
	assert.Equal(t, 1, countPrefix(err.Error(), "invalid magnitude"))

	_, err = c.Query(ctx, earthquake.QueryRequest{Limit: earthquake.Int(0)})
	assert.ErrorIs(t, err, earthquake.ErrValidation)

	_, err = c.Get(ctx, "does-not-exist")
	assert.ErrorIs(t, err, earthquake.ErrNotFound)
}

func TestClient_TransportFailureIsStoreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := New(url, time.Second, zap.NewNop())

	_, err := c.Query(context.Background(), earthquake.QueryRequest{})

	assert.ErrorIs(t, err, earthquake.ErrStoreUnavailable)
	assert.True(t, earthquake.IsRetryable(err))
}

func TestClient_BareServerErrorIsStoreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()
	c := New(srv.URL, time.Second, zap.NewNop())

	_, err := c.Get(context.Background(), "abc")

	assert.ErrorIs(t, err, earthquake.ErrStoreUnavailable)
}

func countPrefix(s, prefix string) int {
	n := 0
	for i := 0; i+len(prefix) <= len(s); i++ {
		if s[i:i+len(prefix)] == prefix {
			n++
		}
	}
	return n
}
