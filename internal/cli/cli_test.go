package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/httpapi"
	"github.com/septivank/earthquake-catalog/internal/service"
	"github.com/septivank/earthquake-catalog/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAPI(t *testing.T) string {
	t.Helper()
	store := earthquake.NewMemoryStore()
	svc := service.NewEarthquakeService(
		earthquake.NewQueryResolver(store),
		earthquake.NewMutationResolver(store, validator.NewValidator()),
		nil, nil, zap.NewNop(),
	)
	srv := httptest.NewServer(httpapi.NewRouter(svc, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, api string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--api", api}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := run(t, "http://unused", "--format", "xml", "list")

	assert.ErrorContains(t, err, "invalid format")
}

func TestCreateListUpdateDelete(t *testing.T) {
	api := newAPI(t)

	out, err := run(t, api, "--format", "json", "create",
		"--location=-33.4489, -70.6693", "--magnitude", "6.3", "--date", "2024-04-01T10:00:00Z")
	require.NoError(t, err)
	var rec earthquake.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "-33.449, -70.669", rec.Location)

	out, err = run(t, api, "list", "--magnitude-from", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "SEVERITY")
	assert.Contains(t, out, rec.ID)
	assert.Contains(t, out, "moderate")
	assert.Contains(t, out, "2024-04-01 10:00:00")
	assert.Contains(t, out, "page 1, 1 shown, 1 total, more: no")

	out, err = run(t, api, "update", rec.ID, "--magnitude", "7.1")
	require.NoError(t, err)
	assert.Contains(t, out, "7.1 (major)")

	out, err = run(t, api, "get", rec.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "-33.449, -70.669")

	out, err = run(t, api, "delete", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "deleted "+rec.ID+"\n", out)

	_, err = run(t, api, "delete", rec.ID)
	assert.ErrorIs(t, err, earthquake.ErrNotFound)
}

func TestList_JSONPage(t *testing.T) {
	api := newAPI(t)
	for _, loc := range []string{"1, 1", "2, 2", "3, 3"} {
		_, err := run(t, api, "create", "--location", loc, "--magnitude", "2", "--date", "2020-01-01")
		require.NoError(t, err)
	}

	out, err := run(t, api, "--format", "json", "list", "--limit", "2", "--sort", "location", "--dir", "asc")
	require.NoError(t, err)

	var page earthquake.PagedResult
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, 3, page.Count)
	assert.True(t, page.HasMore)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "1, 1", page.Data[0].Location)
}

func TestList_MalformedFlag(t *testing.T) {
	_, err := run(t, newAPI(t), "list", "--page", "two")

	assert.ErrorIs(t, err, earthquake.ErrValidation)
}

func TestCreate_ValidationError(t *testing.T) {
	_, err := run(t, newAPI(t), "create", "--location", "north", "--magnitude", "3", "--date", "2020-01-01")

	assert.ErrorIs(t, err, earthquake.ErrInvalidLocation)
}

func TestImport_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := run(t, "http://unused", "import", "quakes.csv")

	assert.ErrorContains(t, err, "DATABASE_URL")
}
