package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/flowcanvas/pkg/mocks"
	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/otelhelper"
	"github.com/dukex/flowcanvas/pkg/persistence"
	"github.com/dukex/flowcanvas/pkg/persistence/file"
	"github.com/dukex/flowcanvas/pkg/persistence/memory"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customSeed = `workflows:
  - id: only
    name: Only workflow
    description: The single seeded workflow
    status: active
    last_run: null
    created_at: "2025-01-01T00:00:00Z"
    updated_at: "2025-01-01T00:00:00Z"
    nodes:
      - id: start
        type: trigger
        name: Start
        description: Starts the run
        position: { x: 100, y: 100 }
        data: {}
        connections: []
`

func setupTestApp(t *testing.T, p persistence.Persistence) *fiber.App {
	t.Helper()

	require.NoError(t, seedWorkflows(t.Context(), slog.Default(), p, ""))

	return NewAPI(slog.Default(), p, mocks.NewPublisher(), otelhelper.NoopTracer()).App()
}

func get(t *testing.T, app *fiber.App, path string) (int, []byte) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, body
}

func TestAPI_RootEndpoint(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, memory.NewPersistence())

	status, body := get(t, app, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Flowcanvas API", string(body))
}

func TestAPI_Liveness(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, memory.NewPersistence())

	status, body := get(t, app, "/livez")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", string(body))
}

func TestAPI_GetWorkflows_Seeded(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, file.NewPersistence(t.TempDir()))

	status, body := get(t, app, "/workflows?status=active")
	require.Equal(t, http.StatusOK, status)

	var result struct {
		Workflows []models.WorkflowSummary `json:"workflows"`
	}

	require.NoError(t, json.Unmarshal(body, &result))
	assert.Len(t, result.Workflows, 2)
}

func TestSeedWorkflows(t *testing.T) {
	t.Parallel()

	seedFile := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte(customSeed), 0o600))

	p := memory.NewPersistence()
	require.NoError(t, seedWorkflows(t.Context(), slog.Default(), p, seedFile))

	workflows, err := p.WorkflowRepository().List(t.Context(), persistence.ListOptions{})
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	assert.Equal(t, "only", workflows[0].ID)

	// A store that already holds workflows is not seeded again.
	require.NoError(t, seedWorkflows(t.Context(), slog.Default(), p, ""))

	workflows, err = p.WorkflowRepository().List(t.Context(), persistence.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, workflows, 1)

	err = seedWorkflows(t.Context(), slog.Default(), memory.NewPersistence(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
