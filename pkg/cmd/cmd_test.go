package cmd

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dukex/flowcanvas/pkg/persistence/file"
	"github.com/dukex/flowcanvas/pkg/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPersistence(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "data")

	tests := []struct {
		name     string
		url      string
		expected any
		wantErr  bool
	}{
		{name: "empty", url: "", expected: &memory.Persistence{}},
		{name: "memory", url: "memory://", expected: &memory.Persistence{}},
		{name: "file", url: "file://" + dir, expected: &file.Persistence{}},
		{name: "file without directory", url: "file://", wantErr: true},
		{name: "unknown scheme", url: "postgres://localhost/flowcanvas", wantErr: true},
		{name: "no scheme", url: "/tmp/data", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := NewPersistence(tt.url)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedProvider)

				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.expected, p)
			assert.NoError(t, p.HealthCheck(t.Context()))
		})
	}
}

func TestNewEventBus(t *testing.T) {
	t.Parallel()

	bus, err := NewEventBus(DefaultEventBus, slog.Default())
	require.NoError(t, err)
	require.NoError(t, bus.Close())

	_, err = NewEventBus("kafka", slog.Default())
	assert.Error(t, err)
}

func TestNewTracer_Disabled(t *testing.T) {
	t.Parallel()

	tracer, shutdown, err := NewTracer(t.Context(), "flowcanvas-test", false)
	require.NoError(t, err)
	assert.NotNil(t, tracer)
	assert.NoError(t, shutdown(t.Context()))
}
