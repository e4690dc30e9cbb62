package persistence_test

import (
	"errors"
	"testing"

	"github.com/dukex/flowcanvas/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestWorkflowError(t *testing.T) {
	t.Parallel()

	t.Run("unwraps to the sentinel", func(t *testing.T) {
		err := persistence.NewWorkflowError("GetByID", "workflow-123", persistence.ErrWorkflowNotFound)

		assert.True(t, persistence.IsWorkflowNotFound(err))
		assert.True(t, errors.Is(err, persistence.ErrWorkflowNotFound))
		assert.False(t, persistence.IsWorkflowNotFound(errors.New("boom")))
	})

	t.Run("message contains context", func(t *testing.T) {
		err := persistence.NewWorkflowError("Delete", "workflow-123", persistence.ErrWorkflowNotFound)

		assert.Contains(t, err.Error(), "Delete")
		assert.Contains(t, err.Error(), "workflow-123")
		assert.Contains(t, err.Error(), "workflow not found")
	})
}
