package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/persistence"
	"github.com/dukex/flowcanvas/pkg/persistence/file"
	"github.com/dukex/flowcanvas/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistence_WorkflowRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	p := file.NewPersistence("file://" + root)

	require.NoError(t, p.HealthCheck(ctx))

	workflow := testutil.CreateLinearWorkflow("1")
	require.NoError(t, p.WorkflowRepository().Save(ctx, workflow))

	assert.FileExists(t, filepath.Join(root, "workflows", "1.json"))

	loaded, err := p.WorkflowRepository().GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, workflow.Edges(), loaded.Edges())
	assert.True(t, workflow.UpdatedAt.Equal(loaded.UpdatedAt))

	workflows, err := p.WorkflowRepository().List(ctx, persistence.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, workflows, 1)

	require.NoError(t, p.WorkflowRepository().Delete(ctx, "1"))

	_, err = p.WorkflowRepository().GetByID(ctx, "1")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	err = p.WorkflowRepository().Delete(ctx, "1")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestPersistence_RejectsPathTraversal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := file.NewPersistence(t.TempDir())

	err := p.WorkflowRepository().Save(ctx, &models.Workflow{ID: "../escape"})
	require.ErrorIs(t, err, persistence.ErrInvalidWorkflow)

	_, err = p.WorkflowRepository().GetByID(ctx, "../../etc/passwd")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestPersistence_Executions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := file.NewPersistence(t.TempDir())
	repo := p.ExecutionRepository()

	executions, err := repo.ListByWorkflow(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, executions)

	for i, id := range []string{"a", "b"} {
		require.NoError(t, repo.Save(ctx, &models.WorkflowExecution{
			ID:         id,
			WorkflowID: "1",
			Status:     models.ExecutionStatusCompleted,
			StartTime:  testutil.FixedTime.Add(time.Duration(i) * time.Second),
		}))
	}

	executions, err = repo.ListByWorkflow(ctx, "1")
	require.NoError(t, err)
	require.Len(t, executions, 2)
	assert.Equal(t, "b", executions[0].ID)

	require.NoError(t, repo.DeleteByWorkflow(ctx, "1"))

	executions, err = repo.ListByWorkflow(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, executions)
}

func TestPersistence_HealthCheckMissingRoot(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(filepath.Join(t.TempDir(), "missing"))

	assert.ErrorIs(t, p.HealthCheck(context.Background()), os.ErrNotExist)
}
