package forms_test

import (
	"math/rand/v2"
	"testing"

	"github.com/dukex/flowcanvas/pkg/forms"
	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

func TestNodeForm_Build(t *testing.T) {
	t.Parallel()

	form := forms.NodeForm{Name: "  Send Email ", Description: "Notify the team", Type: "action"}

	node, err := form.Build(fixedRand(0.5))
	require.NoError(t, err)

	_, err = uuid.Parse(node.ID)
	require.NoError(t, err)
	assert.Equal(t, "Send Email", node.Name)
	assert.Equal(t, models.NodeTypeAction, node.Type)
	assert.Equal(t, models.Position{X: 250, Y: 200}, node.Position)
	assert.Empty(t, node.Connections)
	assert.NotNil(t, node.Connections)
	assert.NotNil(t, node.Data)
}

func TestNodeForm_SpawnRegion(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewPCG(7, 11))
	form := forms.NodeForm{Name: "Check", Description: "Threshold check", Type: "condition"}

	for range 200 {
		node, err := form.Build(rnd)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, node.Position.X, forms.SpawnMinX)
		assert.Less(t, node.Position.X, forms.SpawnMaxX)
		assert.GreaterOrEqual(t, node.Position.Y, forms.SpawnMinY)
		assert.Less(t, node.Position.Y, forms.SpawnMaxY)
	}
}

func TestNodeForm_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		form  forms.NodeForm
		field string
		rule  string
	}{
		{
			name:  "one character name",
			form:  forms.NodeForm{Name: "A", Description: "Valid description", Type: "action"},
			field: "name",
			rule:  "min",
		},
		{
			name:  "blank description",
			form:  forms.NodeForm{Name: "Valid", Description: "   ", Type: "action"},
			field: "description",
			rule:  "required",
		},
		{
			name:  "unknown type",
			form:  forms.NodeForm{Name: "Valid", Description: "Valid description", Type: "loop"},
			field: "type",
			rule:  "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			node, err := tt.form.Build(fixedRand(0))

			require.ErrorIs(t, err, forms.ErrValidation)
			assert.Nil(t, node)

			var verr *forms.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Equal(t, tt.rule, verr.Fields[0].Rule)
			assert.NotEmpty(t, verr.Fields[0].Message)
		})
	}
}

func TestWorkflowForm_Build(t *testing.T) {
	t.Parallel()

	form := forms.WorkflowForm{Name: "Monthly report", Description: "Sends the monthly report"}

	workflow, err := form.Build(testutil.FixedTime)
	require.NoError(t, err)

	assert.NotEmpty(t, workflow.ID)
	assert.Equal(t, models.WorkflowStatusInactive, workflow.Status)
	assert.Empty(t, workflow.Nodes)
	assert.Nil(t, workflow.LastRun)
	assert.Equal(t, testutil.FixedTime, workflow.CreatedAt)
	assert.Equal(t, testutil.FixedTime, workflow.UpdatedAt)
}

func TestWorkflowForm_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		form     forms.WorkflowForm
		expected []forms.FieldError
	}{
		{
			name: "one character name",
			form: forms.WorkflowForm{Name: "X", Description: "Sends the monthly report"},
			expected: []forms.FieldError{
				{Field: "name", Rule: "min"},
			},
		},
		{
			name: "short name and missing description",
			form: forms.WorkflowForm{Name: "X", Description: ""},
			expected: []forms.FieldError{
				{Field: "name", Rule: "min"},
				{Field: "description", Rule: "required"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			workflow, err := tt.form.Build(testutil.FixedTime)
			require.ErrorIs(t, err, forms.ErrValidation)
			assert.Nil(t, workflow)

			var verr *forms.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, len(tt.expected))

			for i, expected := range tt.expected {
				assert.Equal(t, expected.Field, verr.Fields[i].Field)
				assert.Equal(t, expected.Rule, verr.Fields[i].Rule)
			}

			assert.Contains(t, err.Error(), "name must be at least 2 characters")
		})
	}
}
