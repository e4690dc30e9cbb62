// Package forms validates user input for new nodes and workflows and turns valid input into model
// objects.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrValidation matches every *ValidationError.
var ErrValidation = errors.New("validation failed")

// New nodes are dropped at a random spot in this region, in world units.
const (
	SpawnMinX = 100.0
	SpawnMaxX = 400.0
	SpawnMinY = 100.0
	SpawnMaxY = 300.0
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Rand is the source of node spawn positions. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// FieldError is a rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field of a form.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}

	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NodeForm is the input for a new node.
type NodeForm struct {
	Name        string `json:"name"        validate:"required,min=2"`
	Description string `json:"description" validate:"required,min=2"`
	Type        string `json:"type"        validate:"required,oneof=trigger action condition"`
}

// Validate trims the form and checks it.
func (f *NodeForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Type = strings.TrimSpace(f.Type)

	return check(f)
}

// Build validates the form and returns a new unconnected node with a fresh id.
func (f NodeForm) Build(rnd Rand) (*models.Node, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &models.Node{
		ID:          uuid.NewString(),
		Type:        models.NodeType(f.Type),
		Name:        f.Name,
		Description: f.Description,
		Position: models.Position{
			X: SpawnMinX + rnd.Float64()*(SpawnMaxX-SpawnMinX),
			Y: SpawnMinY + rnd.Float64()*(SpawnMaxY-SpawnMinY),
		},
		Data:        map[string]any{},
		Connections: []string{},
	}, nil
}

// WorkflowForm is the input for a new workflow.
type WorkflowForm struct {
	Name        string `json:"name"        validate:"required,min=2"`
	Description string `json:"description" validate:"required,min=2"`
}

// Validate trims the form and checks it.
func (f *WorkflowForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)

	return check(f)
}

// Build validates the form and returns a new, empty, inactive workflow created at now.
func (f WorkflowForm) Build(now time.Time) (*models.Workflow, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &models.Workflow{
		ID:          uuid.NewString(),
		Name:        f.Name,
		Description: f.Description,
		Status:      models.WorkflowStatusInactive,
		Nodes:       []*models.Node{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	return FromValidationErrors(verrs)
}

// FromValidationErrors converts validator failures into a *ValidationError.
func FromValidationErrors(verrs validator.ValidationErrors) *ValidationError {
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fieldName(fe),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}

	return &ValidationError{Fields: fields}
}

func fieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}

func message(fe validator.FieldError) string {
	name := fieldName(fe)

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}

		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}
