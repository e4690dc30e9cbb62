package web

import (
	"errors"
	"strings"

	"github.com/dukex/flowcanvas/pkg/forms"
	"github.com/dukex/flowcanvas/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// fieldProblem is a validation problem listing the rejected fields.
type fieldProblem struct {
	*problems.Problem

	Errors []forms.FieldError `json:"errors"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func invalidFields(c fiber.Ctx, verr *forms.ValidationError) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(verr.Error())

	return c.Status(fiber.StatusBadRequest).JSON(fieldProblem{Problem: problem, Errors: verr.Fields})
}

// invalidRequest reports a request body or query that failed struct validation.
func invalidRequest(c fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return invalidFields(c, forms.FromValidationErrors(validationErrors))
	}

	return badRequest(c, err.Error())
}

func notFound(c fiber.Ctx, kind, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(kind).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	var verr *forms.ValidationError

	switch {
	case errors.As(err, &verr):
		return invalidFields(c, verr)

	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case errors.Is(err, services.ErrNodeNotFound):
		return notFound(c, "node_not_found", "node not found")

	case errors.Is(err, services.ErrWorkflowNotFound):
		return notFound(c, "workflow_not_found", "workflow not found")

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType(conflictType(err)).
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	default:
		// Log unexpected errors but don't expose details
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}

func conflictType(err error) string {
	var serviceErr *services.ServiceError
	if errors.As(err, &serviceErr) && serviceErr.Code != "" {
		return strings.ToLower(serviceErr.Code)
	}

	return "conflict"
}
