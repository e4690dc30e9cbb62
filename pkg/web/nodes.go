package web

import (
	"github.com/dukex/flowcanvas/pkg/forms"
	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) CreateWorkflowNode(c fiber.Ctx) error {
	var form forms.NodeForm
	if err := c.Bind().JSON(&form); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	node, err := h.nodeService.AddNode(c.Context(), c.Params("id"), form)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) DeleteWorkflowNode(c fiber.Ctx) error {
	if err := h.nodeService.RemoveNode(c.Context(), c.Params("id"), c.Params("nodeId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) MoveWorkflowNode(c fiber.Ctx) error {
	var req PositionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return invalidRequest(c, err)
	}

	node, err := h.nodeService.MoveNode(c.Context(), c.Params("id"), c.Params("nodeId"), models.Position{X: *req.X, Y: *req.Y})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) bindConnection(c fiber.Ctx) (*ConnectionRequest, error) {
	var req ConnectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return nil, badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, invalidRequest(c, err)
	}

	return &req, nil
}

func (h *APIHandlers) ConnectNodes(c fiber.Ctx) error {
	req, err := h.bindConnection(c)
	if req == nil {
		return err
	}

	workflow, err := h.nodeService.Connect(c.Context(), c.Params("id"), req.SourceID, req.TargetID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) DisconnectNodes(c fiber.Ctx) error {
	req, err := h.bindConnection(c)
	if req == nil {
		return err
	}

	workflow, err := h.nodeService.Disconnect(c.Context(), c.Params("id"), req.SourceID, req.TargetID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) ToggleConnection(c fiber.Ctx) error {
	req, err := h.bindConnection(c)
	if req == nil {
		return err
	}

	connected, err := h.nodeService.ToggleConnection(c.Context(), c.Params("id"), req.SourceID, req.TargetID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ConnectionResponse{SourceID: req.SourceID, TargetID: req.TargetID, Connected: connected})
}
