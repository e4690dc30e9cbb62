package web

import (
	"bytes"
	"context"

	"github.com/dukex/flowcanvas/pkg/render"
	"github.com/dukex/flowcanvas/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetCanvas(c fiber.Ctx) error {
	view, err := h.canvasService.View(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(view)
}

func (h *APIHandlers) GetCanvasImage(c fiber.Ctx) error {
	query := ImageQuery{Width: DefaultImageWidth, Height: DefaultImageHeight}
	if err := c.Bind().Query(&query); err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	if err := h.validator.Struct(query); err != nil {
		return invalidRequest(c, err)
	}

	view, err := h.canvasService.View(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var buf bytes.Buffer
	if err := render.PNG(view.Scene, query.Width, query.Height, &buf); err != nil {
		return handleServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")

	return c.Send(buf.Bytes())
}

func (h *APIHandlers) DispatchCanvasEvent(c fiber.Ctx) error {
	var req CanvasEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return invalidRequest(c, err)
	}

	view, err := h.canvasService.Dispatch(c.Context(), c.Params("id"), req.Event())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(view)
}

func (h *APIHandlers) ZoomInCanvas(c fiber.Ctx) error {
	return h.adjustCanvas(c, h.canvasService.ZoomIn)
}

func (h *APIHandlers) ZoomOutCanvas(c fiber.Ctx) error {
	return h.adjustCanvas(c, h.canvasService.ZoomOut)
}

func (h *APIHandlers) ResetCanvas(c fiber.Ctx) error {
	return h.adjustCanvas(c, h.canvasService.ResetView)
}

func (h *APIHandlers) adjustCanvas(c fiber.Ctx, fn func(context.Context, string) (*services.View, error)) error {
	view, err := fn(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(view)
}

func (h *APIHandlers) CloseCanvas(c fiber.Ctx) error {
	if !h.canvasService.Close(c.Params("id")) {
		return notFound(c, "canvas_not_found", "canvas is not open")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
