package web

import "github.com/gofiber/fiber/v3"

// Register mounts the workflow, node and canvas endpoints on router.
func (h *APIHandlers) Register(router fiber.Router) {
	router.Get("/health", h.HealthCheck)

	w := router.Group("/workflows")
	w.Get("/", h.GetWorkflows)
	w.Post("/", h.CreateWorkflow)
	w.Post("/execute-all", h.ExecuteAllWorkflows)
	w.Get("/:id", h.GetWorkflow)
	w.Patch("/:id", h.UpdateWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)
	w.Post("/:id/toggle-status", h.ToggleWorkflowStatus)
	w.Post("/:id/execute", h.ExecuteWorkflow)
	w.Get("/:id/executions", h.GetWorkflowExecutions)

	// Node endpoints:
	w.Post("/:id/nodes", h.CreateWorkflowNode)
	w.Delete("/:id/nodes/:nodeId", h.DeleteWorkflowNode)
	w.Put("/:id/nodes/:nodeId/position", h.MoveWorkflowNode)
	w.Post("/:id/connections", h.ConnectNodes)
	w.Delete("/:id/connections", h.DisconnectNodes)
	w.Post("/:id/connections/toggle", h.ToggleConnection)

	// Canvas endpoints:
	w.Get("/:id/canvas", h.GetCanvas)
	w.Get("/:id/canvas.png", h.GetCanvasImage)
	w.Post("/:id/canvas/events", h.DispatchCanvasEvent)
	w.Post("/:id/canvas/zoom-in", h.ZoomInCanvas)
	w.Post("/:id/canvas/zoom-out", h.ZoomOutCanvas)
	w.Post("/:id/canvas/reset", h.ResetCanvas)
	w.Delete("/:id/canvas", h.CloseCanvas)
}
