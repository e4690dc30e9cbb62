// Package main provides the Flowcanvas API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/flowcanvas/pkg/eventbus"
	"github.com/dukex/flowcanvas/pkg/persistence"
	"github.com/dukex/flowcanvas/pkg/services"
	"github.com/dukex/flowcanvas/pkg/web"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	tracer      trace.Tracer
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventPublisher,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		tracer:      tracer,
	}
}

func (a *API) App() *fiber.App {
	opts := []services.Option{
		services.WithTracer(a.tracer),
		services.WithLocker(services.NewLocker()),
	}

	workflowService := services.NewWorkflow(a.persistence, a.eventBus, opts...)
	nodeService := services.NewNode(a.persistence, a.eventBus, opts...)
	canvasService := services.NewCanvas(a.persistence, a.eventBus, opts...)

	handlers := web.NewAPIHandlers(workflowService, nodeService, canvasService, web.NewValidator())

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowcanvas API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	a.logger.Info("Flowcanvas API listening", "port", port)

	return app.Listen(":" + strconv.Itoa(port))
}
