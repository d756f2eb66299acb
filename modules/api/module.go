package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mmoralesp95/Proyecto-IA/modules/activity"
	"github.com/mmoralesp95/Proyecto-IA/modules/backlog"
	"github.com/mmoralesp95/Proyecto-IA/modules/drafting"
)

// Config holds the HTTP surface settings.
type Config struct {
	Port      int
	AppSecret string
	// AITimeout bounds each drafting request-reply call.
	AITimeout time.Duration
	// AIRateLimit caps model-backed requests per client IP per minute.
	AIRateLimit int
}

// APIModule is the driving adapter that exposes the HTTP endpoints.
// It reaches the backlog, drafting and activity modules through their ports.
type APIModule struct {
	cfg      Config
	app      *fiber.App
	flash    *flashSigner
	backlog  backlog.BacklogPort
	drafting drafting.DraftingPort
	activity activity.ActivityPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg Config) *APIModule {
	return &APIModule{
		cfg:   cfg,
		flash: newFlashSigner(cfg.AppSecret),
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"backlog", "drafting", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "backlog":
		m.backlog = backlog.NewBacklogAdapter(container)
	case "drafting":
		m.drafting = drafting.NewDraftingAdapter(container, m.cfg.AITimeout)
	case "activity":
		m.activity = activity.NewActivityAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
// Returns an error if required dependencies are not set.
func (m *APIModule) Start(_ context.Context) error {
	if m.backlog == nil {
		return fmt.Errorf("backlog dependency not set")
	}
	if m.drafting == nil {
		return fmt.Errorf("drafting dependency not set")
	}
	if m.activity == nil {
		return fmt.Errorf("activity dependency not set")
	}

	m.app = m.newApp()

	addr := fmt.Sprintf(":%d", m.cfg.Port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", addr)
	return nil
}

// newApp builds the Fiber app with middleware and routes.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())

	m.setupRoutes(app)
	return app
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.cfg.Port,
		},
	}
}
