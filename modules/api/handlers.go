package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const recentActivityLimit = 50

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)
	app.Get("/activity", m.listActivity)

	tasks := app.Group("/tasks")
	tasks.Get("/", m.listTasks)
	tasks.Post("/", m.createTask)
	tasks.Get("/:id", m.getTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)

	// Routes that call the language model share one limiter.
	limit := m.aiRateLimit()

	stories := app.Group("/user-stories")
	stories.Get("/", m.listStories)
	stories.Post("/", limit, m.createStory)
	stories.Put("/:id", m.updateStory)
	stories.Get("/:id/tasks", m.storyTasks)
	stories.Post("/:id/tasks", limit, m.generateStoryTasks)
	stories.Post("/:id/delete", m.deleteStory)

	ai := app.Group("/ai/tasks", limit)
	ai.Post("/describe", m.describeTask)
	ai.Post("/categorize", m.categorizeTask)
	ai.Post("/estimate", m.estimateTask)
	ai.Post("/audit", m.auditTask)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"port":   m.cfg.Port,
		},
	})
}

// listActivity handles GET /activity.
func (m *APIModule) listActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", recentActivityLimit)
	entries, err := m.activity.Recent(c.UserContext(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ActivityResponse{Entries: entries, Total: len(entries)})
}

// pathID parses the :id route parameter. Only positive integers are ids.
func pathID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}
