package backlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/mmoralesp95/Proyecto-IA/events"
	"github.com/mmoralesp95/Proyecto-IA/storage"
)

// Module owns the persistence gateway and exposes task and user story
// operations as request-reply services (core domain).
type Module struct {
	backend  storage.Backend
	eventBus mono.EventBus
	now      func() time.Time
}

var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.EventEmitterModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the backlog module on top of an opened backend.
func NewModule(backend storage.Backend) *Module {
	return &Module{
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *Module) Name() string {
	return "backlog"
}

func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
		events.StoryCreatedV1.ToBase(),
		events.StoryUpdatedV1.ToBase(),
		events.StoryDeletedV1.ToBase(),
	}
}

func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-stories", json.Unmarshal, json.Marshal, m.listStories,
	); err != nil {
		return fmt.Errorf("failed to register list-stories service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-story", json.Unmarshal, json.Marshal, m.getStory,
	); err != nil {
		return fmt.Errorf("failed to register get-story service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create-story", json.Unmarshal, json.Marshal, m.createStory,
	); err != nil {
		return fmt.Errorf("failed to register create-story service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-story", json.Unmarshal, json.Marshal, m.updateStory,
	); err != nil {
		return fmt.Errorf("failed to register update-story service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-story", json.Unmarshal, json.Marshal, m.deleteStory,
	); err != nil {
		return fmt.Errorf("failed to register delete-story service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "add-story-tasks", json.Unmarshal, json.Marshal, m.addStoryTasks,
	); err != nil {
		return fmt.Errorf("failed to register add-story-tasks service: %w", err)
	}

	log.Printf("[backlog] Registered services: list-tasks, get-task, create-task, update-task, delete-task, " +
		"list-stories, get-story, create-story, update-story, delete-story, add-story-tasks")
	return nil
}

func (m *Module) Start(_ context.Context) error {
	if m.backend == nil {
		return fmt.Errorf("storage backend not set")
	}
	if m.eventBus == nil {
		log.Println("[backlog] Warning: eventBus not set, events will not be published")
	}
	log.Printf("[backlog] Module started (storage: %s)", m.backend.Name())
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	log.Println("[backlog] Closing storage backend...")
	if err := m.backend.Close(); err != nil {
		return fmt.Errorf("failed to close storage backend: %w", err)
	}
	log.Println("[backlog] Module stopped")
	return nil
}

// Health reports whether the storage backend is reachable and readable.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if err := m.backend.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("storage check failed: %v", err),
			Details: map[string]any{"storage": m.backend.Name()},
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"storage": m.backend.Name()},
	}
}
