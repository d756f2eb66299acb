package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/google/uuid"
	"github.com/mmoralesp95/Proyecto-IA/events"
)

// DefaultCapacity is how many entries the feed keeps.
const DefaultCapacity = 100

// Entry is one recorded backlog event.
type Entry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	EntityID  int64     `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Module records backlog events into a bounded, newest-last feed.
// It subscribes to domain events using the EventConsumerModule interface.
type Module struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)

func NewModule() *Module {
	return &Module{
		entries:  make([]Entry, 0, DefaultCapacity),
		capacity: DefaultCapacity,
	}
}

func (m *Module) Name() string {
	return "activity"
}

func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.StoryCreatedV1, m.handleStoryCreated, m); err != nil {
		return fmt.Errorf("failed to register StoryCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.StoryUpdatedV1, m.handleStoryUpdated, m); err != nil {
		return fmt.Errorf("failed to register StoryUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.StoryDeletedV1, m.handleStoryDeleted, m); err != nil {
		return fmt.Errorf("failed to register StoryDeleted consumer: %w", err)
	}

	log.Printf("[activity] Registered event consumers: TaskCreated, TaskUpdated, TaskDeleted, StoryCreated, StoryUpdated, StoryDeleted")
	return nil
}

func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "recent-activity", json.Unmarshal, json.Marshal, m.recentActivity,
	); err != nil {
		return fmt.Errorf("failed to register recent-activity service: %w", err)
	}
	log.Printf("[activity] Registered services: recent-activity")
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	origin := "manually"
	if event.Drafted {
		origin = "by the assistant"
	}
	msg := fmt.Sprintf("Task %d '%s' created %s", event.TaskID, event.Title, origin)
	if event.UserStoryID != nil {
		msg += fmt.Sprintf(" for user story %d", *event.UserStoryID)
	}
	log.Printf("[activity] %s", msg)
	m.record("task_created", event.TaskID, msg)
	return nil
}

func (m *Module) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	msg := fmt.Sprintf("Task %d updated (%d fields)", event.TaskID, len(event.Fields))
	log.Printf("[activity] %s: %v", msg, event.Fields)
	m.record("task_updated", event.TaskID, msg)
	return nil
}

func (m *Module) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	msg := fmt.Sprintf("Task %d deleted", event.TaskID)
	log.Printf("[activity] %s", msg)
	m.record("task_deleted", event.TaskID, msg)
	return nil
}

func (m *Module) handleStoryCreated(_ context.Context, event events.StoryCreatedEvent, _ *mono.Msg) error {
	msg := fmt.Sprintf("User story %d created for project '%s'", event.StoryID, event.Project)
	log.Printf("[activity] %s", msg)
	m.record("story_created", event.StoryID, msg)
	return nil
}

func (m *Module) handleStoryUpdated(_ context.Context, event events.StoryUpdatedEvent, _ *mono.Msg) error {
	msg := fmt.Sprintf("User story %d updated (%d fields)", event.StoryID, len(event.Fields))
	log.Printf("[activity] %s: %v", msg, event.Fields)
	m.record("story_updated", event.StoryID, msg)
	return nil
}

func (m *Module) handleStoryDeleted(_ context.Context, event events.StoryDeletedEvent, _ *mono.Msg) error {
	msg := fmt.Sprintf("User story %d deleted with %d tasks", event.StoryID, event.TasksRemoved)
	log.Printf("[activity] %s", msg)
	m.record("story_deleted", event.StoryID, msg)
	return nil
}

func (m *Module) record(kind string, entityID int64, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == m.capacity {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, Entry{
		ID:        uuid.New().String(),
		Type:      kind,
		Message:   message,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	})
}

// Entries returns up to limit entries, newest first. A limit of zero or less
// returns everything kept.
func (m *Module) Entries(limit int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	result := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, m.entries[i])
	}
	return result
}

// recentActivity handles the recent-activity service request.
func (m *Module) recentActivity(_ context.Context, req RecentActivityRequest, _ *mono.Msg) (RecentActivityResponse, error) {
	return RecentActivityResponse{Entries: m.Entries(req.Limit)}, nil
}

func (m *Module) Start(_ context.Context) error {
	log.Println("[activity] Module started - listening for backlog events")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	log.Println("[activity] Module stopped")
	return nil
}
