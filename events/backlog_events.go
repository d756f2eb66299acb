package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted when a task is persisted.
type TaskCreatedEvent struct {
	TaskID      int64     `json:"task_id"`
	Title       string    `json:"title"`
	UserStoryID *int64    `json:"user_story_id,omitempty"`
	Drafted     bool      `json:"drafted"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.backlog.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"backlog", "TaskCreated", "v1",
)

// TaskUpdatedEvent is emitted after a partial update. Fields lists the
// names of the fields that were present in the update.
type TaskUpdatedEvent struct {
	TaskID    int64     `json:"task_id"`
	Fields    []string  `json:"fields"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.backlog.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"backlog", "TaskUpdated", "v1",
)

type TaskDeletedEvent struct {
	TaskID    int64     `json:"task_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.backlog.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"backlog", "TaskDeleted", "v1",
)

// StoryCreatedEvent is emitted when a user story is persisted.
type StoryCreatedEvent struct {
	StoryID   int64     `json:"story_id"`
	Project   string    `json:"project"`
	Goal      string    `json:"goal"`
	Drafted   bool      `json:"drafted"`
	CreatedAt time.Time `json:"created_at"`
}

// StoryCreatedV1 is the typed event definition for user story creation.
// Subject: events.backlog.v1.story-created
var StoryCreatedV1 = helper.EventDefinition[StoryCreatedEvent](
	"backlog", "StoryCreated", "v1",
)

// StoryUpdatedEvent is emitted after a partial update of a user story.
type StoryUpdatedEvent struct {
	StoryID   int64     `json:"story_id"`
	Fields    []string  `json:"fields"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoryUpdatedV1 is the typed event definition for user story updates.
// Subject: events.backlog.v1.story-updated
var StoryUpdatedV1 = helper.EventDefinition[StoryUpdatedEvent](
	"backlog", "StoryUpdated", "v1",
)

// StoryDeletedEvent is emitted after a user story and its tasks are removed.
type StoryDeletedEvent struct {
	StoryID      int64     `json:"story_id"`
	TasksRemoved int       `json:"tasks_removed"`
	DeletedAt    time.Time `json:"deleted_at"`
}

// StoryDeletedV1 is the typed event definition for user story deletion.
// Subject: events.backlog.v1.story-deleted
var StoryDeletedV1 = helper.EventDefinition[StoryDeletedEvent](
	"backlog", "StoryDeleted", "v1",
)
