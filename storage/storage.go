// Package storage persists tasks and user stories, either as JSON documents on
// disk or in a relational database through GORM.
package storage

import (
	"context"
	"fmt"

	"github.com/mmoralesp95/Proyecto-IA/domain/backlog"
)

// TaskStore is the persistence gateway for tasks.
type TaskStore interface {
	// LoadAll returns every task in storage order. A store that has never
	// been written to yields an empty slice.
	LoadAll(ctx context.Context) ([]backlog.Task, error)
	// SaveAll atomically replaces the whole task collection.
	SaveAll(ctx context.Context, tasks []backlog.Task) error
	Get(ctx context.Context, id int64) (backlog.Task, error)
	ListByStory(ctx context.Context, storyID int64) ([]backlog.Task, error)
	// Create assigns the next id and creation time and persists the task.
	Create(ctx context.Context, task backlog.Task, storyID *int64) (backlog.Task, error)
	// CreateBatch persists every task or none of them.
	CreateBatch(ctx context.Context, tasks []backlog.Task, storyID *int64) ([]backlog.Task, error)
	Update(ctx context.Context, id int64, patch backlog.TaskPatch) (backlog.Task, error)
	Delete(ctx context.Context, id int64) error
	// DeleteByStory removes every task owned by the story and returns how many went.
	DeleteByStory(ctx context.Context, storyID int64) (int, error)
}

// StoryStore is the persistence gateway for user stories.
type StoryStore interface {
	LoadAll(ctx context.Context) ([]backlog.UserStory, error)
	SaveAll(ctx context.Context, stories []backlog.UserStory) error
	Get(ctx context.Context, id int64) (backlog.UserStory, error)
	Create(ctx context.Context, story backlog.UserStory) (backlog.UserStory, error)
	Update(ctx context.Context, id int64, patch backlog.StoryPatch) (backlog.UserStory, error)
	// Delete removes the story and cascades to its tasks, returning the
	// number of tasks removed.
	Delete(ctx context.Context, id int64) (int, error)
}

// Backend bundles the stores of one storage medium.
type Backend interface {
	Name() string
	Tasks() TaskStore
	Stories() StoryStore
	Ping(ctx context.Context) error
	Close() error
}

type identified interface {
	Identity() int64
}

// NextID returns one more than the largest id in existing, or 1 when empty.
func NextID[E identified](existing []E) int64 {
	var maxID int64
	for _, e := range existing {
		if id := e.Identity(); id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// idProblem describes the first id in items that is not positive or repeats
// an earlier one. It returns "" when every id is usable.
func idProblem[E identified](items []E) string {
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		id := item.Identity()
		if id <= 0 {
			return fmt.Sprintf("invalid id %d", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Sprintf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
	}
	return ""
}

// checkIDs rejects a collection that SaveAll could not read back.
func checkIDs[E identified](items []E) error {
	if reason := idProblem(items); reason != "" {
		return backlog.Problems{{Field: "id", Reason: reason}}.Err()
	}
	return nil
}

func taskNotFound(id int64) error {
	return &backlog.NotFoundError{Entity: "task", ID: id}
}

func storyNotFound(id int64) error {
	return &backlog.NotFoundError{Entity: "user story", ID: id}
}

func unknownStory() error {
	return backlog.Problems{{Field: "user_story_id", Reason: "must reference an existing user story"}}.Err()
}
