package backlog

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/go-monolith/mono"
	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
	"github.com/mmoralesp95/Proyecto-IA/events"
)

// fault converts err for a response, logging anything that is not an
// expected client-side failure.
func fault(op string, err error) *domain.Fault {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindNotFound:
	default:
		log.Printf("[backlog] %s failed: %v", op, err)
	}
	return domain.FaultFrom(err)
}

// listTasks handles the list-tasks service request.
func (m *Module) listTasks(ctx context.Context, _ ListTasksRequest, _ *mono.Msg) (TaskListResponse, error) {
	tasks, err := m.backend.Tasks().LoadAll(ctx)
	if err != nil {
		return TaskListResponse{Fault: fault("list-tasks", err)}, nil
	}
	return TaskListResponse{Tasks: tasks}, nil
}

// getTask handles the get-task service request.
func (m *Module) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.backend.Tasks().Get(ctx, req.ID)
	if err != nil {
		return TaskResponse{Fault: fault("get-task", err)}, nil
	}
	return TaskResponse{Task: task}, nil
}

// createTask handles the create-task service request. The payload is
// validated before an id is assigned.
func (m *Module) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := domain.NewTask(req.Task)
	if err != nil {
		return TaskResponse{Fault: fault("create-task", err)}, nil
	}

	created, err := m.backend.Tasks().Create(ctx, task, req.UserStoryID)
	if err != nil {
		return TaskResponse{Fault: fault("create-task", err)}, nil
	}

	m.publishTaskCreated(created, false)
	return TaskResponse{Task: created}, nil
}

// updateTask handles the update-task service request. Only the fields present
// in the patch are checked and written.
func (m *Module) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := domain.ValidateTaskPatch(req.Patch); err != nil {
		return TaskResponse{Fault: fault("update-task", err)}, nil
	}

	updated, err := m.backend.Tasks().Update(ctx, req.ID, req.Patch)
	if err != nil {
		return TaskResponse{Fault: fault("update-task", err)}, nil
	}

	if m.eventBus != nil && !req.Patch.Empty() {
		event := events.TaskUpdatedEvent{
			TaskID:    updated.ID,
			Fields:    patchedFields(req.Patch),
			UpdatedAt: m.now(),
		}
		if err := events.TaskUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[backlog] Warning: failed to publish TaskUpdated event for task %d: %v", updated.ID, err)
		}
	}
	return TaskResponse{Task: updated}, nil
}

// deleteTask handles the delete-task service request.
func (m *Module) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := m.backend.Tasks().Delete(ctx, req.ID); err != nil {
		return DeleteResponse{Fault: fault("delete-task", err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskDeletedEvent{TaskID: req.ID, DeletedAt: m.now()}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[backlog] Warning: failed to publish TaskDeleted event for task %d: %v", req.ID, err)
		}
	}
	return DeleteResponse{Deleted: true}, nil
}

// listStories handles the list-stories service request. Stories come newest
// first, each with its tasks in id order.
func (m *Module) listStories(ctx context.Context, _ ListStoriesRequest, _ *mono.Msg) (StoryListResponse, error) {
	stories, err := m.backend.Stories().LoadAll(ctx)
	if err != nil {
		return StoryListResponse{Fault: fault("list-stories", err)}, nil
	}
	tasks, err := m.backend.Tasks().LoadAll(ctx)
	if err != nil {
		return StoryListResponse{Fault: fault("list-stories", err)}, nil
	}

	byStory := make(map[int64][]domain.Task)
	for _, t := range tasks {
		if t.UserStoryID != nil {
			byStory[*t.UserStoryID] = append(byStory[*t.UserStoryID], t)
		}
	}

	sort.SliceStable(stories, func(i, j int) bool {
		if !stories[i].CreatedAt.Equal(stories[j].CreatedAt) {
			return stories[i].CreatedAt.After(stories[j].CreatedAt)
		}
		return stories[i].ID > stories[j].ID
	})

	result := make([]domain.StoryWithTasks, 0, len(stories))
	for _, s := range stories {
		owned := byStory[s.ID]
		if owned == nil {
			owned = []domain.Task{}
		}
		result = append(result, domain.StoryWithTasks{Story: s, Tasks: owned})
	}
	return StoryListResponse{Stories: result}, nil
}

// getStory handles the get-story service request.
func (m *Module) getStory(ctx context.Context, req GetStoryRequest, _ *mono.Msg) (StoryResponse, error) {
	story, err := m.backend.Stories().Get(ctx, req.ID)
	if err != nil {
		return StoryResponse{Fault: fault("get-story", err)}, nil
	}
	tasks, err := m.backend.Tasks().ListByStory(ctx, req.ID)
	if err != nil {
		return StoryResponse{Fault: fault("get-story", err)}, nil
	}
	return StoryResponse{Story: domain.StoryWithTasks{Story: story, Tasks: tasks}}, nil
}

// createStory handles the create-story service request.
func (m *Module) createStory(ctx context.Context, req CreateStoryRequest, _ *mono.Msg) (StoryResponse, error) {
	story, err := domain.NewUserStory(req.Story)
	if err != nil {
		return StoryResponse{Fault: fault("create-story", err)}, nil
	}

	created, err := m.backend.Stories().Create(ctx, story)
	if err != nil {
		return StoryResponse{Fault: fault("create-story", err)}, nil
	}

	if m.eventBus != nil {
		event := events.StoryCreatedEvent{
			StoryID:   created.ID,
			Project:   created.Project,
			Goal:      created.Goal,
			Drafted:   req.Drafted,
			CreatedAt: created.CreatedAt,
		}
		if err := events.StoryCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[backlog] Warning: failed to publish StoryCreated event for story %d: %v", created.ID, err)
		}
	}
	return StoryResponse{Story: domain.StoryWithTasks{Story: created, Tasks: []domain.Task{}}}, nil
}

// updateStory handles the update-story service request. Only the fields
// present in the patch are checked and written.
func (m *Module) updateStory(ctx context.Context, req UpdateStoryRequest, _ *mono.Msg) (StoryResponse, error) {
	if err := domain.ValidateStoryPatch(req.Patch); err != nil {
		return StoryResponse{Fault: fault("update-story", err)}, nil
	}

	updated, err := m.backend.Stories().Update(ctx, req.ID, req.Patch)
	if err != nil {
		return StoryResponse{Fault: fault("update-story", err)}, nil
	}
	tasks, err := m.backend.Tasks().ListByStory(ctx, req.ID)
	if err != nil {
		return StoryResponse{Fault: fault("update-story", err)}, nil
	}

	if m.eventBus != nil && !req.Patch.Empty() {
		event := events.StoryUpdatedEvent{
			StoryID:   updated.ID,
			Fields:    storyPatchedFields(req.Patch),
			UpdatedAt: m.now(),
		}
		if err := events.StoryUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[backlog] Warning: failed to publish StoryUpdated event for story %d: %v", updated.ID, err)
		}
	}
	return StoryResponse{Story: domain.StoryWithTasks{Story: updated, Tasks: tasks}}, nil
}

// deleteStory handles the delete-story service request, cascading to the
// story's tasks.
func (m *Module) deleteStory(ctx context.Context, req DeleteStoryRequest, _ *mono.Msg) (DeleteResponse, error) {
	removed, err := m.backend.Stories().Delete(ctx, req.ID)
	if err != nil {
		return DeleteResponse{Fault: fault("delete-story", err)}, nil
	}

	if m.eventBus != nil {
		event := events.StoryDeletedEvent{StoryID: req.ID, TasksRemoved: removed, DeletedAt: m.now()}
		if err := events.StoryDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[backlog] Warning: failed to publish StoryDeleted event for story %d: %v", req.ID, err)
		}
	}
	return DeleteResponse{Deleted: true, TasksRemoved: removed}, nil
}

// addStoryTasks handles the add-story-tasks service request. Every task is
// validated first; one bad task rejects the whole batch.
func (m *Module) addStoryTasks(ctx context.Context, req AddStoryTasksRequest, _ *mono.Msg) (TaskBatchResponse, error) {
	if _, err := m.backend.Stories().Get(ctx, req.StoryID); err != nil {
		return TaskBatchResponse{Fault: fault("add-story-tasks", err)}, nil
	}

	batch := make([]domain.Task, 0, len(req.Tasks))
	var problems domain.Problems
	for i, p := range req.Tasks {
		task, err := domain.NewTask(p)
		if err != nil {
			for _, fp := range domain.ProblemsOf(err) {
				problems.Add(fmt.Sprintf("tasks[%d].%s", i, fp.Field), fp.Reason)
			}
			continue
		}
		batch = append(batch, task)
	}
	if err := problems.Err(); err != nil {
		return TaskBatchResponse{Fault: fault("add-story-tasks", err)}, nil
	}

	created, err := m.backend.Tasks().CreateBatch(ctx, batch, &req.StoryID)
	if err != nil {
		return TaskBatchResponse{Fault: fault("add-story-tasks", err)}, nil
	}

	for _, t := range created {
		m.publishTaskCreated(t, req.Drafted)
	}
	return TaskBatchResponse{Tasks: created}, nil
}

func (m *Module) publishTaskCreated(t domain.Task, drafted bool) {
	if m.eventBus == nil {
		return
	}
	event := events.TaskCreatedEvent{
		TaskID:      t.ID,
		Title:       t.Title,
		UserStoryID: t.UserStoryID,
		Drafted:     drafted,
		CreatedAt:   t.CreatedAt,
	}
	// Event publishing is best-effort; log but don't fail the operation
	if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[backlog] Warning: failed to publish TaskCreated event for task %d: %v", t.ID, err)
	}
}

func patchedFields(p domain.TaskPatch) []string {
	var fields []string
	add := func(name string, present bool) {
		if present {
			fields = append(fields, name)
		}
	}
	add("title", p.Title != nil)
	add("description", p.Description != nil)
	add("priority", p.Priority != nil)
	add("effort_hours", p.EffortHours != nil)
	add("status", p.Status != nil)
	add("assigned_to", p.AssignedTo != nil)
	add("category", p.Category != nil)
	add("risk_analysis", p.RiskAnalysis != nil)
	add("risk_mitigation", p.RiskMitigation != nil)
	return fields
}

func storyPatchedFields(p domain.StoryPatch) []string {
	var fields []string
	add := func(name string, present bool) {
		if present {
			fields = append(fields, name)
		}
	}
	add("project", p.Project != nil)
	add("role", p.Role != nil)
	add("goal", p.Goal != nil)
	add("reason", p.Reason != nil)
	add("description", p.Description != nil)
	add("priority", p.Priority != nil)
	add("story_points", p.StoryPoints != nil)
	add("effort_hours", p.EffortHours != nil)
	return fields
}
