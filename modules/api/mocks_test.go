package api

import (
	"context"
	"errors"

	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
	"github.com/mmoralesp95/Proyecto-IA/modules/activity"
	"github.com/mmoralesp95/Proyecto-IA/modules/drafting"
)

var errNotImplemented = errors.New("not implemented")

// mockBacklogPort implements backlog.BacklogPort for testing.
type mockBacklogPort struct {
	listTasksFunc     func(ctx context.Context) ([]domain.Task, error)
	getTaskFunc       func(ctx context.Context, id int64) (domain.Task, error)
	createTaskFunc    func(ctx context.Context, task domain.TaskPatch, storyID *int64) (domain.Task, error)
	updateTaskFunc    func(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error)
	deleteTaskFunc    func(ctx context.Context, id int64) error
	listStoriesFunc   func(ctx context.Context) ([]domain.StoryWithTasks, error)
	getStoryFunc      func(ctx context.Context, id int64) (domain.StoryWithTasks, error)
	createStoryFunc   func(ctx context.Context, story domain.StoryPatch, drafted bool) (domain.UserStory, error)
	updateStoryFunc   func(ctx context.Context, id int64, patch domain.StoryPatch) (domain.StoryWithTasks, error)
	deleteStoryFunc   func(ctx context.Context, id int64) (int, error)
	addStoryTasksFunc func(ctx context.Context, storyID int64, tasks []domain.TaskPatch, drafted bool) ([]domain.Task, error)
}

func (m *mockBacklogPort) ListTasks(ctx context.Context) ([]domain.Task, error) {
	if m.listTasksFunc != nil {
		return m.listTasksFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockBacklogPort) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	if m.getTaskFunc != nil {
		return m.getTaskFunc(ctx, id)
	}
	return domain.Task{}, errNotImplemented
}

func (m *mockBacklogPort) CreateTask(ctx context.Context, task domain.TaskPatch, storyID *int64) (domain.Task, error) {
	if m.createTaskFunc != nil {
		return m.createTaskFunc(ctx, task, storyID)
	}
	return domain.Task{}, errNotImplemented
}

func (m *mockBacklogPort) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error) {
	if m.updateTaskFunc != nil {
		return m.updateTaskFunc(ctx, id, patch)
	}
	return domain.Task{}, errNotImplemented
}

func (m *mockBacklogPort) DeleteTask(ctx context.Context, id int64) error {
	if m.deleteTaskFunc != nil {
		return m.deleteTaskFunc(ctx, id)
	}
	return errNotImplemented
}

func (m *mockBacklogPort) ListStories(ctx context.Context) ([]domain.StoryWithTasks, error) {
	if m.listStoriesFunc != nil {
		return m.listStoriesFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockBacklogPort) GetStory(ctx context.Context, id int64) (domain.StoryWithTasks, error) {
	if m.getStoryFunc != nil {
		return m.getStoryFunc(ctx, id)
	}
	return domain.StoryWithTasks{}, errNotImplemented
}

func (m *mockBacklogPort) CreateStory(ctx context.Context, story domain.StoryPatch, drafted bool) (domain.UserStory, error) {
	if m.createStoryFunc != nil {
		return m.createStoryFunc(ctx, story, drafted)
	}
	return domain.UserStory{}, errNotImplemented
}

func (m *mockBacklogPort) UpdateStory(ctx context.Context, id int64, patch domain.StoryPatch) (domain.StoryWithTasks, error) {
	if m.updateStoryFunc != nil {
		return m.updateStoryFunc(ctx, id, patch)
	}
	return domain.StoryWithTasks{}, errNotImplemented
}

func (m *mockBacklogPort) DeleteStory(ctx context.Context, id int64) (int, error) {
	if m.deleteStoryFunc != nil {
		return m.deleteStoryFunc(ctx, id)
	}
	return 0, errNotImplemented
}

func (m *mockBacklogPort) AddStoryTasks(ctx context.Context, storyID int64, tasks []domain.TaskPatch, drafted bool) ([]domain.Task, error) {
	if m.addStoryTasksFunc != nil {
		return m.addStoryTasksFunc(ctx, storyID, tasks, drafted)
	}
	return nil, errNotImplemented
}

// mockDraftingPort implements drafting.DraftingPort for testing.
type mockDraftingPort struct {
	draftStoryFunc     func(ctx context.Context, prompt string) (domain.StoryPatch, error)
	decomposeStoryFunc func(ctx context.Context, story domain.UserStory) ([]domain.TaskPatch, error)
	describeTaskFunc   func(ctx context.Context, title string) (drafting.DescribeTaskResponse, error)
	categorizeTaskFunc func(ctx context.Context, title, description string) (string, error)
	estimateTaskFunc   func(ctx context.Context, req drafting.EstimateTaskRequest) (float64, error)
	auditTaskFunc      func(ctx context.Context, req drafting.AuditTaskRequest) (drafting.AuditTaskResponse, error)
}

func (m *mockDraftingPort) DraftStory(ctx context.Context, prompt string) (domain.StoryPatch, error) {
	if m.draftStoryFunc != nil {
		return m.draftStoryFunc(ctx, prompt)
	}
	return domain.StoryPatch{}, errNotImplemented
}

func (m *mockDraftingPort) DecomposeStory(ctx context.Context, story domain.UserStory) ([]domain.TaskPatch, error) {
	if m.decomposeStoryFunc != nil {
		return m.decomposeStoryFunc(ctx, story)
	}
	return nil, errNotImplemented
}

func (m *mockDraftingPort) DescribeTask(ctx context.Context, title string) (drafting.DescribeTaskResponse, error) {
	if m.describeTaskFunc != nil {
		return m.describeTaskFunc(ctx, title)
	}
	return drafting.DescribeTaskResponse{}, errNotImplemented
}

func (m *mockDraftingPort) CategorizeTask(ctx context.Context, title, description string) (string, error) {
	if m.categorizeTaskFunc != nil {
		return m.categorizeTaskFunc(ctx, title, description)
	}
	return "", errNotImplemented
}

func (m *mockDraftingPort) EstimateTask(ctx context.Context, req drafting.EstimateTaskRequest) (float64, error) {
	if m.estimateTaskFunc != nil {
		return m.estimateTaskFunc(ctx, req)
	}
	return 0, errNotImplemented
}

func (m *mockDraftingPort) AuditTask(ctx context.Context, req drafting.AuditTaskRequest) (drafting.AuditTaskResponse, error) {
	if m.auditTaskFunc != nil {
		return m.auditTaskFunc(ctx, req)
	}
	return drafting.AuditTaskResponse{}, errNotImplemented
}

// mockActivityPort implements activity.ActivityPort for testing.
type mockActivityPort struct {
	entries []activity.Entry
	err     error
}

func (m *mockActivityPort) Recent(_ context.Context, limit int) ([]activity.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.entries) {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}
