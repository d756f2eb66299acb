package backlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
)

// BacklogPort defines the interface for task and user story operations.
// Errors keep their kind: use errors.Is with the domain sentinels.
type BacklogPort interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id int64) (domain.Task, error)
	CreateTask(ctx context.Context, task domain.TaskPatch, storyID *int64) (domain.Task, error)
	UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ListStories(ctx context.Context) ([]domain.StoryWithTasks, error)
	GetStory(ctx context.Context, id int64) (domain.StoryWithTasks, error)
	CreateStory(ctx context.Context, story domain.StoryPatch, drafted bool) (domain.UserStory, error)
	UpdateStory(ctx context.Context, id int64, patch domain.StoryPatch) (domain.StoryWithTasks, error)
	DeleteStory(ctx context.Context, id int64) (int, error)
	AddStoryTasks(ctx context.Context, storyID int64, tasks []domain.TaskPatch, drafted bool) ([]domain.Task, error)
}

// backlogAdapter wraps ServiceContainer for type-safe cross-module communication.
type backlogAdapter struct {
	container mono.ServiceContainer
}

// NewBacklogAdapter creates a new adapter for backlog services.
func NewBacklogAdapter(container mono.ServiceContainer) BacklogPort {
	if container == nil {
		panic("backlog adapter requires non-nil ServiceContainer")
	}
	return &backlogAdapter{container: container}
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// faultErr turns a response fault into an error, keeping nil as nil.
func faultErr(f *domain.Fault) error {
	if f == nil {
		return nil
	}
	return f
}

func (a *backlogAdapter) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var resp TaskListResponse
	if err := call(ctx, a.container, "list-tasks", &ListTasksRequest{}, &resp); err != nil {
		return nil, err
	}
	if err := faultErr(resp.Fault); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (a *backlogAdapter) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	var resp TaskResponse
	if err := call(ctx, a.container, "get-task", &GetTaskRequest{ID: id}, &resp); err != nil {
		return domain.Task{}, err
	}
	return resp.Task, faultErr(resp.Fault)
}

func (a *backlogAdapter) CreateTask(ctx context.Context, task domain.TaskPatch, storyID *int64) (domain.Task, error) {
	var resp TaskResponse
	req := CreateTaskRequest{Task: task, UserStoryID: storyID}
	if err := call(ctx, a.container, "create-task", &req, &resp); err != nil {
		return domain.Task{}, err
	}
	return resp.Task, faultErr(resp.Fault)
}

func (a *backlogAdapter) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error) {
	var resp TaskResponse
	req := UpdateTaskRequest{ID: id, Patch: patch}
	if err := call(ctx, a.container, "update-task", &req, &resp); err != nil {
		return domain.Task{}, err
	}
	return resp.Task, faultErr(resp.Fault)
}

func (a *backlogAdapter) DeleteTask(ctx context.Context, id int64) error {
	var resp DeleteResponse
	if err := call(ctx, a.container, "delete-task", &DeleteTaskRequest{ID: id}, &resp); err != nil {
		return err
	}
	return faultErr(resp.Fault)
}

func (a *backlogAdapter) ListStories(ctx context.Context) ([]domain.StoryWithTasks, error) {
	var resp StoryListResponse
	if err := call(ctx, a.container, "list-stories", &ListStoriesRequest{}, &resp); err != nil {
		return nil, err
	}
	if err := faultErr(resp.Fault); err != nil {
		return nil, err
	}
	return resp.Stories, nil
}

func (a *backlogAdapter) GetStory(ctx context.Context, id int64) (domain.StoryWithTasks, error) {
	var resp StoryResponse
	if err := call(ctx, a.container, "get-story", &GetStoryRequest{ID: id}, &resp); err != nil {
		return domain.StoryWithTasks{}, err
	}
	return resp.Story, faultErr(resp.Fault)
}

func (a *backlogAdapter) CreateStory(ctx context.Context, story domain.StoryPatch, drafted bool) (domain.UserStory, error) {
	var resp StoryResponse
	req := CreateStoryRequest{Story: story, Drafted: drafted}
	if err := call(ctx, a.container, "create-story", &req, &resp); err != nil {
		return domain.UserStory{}, err
	}
	return resp.Story.Story, faultErr(resp.Fault)
}

func (a *backlogAdapter) UpdateStory(ctx context.Context, id int64, patch domain.StoryPatch) (domain.StoryWithTasks, error) {
	var resp StoryResponse
	req := UpdateStoryRequest{ID: id, Patch: patch}
	if err := call(ctx, a.container, "update-story", &req, &resp); err != nil {
		return domain.StoryWithTasks{}, err
	}
	return resp.Story, faultErr(resp.Fault)
}

func (a *backlogAdapter) DeleteStory(ctx context.Context, id int64) (int, error) {
	var resp DeleteResponse
	if err := call(ctx, a.container, "delete-story", &DeleteStoryRequest{ID: id}, &resp); err != nil {
		return 0, err
	}
	return resp.TasksRemoved, faultErr(resp.Fault)
}

func (a *backlogAdapter) AddStoryTasks(ctx context.Context, storyID int64, tasks []domain.TaskPatch, drafted bool) ([]domain.Task, error) {
	var resp TaskBatchResponse
	req := AddStoryTasksRequest{StoryID: storyID, Tasks: tasks, Drafted: drafted}
	if err := call(ctx, a.container, "add-story-tasks", &req, &resp); err != nil {
		return nil, err
	}
	if err := faultErr(resp.Fault); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}
