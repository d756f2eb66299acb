package backlog

import domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"

// Every response carries an optional Fault. Expected failures (validation,
// missing entities, corrupt storage) travel in the Fault so the caller can
// rebuild the error kind on its side of the request-reply hop.

// ListTasksRequest is the request for list-tasks.
type ListTasksRequest struct{}

// TaskListResponse is the response of list-tasks.
type TaskListResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Fault *domain.Fault `json:"fault,omitempty"`
}

// GetTaskRequest is the request for get-task.
type GetTaskRequest struct {
	ID int64 `json:"id"`
}

// TaskResponse carries a single task.
type TaskResponse struct {
	Task  domain.Task   `json:"task"`
	Fault *domain.Fault `json:"fault,omitempty"`
}

// CreateTaskRequest is the request for create-task. Task holds the creation
// payload; absent fields are reported as missing.
type CreateTaskRequest struct {
	Task        domain.TaskPatch `json:"task"`
	UserStoryID *int64           `json:"user_story_id,omitempty"`
}

// UpdateTaskRequest is the request for update-task.
type UpdateTaskRequest struct {
	ID    int64            `json:"id"`
	Patch domain.TaskPatch `json:"patch"`
}

// DeleteTaskRequest is the request for delete-task.
type DeleteTaskRequest struct {
	ID int64 `json:"id"`
}

// DeleteResponse is the response of delete-task and delete-story.
type DeleteResponse struct {
	Deleted      bool          `json:"deleted"`
	TasksRemoved int           `json:"tasks_removed"`
	Fault        *domain.Fault `json:"fault,omitempty"`
}

// ListStoriesRequest is the request for list-stories.
type ListStoriesRequest struct{}

// StoryListResponse lists stories newest first, each with its tasks.
type StoryListResponse struct {
	Stories []domain.StoryWithTasks `json:"stories"`
	Fault   *domain.Fault           `json:"fault,omitempty"`
}

// GetStoryRequest is the request for get-story.
type GetStoryRequest struct {
	ID int64 `json:"id"`
}

// StoryResponse carries a story and its tasks.
type StoryResponse struct {
	Story domain.StoryWithTasks `json:"story"`
	Fault *domain.Fault         `json:"fault,omitempty"`
}

// CreateStoryRequest is the request for create-story.
type CreateStoryRequest struct {
	Story   domain.StoryPatch `json:"story"`
	Drafted bool              `json:"drafted"`
}

// UpdateStoryRequest is the request for update-story.
type UpdateStoryRequest struct {
	ID    int64             `json:"id"`
	Patch domain.StoryPatch `json:"patch"`
}

// DeleteStoryRequest is the request for delete-story.
type DeleteStoryRequest struct {
	ID int64 `json:"id"`
}

// AddStoryTasksRequest is the request for add-story-tasks. The batch is
// persisted completely or not at all.
type AddStoryTasksRequest struct {
	StoryID int64              `json:"story_id"`
	Tasks   []domain.TaskPatch `json:"tasks"`
	Drafted bool               `json:"drafted"`
}

// TaskBatchResponse is the response of add-story-tasks.
type TaskBatchResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Fault *domain.Fault `json:"fault,omitempty"`
}
