package drafting

import domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"

// DraftStoryRequest is the request for draft-story.
type DraftStoryRequest struct {
	Prompt string `json:"prompt"`
}

// StoryDraftResponse carries a validated story creation payload.
type StoryDraftResponse struct {
	Story domain.StoryPatch `json:"story"`
	Fault *domain.Fault     `json:"fault,omitempty"`
}

// DecomposeStoryRequest is the request for decompose-story.
type DecomposeStoryRequest struct {
	Story domain.UserStory `json:"story"`
}

// TaskDraftsResponse carries validated task creation payloads.
type TaskDraftsResponse struct {
	Tasks []domain.TaskPatch `json:"tasks"`
	Fault *domain.Fault      `json:"fault,omitempty"`
}

// DescribeTaskRequest is the request for describe-task.
type DescribeTaskRequest struct {
	Title string `json:"title"`
}

type DescribeTaskResponse struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Fault       *domain.Fault `json:"fault,omitempty"`
}

// CategorizeTaskRequest is the request for categorize-task.
type CategorizeTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CategorizeTaskResponse struct {
	Category string        `json:"category"`
	Fault    *domain.Fault `json:"fault,omitempty"`
}

// EstimateTaskRequest is the request for estimate-task.
type EstimateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type EstimateTaskResponse struct {
	EffortHours float64       `json:"effort_hours"`
	Fault       *domain.Fault `json:"fault,omitempty"`
}

// AuditTaskRequest is the request for audit-task. Task must carry every
// creation field plus a category. ID is optional and only echoed back.
type AuditTaskRequest struct {
	ID   *int64           `json:"id,omitempty"`
	Task domain.TaskPatch `json:"task"`
}

// AuditTaskResponse echoes the id and task fields with the risk analysis and
// mitigation plan filled in.
type AuditTaskResponse struct {
	ID    *int64           `json:"id,omitempty"`
	Task  domain.TaskPatch `json:"task"`
	Fault *domain.Fault    `json:"fault,omitempty"`
}
