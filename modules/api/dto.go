package api

import (
	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
	"github.com/mmoralesp95/Proyecto-IA/modules/activity"
)

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error    string                `json:"error"`
	Message  string                `json:"message"`
	Problems []domain.FieldProblem `json:"problems,omitempty"`
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// DescribeResponse is the HTTP response for POST /ai/tasks/describe.
type DescribeResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CategorizeResponse is the HTTP response for POST /ai/tasks/categorize.
type CategorizeResponse struct {
	Category string `json:"category"`
}

// EstimateResponse is the HTTP response for POST /ai/tasks/estimate.
type EstimateResponse struct {
	EffortHours float64 `json:"effort_hours"`
}

// AuditResponse is the HTTP response for POST /ai/tasks/audit. ID is null
// when the request carried none.
type AuditResponse struct {
	ID *int64 `json:"id"`
	domain.TaskPatch
}

// ActivityResponse is the HTTP response for GET /activity.
type ActivityResponse struct {
	Entries []activity.Entry `json:"entries"`
	Total   int              `json:"total"`
}

// StoryListResponse is the JSON form of the user story list page.
type StoryListResponse struct {
	Stories []domain.StoryWithTasks `json:"stories"`
	Total   int                     `json:"total"`
}
