package backlog

import "time"

// Priority ranks how urgent a task or user story is.
type Priority string

const (
	PriorityLow      Priority = "baja"
	PriorityMedium   Priority = "media"
	PriorityHigh     Priority = "alta"
	PriorityBlocking Priority = "bloqueante"
)

// Priorities lists every accepted priority, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityBlocking}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Status is the workflow state of a task.
type Status string

const (
	StatusPending    Status = "pendiente"
	StatusInProgress Status = "en_progreso"
	StatusInReview   Status = "en_revision"
	StatusDone       Status = "completada"
)

// Statuses lists every accepted status in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusInReview, StatusDone}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Task is a unit of work, optionally owned by a UserStory.
// Field order is the order fields are written to the task document.
type Task struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Priority       Priority  `json:"priority"`
	EffortHours    float64   `json:"effort_hours"`
	Status         Status    `json:"status"`
	AssignedTo     string    `json:"assigned_to"`
	Category       string    `json:"category"`
	RiskAnalysis   string    `json:"risk_analysis"`
	RiskMitigation string    `json:"risk_mitigation"`
	UserStoryID    *int64    `json:"user_story_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Identity returns the task id.
func (t Task) Identity() int64 { return t.ID }

// BelongsTo reports whether the task is owned by the given story.
func (t Task) BelongsTo(storyID int64) bool {
	return t.UserStoryID != nil && *t.UserStoryID == storyID
}

// NewTask builds a task from a creation payload. Every required field must be
// present and well formed; the id and creation time are left for the store.
func NewTask(p TaskPatch) (Task, error) {
	if err := ValidateTaskCreate(p); err != nil {
		return Task{}, err
	}
	var t Task
	ApplyTaskPatch(&t, p)
	return t, nil
}

// ValidateTask checks an already assembled task.
func ValidateTask(t Task) error {
	var problems Problems
	checkTitle(&problems, "title", t.Title)
	if !t.Priority.Valid() {
		problems.Add("priority", priorityReason)
	}
	if !t.Status.Valid() {
		problems.Add("status", statusReason)
	}
	checkEffort(&problems, t.EffortHours)
	if t.UserStoryID != nil && *t.UserStoryID <= 0 {
		problems.Add("user_story_id", "must be a positive integer")
	}
	return problems.Err()
}
