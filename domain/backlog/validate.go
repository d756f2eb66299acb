package backlog

import (
	"math"
	"strings"
)

const (
	requiredReason = "is required"
	blankReason    = "must not be empty"
	effortReason   = "must be a number greater than or equal to zero"
)

var (
	priorityReason = "must be one of " + joinValues(Priorities)
	statusReason   = "must be one of " + joinValues(Statuses)
)

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// ValidateTaskCreate checks a creation payload: every required field must be
// present, then every present field must be well formed.
func ValidateTaskCreate(p TaskPatch) error {
	var problems Problems
	requireField(&problems, "title", p.Title != nil)
	requireField(&problems, "description", p.Description != nil)
	requireField(&problems, "priority", p.Priority != nil)
	requireField(&problems, "effort_hours", p.EffortHours != nil)
	requireField(&problems, "status", p.Status != nil)
	requireField(&problems, "assigned_to", p.AssignedTo != nil)
	checkTaskPatch(&problems, p)
	return problems.Err()
}

// ValidateTaskPatch checks only the fields present in an update payload.
func ValidateTaskPatch(p TaskPatch) error {
	var problems Problems
	checkTaskPatch(&problems, p)
	return problems.Err()
}

func checkTaskPatch(problems *Problems, p TaskPatch) {
	if p.Title != nil {
		checkTitle(problems, "title", *p.Title)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		problems.Add("priority", priorityReason)
	}
	if p.EffortHours != nil {
		checkEffort(problems, *p.EffortHours)
	}
	if p.Status != nil && !p.Status.Valid() {
		problems.Add("status", statusReason)
	}
}

// ValidateStoryCreate checks a user story creation payload.
func ValidateStoryCreate(p StoryPatch) error {
	var problems Problems
	requireField(&problems, "project", p.Project != nil)
	requireField(&problems, "role", p.Role != nil)
	requireField(&problems, "goal", p.Goal != nil)
	requireField(&problems, "reason", p.Reason != nil)
	checkStoryPatch(&problems, p)
	return problems.Err()
}

// ValidateStoryPatch checks only the fields present in a story update.
func ValidateStoryPatch(p StoryPatch) error {
	var problems Problems
	checkStoryPatch(&problems, p)
	return problems.Err()
}

func checkStoryPatch(problems *Problems, p StoryPatch) {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"project", p.Project},
		{"role", p.Role},
		{"goal", p.Goal},
		{"reason", p.Reason},
	} {
		if f.value != nil {
			checkTitle(problems, f.name, *f.value)
		}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		problems.Add("priority", priorityReason)
	}
	if p.StoryPoints != nil && *p.StoryPoints < 0 {
		problems.Add("story_points", "must be zero or greater")
	}
	if p.EffortHours != nil {
		checkEffort(problems, *p.EffortHours)
	}
}

func requireField(problems *Problems, field string, present bool) {
	if !present {
		problems.Add(field, requiredReason)
	}
}

func checkTitle(problems *Problems, field, value string) {
	if strings.TrimSpace(value) == "" {
		problems.Add(field, blankReason)
	}
}

func checkEffort(problems *Problems, hours float64) {
	if hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		problems.Add("effort_hours", effortReason)
	}
}
