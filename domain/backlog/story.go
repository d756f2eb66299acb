package backlog

import "time"

// UserStory captures a requirement as "as a <role> I want <goal> so that
// <reason>" and owns the tasks it is broken into.
type UserStory struct {
	ID          int64     `json:"id"`
	Project     string    `json:"project"`
	Role        string    `json:"role"`
	Goal        string    `json:"goal"`
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	StoryPoints int       `json:"story_points"`
	EffortHours float64   `json:"effort_hours"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s UserStory) Identity() int64 { return s.ID }

// NewUserStory builds a story from a creation payload.
func NewUserStory(p StoryPatch) (UserStory, error) {
	if err := ValidateStoryCreate(p); err != nil {
		return UserStory{}, err
	}
	var s UserStory
	ApplyStoryPatch(&s, p)
	return s, nil
}

// ValidateStory checks an already assembled story.
func ValidateStory(s UserStory) error {
	var problems Problems
	checkTitle(&problems, "project", s.Project)
	checkTitle(&problems, "role", s.Role)
	checkTitle(&problems, "goal", s.Goal)
	checkTitle(&problems, "reason", s.Reason)
	if s.Priority != "" && !s.Priority.Valid() {
		problems.Add("priority", priorityReason)
	}
	if s.StoryPoints < 0 {
		problems.Add("story_points", "must be zero or greater")
	}
	checkEffort(&problems, s.EffortHours)
	return problems.Err()
}

// StoryWithTasks is a story together with the tasks it owns.
type StoryWithTasks struct {
	Story UserStory `json:"story"`
	Tasks []Task    `json:"tasks"`
}

// TotalEffort sums the effort of the story's tasks.
func (s StoryWithTasks) TotalEffort() float64 {
	var total float64
	for _, t := range s.Tasks {
		total += t.EffortHours
	}
	return total
}
