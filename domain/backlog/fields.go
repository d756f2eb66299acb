package backlog

import "strconv"

// Field is one named, display-formatted value of an entity.
type Field struct {
	Name  string
	Value string
}

// Fields lists the descriptive fields of the task in document order.
// Identity and bookkeeping fields (id, owner, timestamps) are left out.
func (t Task) Fields() []Field {
	return []Field{
		{"title", t.Title},
		{"description", t.Description},
		{"priority", string(t.Priority)},
		{"effort_hours", FormatHours(t.EffortHours)},
		{"status", string(t.Status)},
		{"assigned_to", t.AssignedTo},
		{"category", t.Category},
		{"risk_analysis", t.RiskAnalysis},
		{"risk_mitigation", t.RiskMitigation},
	}
}

// Fields lists the descriptive fields of the story in document order.
func (s UserStory) Fields() []Field {
	return []Field{
		{"project", s.Project},
		{"role", s.Role},
		{"goal", s.Goal},
		{"reason", s.Reason},
		{"description", s.Description},
		{"priority", string(s.Priority)},
		{"story_points", strconv.Itoa(s.StoryPoints)},
		{"effort_hours", FormatHours(s.EffortHours)},
	}
}

// FormatHours renders an effort without a trailing ".0" for whole hours.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
