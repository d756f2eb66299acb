package backlog

// TaskPatch carries the fields of a task create or update request.
// A nil field is absent and leaves the stored value untouched.
type TaskPatch struct {
	Title          *string   `json:"title,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Priority       *Priority `json:"priority,omitempty"`
	EffortHours    *float64  `json:"effort_hours,omitempty"`
	Status         *Status   `json:"status,omitempty"`
	AssignedTo     *string   `json:"assigned_to,omitempty"`
	Category       *string   `json:"category,omitempty"`
	RiskAnalysis   *string   `json:"risk_analysis,omitempty"`
	RiskMitigation *string   `json:"risk_mitigation,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p TaskPatch) Empty() bool {
	return p == TaskPatch{}
}

// ApplyTaskPatch copies every present field of p onto t.
// Id, owning story and creation time are never patched.
func ApplyTaskPatch(t *Task, p TaskPatch) {
	setIf(&t.Title, p.Title)
	setIf(&t.Description, p.Description)
	setIf(&t.Priority, p.Priority)
	setIf(&t.EffortHours, p.EffortHours)
	setIf(&t.Status, p.Status)
	setIf(&t.AssignedTo, p.AssignedTo)
	setIf(&t.Category, p.Category)
	setIf(&t.RiskAnalysis, p.RiskAnalysis)
	setIf(&t.RiskMitigation, p.RiskMitigation)
}

// TaskPatchOf returns a patch holding every patchable field of t.
func TaskPatchOf(t Task) TaskPatch {
	return TaskPatch{
		Title:          &t.Title,
		Description:    &t.Description,
		Priority:       &t.Priority,
		EffortHours:    &t.EffortHours,
		Status:         &t.Status,
		AssignedTo:     &t.AssignedTo,
		Category:       &t.Category,
		RiskAnalysis:   &t.RiskAnalysis,
		RiskMitigation: &t.RiskMitigation,
	}
}

// StoryPatch carries the fields of a user story create or update request.
type StoryPatch struct {
	Project     *string   `json:"project,omitempty"`
	Role        *string   `json:"role,omitempty"`
	Goal        *string   `json:"goal,omitempty"`
	Reason      *string   `json:"reason,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	StoryPoints *int      `json:"story_points,omitempty"`
	EffortHours *float64  `json:"effort_hours,omitempty"`
}

func (p StoryPatch) Empty() bool {
	return p == StoryPatch{}
}

// ApplyStoryPatch copies every present field of p onto s.
func ApplyStoryPatch(s *UserStory, p StoryPatch) {
	setIf(&s.Project, p.Project)
	setIf(&s.Role, p.Role)
	setIf(&s.Goal, p.Goal)
	setIf(&s.Reason, p.Reason)
	setIf(&s.Description, p.Description)
	setIf(&s.Priority, p.Priority)
	setIf(&s.StoryPoints, p.StoryPoints)
	setIf(&s.EffortHours, p.EffortHours)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
