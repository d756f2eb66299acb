package storage

import (
	"time"

	"github.com/mmoralesp95/Proyecto-IA/domain/backlog"
)

// taskRecord is the GORM model for the tasks table.
type taskRecord struct {
	ID             int64   `gorm:"primaryKey;autoIncrement:false"`
	Title          string  `gorm:"size:255;not null"`
	Description    string  `gorm:"type:text"`
	Priority       string  `gorm:"size:20"`
	EffortHours    float64 `gorm:"not null;default:0"`
	Status         string  `gorm:"size:20"`
	AssignedTo     string  `gorm:"size:100"`
	Category       string  `gorm:"size:100"`
	RiskAnalysis   string  `gorm:"type:text"`
	RiskMitigation string  `gorm:"type:text"`
	UserStoryID    *int64  `gorm:"index"`
	CreatedAt      time.Time
	// Position keeps the order rows were saved in; LoadAll sorts by it.
	Position int64 `gorm:"index;not null;default:0"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

// storyRecord is the GORM model for the user_stories table. Its tasks are
// removed by sqlStoryStore.Delete in the same transaction as the row.
type storyRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false"`
	Project     string    `gorm:"size:100;not null"`
	Role        string    `gorm:"size:100;not null"`
	Goal        string    `gorm:"type:text;not null"`
	Reason      string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	Priority    string    `gorm:"size:20"`
	StoryPoints int       `gorm:"not null;default:0"`
	EffortHours float64   `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"index"`
	Position    int64     `gorm:"index;not null;default:0"`
}

func (storyRecord) TableName() string {
	return "user_stories"
}

// sequenceRecord stores the highest id ever issued per table, so ids freed
// by deletes are not reissued across restarts.
type sequenceRecord struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64  `gorm:"not null"`
}

func (sequenceRecord) TableName() string {
	return "id_sequences"
}

func toTaskRecord(t backlog.Task) taskRecord {
	return taskRecord{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Priority:       string(t.Priority),
		EffortHours:    t.EffortHours,
		Status:         string(t.Status),
		AssignedTo:     t.AssignedTo,
		Category:       t.Category,
		RiskAnalysis:   t.RiskAnalysis,
		RiskMitigation: t.RiskMitigation,
		UserStoryID:    copyID(t.UserStoryID),
		CreatedAt:      t.CreatedAt,
	}
}

func (r taskRecord) toDomain() backlog.Task {
	return backlog.Task{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		Priority:       backlog.Priority(r.Priority),
		EffortHours:    r.EffortHours,
		Status:         backlog.Status(r.Status),
		AssignedTo:     r.AssignedTo,
		Category:       r.Category,
		RiskAnalysis:   r.RiskAnalysis,
		RiskMitigation: r.RiskMitigation,
		UserStoryID:    copyID(r.UserStoryID),
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

// taskColumns maps the present fields of a patch to column updates.
func taskColumns(p backlog.TaskPatch) map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Priority != nil {
		cols["priority"] = string(*p.Priority)
	}
	if p.EffortHours != nil {
		cols["effort_hours"] = *p.EffortHours
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.AssignedTo != nil {
		cols["assigned_to"] = *p.AssignedTo
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.RiskAnalysis != nil {
		cols["risk_analysis"] = *p.RiskAnalysis
	}
	if p.RiskMitigation != nil {
		cols["risk_mitigation"] = *p.RiskMitigation
	}
	return cols
}

func toStoryRecord(s backlog.UserStory) storyRecord {
	return storyRecord{
		ID:          s.ID,
		Project:     s.Project,
		Role:        s.Role,
		Goal:        s.Goal,
		Reason:      s.Reason,
		Description: s.Description,
		Priority:    string(s.Priority),
		StoryPoints: s.StoryPoints,
		EffortHours: s.EffortHours,
		CreatedAt:   s.CreatedAt,
	}
}

func (r storyRecord) toDomain() backlog.UserStory {
	return backlog.UserStory{
		ID:          r.ID,
		Project:     r.Project,
		Role:        r.Role,
		Goal:        r.Goal,
		Reason:      r.Reason,
		Description: r.Description,
		Priority:    backlog.Priority(r.Priority),
		StoryPoints: r.StoryPoints,
		EffortHours: r.EffortHours,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func storyColumns(p backlog.StoryPatch) map[string]any {
	cols := make(map[string]any)
	if p.Project != nil {
		cols["project"] = *p.Project
	}
	if p.Role != nil {
		cols["role"] = *p.Role
	}
	if p.Goal != nil {
		cols["goal"] = *p.Goal
	}
	if p.Reason != nil {
		cols["reason"] = *p.Reason
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Priority != nil {
		cols["priority"] = string(*p.Priority)
	}
	if p.StoryPoints != nil {
		cols["story_points"] = *p.StoryPoints
	}
	if p.EffortHours != nil {
		cols["effort_hours"] = *p.EffortHours
	}
	return cols
}
