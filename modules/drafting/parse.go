package drafting

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
)

// stripFences removes a surrounding markdown code fence, which models add
// even when asked for bare JSON.
func stripFences(reply string) string {
	s := strings.TrimSpace(reply)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// normalizeEnum lowercases and underscores an enum value, so "En progreso"
// becomes "en_progreso".
func normalizeEnum[T ~string](v *T) {
	if v == nil {
		return
	}
	s := strings.ToLower(strings.TrimSpace(string(*v)))
	*v = T(strings.Join(strings.Fields(s), "_"))
}

// parseStory turns a model reply into a story creation payload that passed
// validation.
func parseStory(reply string) (domain.StoryPatch, error) {
	p, err := domain.DecodeStoryPatch([]byte(stripFences(reply)))
	if err != nil {
		return domain.StoryPatch{}, &domain.DraftError{Reason: "story is not a well-formed object", Problems: domain.ProblemsOf(err)}
	}
	normalizeEnum(p.Priority)
	if err := domain.ValidateStoryCreate(p); err != nil {
		return domain.StoryPatch{}, &domain.DraftError{Reason: "story failed validation", Problems: domain.ProblemsOf(err)}
	}
	return p, nil
}

// parseTasks turns a model reply into task creation payloads. Either every
// task passes validation or the whole batch is rejected.
func parseTasks(reply string) ([]domain.TaskPatch, error) {
	body := []byte(stripFences(reply))

	var items []json.RawMessage
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, &domain.DraftError{Reason: "task list is not valid JSON"}
		}
	} else {
		var envelope struct {
			Tasks []json.RawMessage `json:"tasks"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, &domain.DraftError{Reason: "task list is not valid JSON"}
		}
		items = envelope.Tasks
	}
	if len(items) == 0 {
		return nil, &domain.DraftError{Reason: "no tasks were drafted"}
	}

	drafts := make([]domain.TaskPatch, 0, len(items))
	var problems domain.Problems
	for i, raw := range items {
		p, err := domain.DecodeTaskPatch(raw)
		if err == nil {
			applyTaskDefaults(&p)
			err = domain.ValidateTaskCreate(p)
		}
		if err != nil {
			for _, fp := range domain.ProblemsOf(err) {
				problems.Add("tasks["+strconv.Itoa(i)+"]."+fp.Field, fp.Reason)
			}
			continue
		}
		drafts = append(drafts, p)
	}
	if len(problems) > 0 {
		return nil, &domain.DraftError{Reason: "drafted tasks failed validation", Problems: problems}
	}
	return drafts, nil
}

// applyTaskDefaults fills the fields a model cannot know about a new task.
func applyTaskDefaults(p *domain.TaskPatch) {
	normalizeEnum(p.Priority)
	normalizeEnum(p.Status)
	if p.Status == nil {
		p.Status = domain.Ptr(domain.StatusPending)
	}
	if p.AssignedTo == nil {
		p.AssignedTo = domain.Ptr("")
	}
}

// parseHours reads an effort estimate such as "8", "2.5" or "3,5".
func parseHours(reply string) (float64, error) {
	s := strings.TrimSpace(reply)
	s = strings.TrimRight(s, ".")
	s = strings.ReplaceAll(s, ",", ".")
	hours, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &domain.DraftError{Reason: "estimate is not a number"}
	}
	var problems domain.Problems
	if hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		problems.Add("effort_hours", "must be a number greater than or equal to zero")
		return 0, &domain.DraftError{Reason: "estimate is out of range", Problems: problems}
	}
	return hours, nil
}

// cleanCategory trims quotes and trailing punctuation from a one-word answer.
func cleanCategory(reply string) string {
	return strings.Trim(strings.TrimSpace(reply), "\"'`.,;: ")
}
