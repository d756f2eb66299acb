package backlog

import (
	"bytes"
	"encoding/json"
	"math"
)

// DecodeTaskPatch parses a JSON object into a TaskPatch. Every field holding
// the wrong JSON type is reported; unknown fields are ignored. Presence and
// range checks are left to ValidateTaskCreate and ValidateTaskPatch.
func DecodeTaskPatch(body []byte) (TaskPatch, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return TaskPatch{}, err
	}

	var p TaskPatch
	var problems Problems
	p.Title = stringField(fields, "title", &problems)
	p.Description = stringField(fields, "description", &problems)
	p.Priority = enumField[Priority](fields, "priority", &problems)
	p.EffortHours = numberField(fields, "effort_hours", &problems)
	p.Status = enumField[Status](fields, "status", &problems)
	p.AssignedTo = stringField(fields, "assigned_to", &problems)
	p.Category = stringField(fields, "category", &problems)
	p.RiskAnalysis = stringField(fields, "risk_analysis", &problems)
	p.RiskMitigation = stringField(fields, "risk_mitigation", &problems)
	if err := problems.Err(); err != nil {
		return TaskPatch{}, err
	}
	return p, nil
}

// DecodeStoryPatch parses a JSON object into a StoryPatch.
func DecodeStoryPatch(body []byte) (StoryPatch, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return StoryPatch{}, err
	}

	var p StoryPatch
	var problems Problems
	p.Project = stringField(fields, "project", &problems)
	p.Role = stringField(fields, "role", &problems)
	p.Goal = stringField(fields, "goal", &problems)
	p.Reason = stringField(fields, "reason", &problems)
	p.Description = stringField(fields, "description", &problems)
	p.Priority = enumField[Priority](fields, "priority", &problems)
	p.StoryPoints = integerField(fields, "story_points", &problems)
	p.EffortHours = numberField(fields, "effort_hours", &problems)
	if err := problems.Err(); err != nil {
		return StoryPatch{}, err
	}
	return p, nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, Problems{{Field: "body", Reason: "must be a JSON object"}}.Err()
	}
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, Problems{{Field: "body", Reason: "must be a JSON object"}}.Err()
	}
	return fields, nil
}

func stringField(fields map[string]json.RawMessage, name string, problems *Problems) *string {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		problems.Add(name, "must be a string")
		return nil
	}
	return &s
}

func enumField[T ~string](fields map[string]json.RawMessage, name string, problems *Problems) *T {
	s := stringField(fields, name, problems)
	if s == nil {
		return nil
	}
	v := T(*s)
	return &v
}

func numberField(fields map[string]json.RawMessage, name string, problems *Problems) *float64 {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	var n float64
	if isNull(raw) || json.Unmarshal(raw, &n) != nil {
		problems.Add(name, "must be a number")
		return nil
	}
	return &n
}

func integerField(fields map[string]json.RawMessage, name string, problems *Problems) *int {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	var n float64
	if isNull(raw) || json.Unmarshal(raw, &n) != nil || n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		problems.Add(name, "must be an integer")
		return nil
	}
	i := int(n)
	return &i
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
