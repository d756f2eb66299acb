package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
)

func taskNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Error:   string(domain.KindNotFound),
		Message: "Task not found",
	})
}

// listTasks handles GET /tasks.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	tasks, err := m.backlog.ListTasks(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return c.JSON(tasks)
}

// getTask handles GET /tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return taskNotFound(c)
	}

	task, err := m.backlog.GetTask(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(task)
}

// createTask handles POST /tasks. Every creation field must be present and
// valid; all problems are reported together.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	body := c.Body()
	patch, err := domain.DecodeTaskPatch(body)
	if err != nil {
		return writeError(c, err)
	}
	storyID, err := decodeOptionalID(body, "user_story_id")
	if err != nil {
		return writeError(c, err)
	}
	if err := domain.ValidateTaskCreate(patch); err != nil {
		return writeError(c, err)
	}

	task, err := m.backlog.CreateTask(c.UserContext(), patch, storyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// decodeOptionalID reads an optional positive integer field of a JSON
// object, such as the user_story_id of a task payload.
func decodeOptionalID(body []byte, field string) (*int64, error) {
	const reason = "must be a positive integer"
	var problems domain.Problems

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		problems.Add(field, reason)
		return nil, problems.Err()
	}
	raw, ok := fields[field]
	if !ok || string(raw) == "null" {
		return nil, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		problems.Add(field, reason)
		return nil, problems.Err()
	}
	id, err := n.Int64()
	if err != nil || id <= 0 {
		problems.Add(field, reason)
		return nil, problems.Err()
	}
	return &id, nil
}

// updateTask handles PUT /tasks/:id. Only the fields present in the body are
// changed.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return taskNotFound(c)
	}

	patch, err := domain.DecodeTaskPatch(c.Body())
	if err != nil {
		return writeError(c, err)
	}
	if err := domain.ValidateTaskPatch(patch); err != nil {
		return writeError(c, err)
	}

	task, err := m.backlog.UpdateTask(c.UserContext(), id, patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(task)
}

// deleteTask handles DELETE /tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return taskNotFound(c)
	}

	if err := m.backlog.DeleteTask(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Task deleted"})
}
