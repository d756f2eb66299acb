package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
	"github.com/mmoralesp95/Proyecto-IA/modules/drafting"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// requireTitle reports a missing or blank title as a validation error.
func requireTitle(p domain.TaskPatch) error {
	var problems domain.Problems
	if strings.TrimSpace(deref(p.Title)) == "" {
		problems.Add("title", "is required")
	}
	return problems.Err()
}

// describeTask handles POST /ai/tasks/describe.
func (m *APIModule) describeTask(c *fiber.Ctx) error {
	patch, err := domain.DecodeTaskPatch(c.Body())
	if err != nil {
		return writeError(c, err)
	}
	if err := requireTitle(patch); err != nil {
		return writeErrorStatus(c, err, fiber.StatusUnprocessableEntity)
	}

	resp, err := m.drafting.DescribeTask(c.UserContext(), *patch.Title)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(DescribeResponse{Title: resp.Title, Description: resp.Description})
}

// categorizeTask handles POST /ai/tasks/categorize.
func (m *APIModule) categorizeTask(c *fiber.Ctx) error {
	patch, err := domain.DecodeTaskPatch(c.Body())
	if err != nil {
		return writeError(c, err)
	}
	if err := requireTitle(patch); err != nil {
		return writeErrorStatus(c, err, fiber.StatusUnprocessableEntity)
	}

	category, err := m.drafting.CategorizeTask(c.UserContext(), *patch.Title, deref(patch.Description))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(CategorizeResponse{Category: category})
}

// estimateTask handles POST /ai/tasks/estimate. A reply that is not a
// usable number of hours is a client-visible 400.
func (m *APIModule) estimateTask(c *fiber.Ctx) error {
	patch, err := domain.DecodeTaskPatch(c.Body())
	if err != nil {
		return writeError(c, err)
	}
	if err := requireTitle(patch); err != nil {
		return writeError(c, err)
	}

	hours, err := m.drafting.EstimateTask(c.UserContext(), drafting.EstimateTaskRequest{
		Title:       *patch.Title,
		Description: deref(patch.Description),
		Category:    deref(patch.Category),
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindDraft {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   string(domain.KindDraft),
				Message: "Invalid effort_hours value",
			})
		}
		return writeError(c, err)
	}
	return c.JSON(EstimateResponse{EffortHours: hours})
}

// auditTask handles POST /ai/tasks/audit. The task, and its id when one was
// sent, is echoed back with its risk analysis and mitigation plan.
func (m *APIModule) auditTask(c *fiber.Ctx) error {
	body := c.Body()
	patch, err := domain.DecodeTaskPatch(body)
	if err != nil {
		return writeError(c, err)
	}
	id, err := decodeOptionalID(body, "id")
	if err != nil {
		return writeError(c, err)
	}

	audited, err := m.drafting.AuditTask(c.UserContext(), drafting.AuditTaskRequest{ID: id, Task: patch})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(AuditResponse{ID: audited.ID, TaskPatch: audited.Task})
}
