package drafting

import (
	"context"
	"log"
	"strings"

	"github.com/go-monolith/mono"
	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
	"github.com/mmoralesp95/Proyecto-IA/llm"
)

func fault(op string, err error) *domain.Fault {
	if domain.KindOf(err) != domain.KindValidation {
		log.Printf("[drafting] %s failed: %v", op, err)
	}
	return domain.FaultFrom(err)
}

// complete sends one exchange to the model. Provider failures are reported
// as draft generation errors; the cause is only logged.
func (m *Module) complete(ctx context.Context, op string, req llm.Request) (string, error) {
	if m.completer == nil {
		return "", domain.ErrServiceUnavailable
	}
	reply, err := m.completer.Complete(ctx, req)
	if err != nil {
		log.Printf("[drafting] %s: language model call failed: %v", op, err)
		return "", &domain.DraftError{Reason: "language model request failed"}
	}
	if strings.TrimSpace(reply) == "" {
		return "", &domain.DraftError{Reason: "language model returned an empty reply"}
	}
	return reply, nil
}

func requireText(problems *domain.Problems, field, value string) {
	if strings.TrimSpace(value) == "" {
		problems.Add(field, "is required")
	}
}

// draftStory handles the draft-story service request.
func (m *Module) draftStory(ctx context.Context, req DraftStoryRequest, _ *mono.Msg) (StoryDraftResponse, error) {
	var problems domain.Problems
	requireText(&problems, "prompt", req.Prompt)
	if err := problems.Err(); err != nil {
		return StoryDraftResponse{Fault: fault("draft-story", err)}, nil
	}

	reply, err := m.complete(ctx, "draft-story", llm.Request{
		System: storySystemPrompt,
		User:   storyUserPrompt(req.Prompt),
		JSON:   true,
	})
	if err != nil {
		return StoryDraftResponse{Fault: fault("draft-story", err)}, nil
	}

	story, err := parseStory(reply)
	if err != nil {
		return StoryDraftResponse{Fault: fault("draft-story", err)}, nil
	}
	return StoryDraftResponse{Story: story}, nil
}

// decomposeStory handles the decompose-story service request.
func (m *Module) decomposeStory(ctx context.Context, req DecomposeStoryRequest, _ *mono.Msg) (TaskDraftsResponse, error) {
	if err := domain.ValidateStory(req.Story); err != nil {
		return TaskDraftsResponse{Fault: fault("decompose-story", err)}, nil
	}

	reply, err := m.complete(ctx, "decompose-story", llm.Request{
		System: decomposeSystemPrompt,
		User:   decomposeUserPrompt(req.Story),
		JSON:   true,
	})
	if err != nil {
		return TaskDraftsResponse{Fault: fault("decompose-story", err)}, nil
	}

	tasks, err := parseTasks(reply)
	if err != nil {
		return TaskDraftsResponse{Fault: fault("decompose-story", err)}, nil
	}
	return TaskDraftsResponse{Tasks: tasks}, nil
}

// describeTask handles the describe-task service request.
func (m *Module) describeTask(ctx context.Context, req DescribeTaskRequest, _ *mono.Msg) (DescribeTaskResponse, error) {
	var problems domain.Problems
	requireText(&problems, "title", req.Title)
	if err := problems.Err(); err != nil {
		return DescribeTaskResponse{Fault: fault("describe-task", err)}, nil
	}

	reply, err := m.complete(ctx, "describe-task", llm.Request{
		System: describeSystemPrompt,
		User:   describeUserPrompt(req.Title),
	})
	if err != nil {
		return DescribeTaskResponse{Fault: fault("describe-task", err)}, nil
	}
	return DescribeTaskResponse{Title: req.Title, Description: reply}, nil
}

// categorizeTask handles the categorize-task service request.
func (m *Module) categorizeTask(ctx context.Context, req CategorizeTaskRequest, _ *mono.Msg) (CategorizeTaskResponse, error) {
	var problems domain.Problems
	requireText(&problems, "title", req.Title)
	if err := problems.Err(); err != nil {
		return CategorizeTaskResponse{Fault: fault("categorize-task", err)}, nil
	}

	reply, err := m.complete(ctx, "categorize-task", llm.Request{
		System: categorizeSystemPrompt,
		User:   categorizeUserPrompt(req.Title, req.Description),
	})
	if err != nil {
		return CategorizeTaskResponse{Fault: fault("categorize-task", err)}, nil
	}

	category := cleanCategory(reply)
	if category == "" {
		err := &domain.DraftError{Reason: "category is empty"}
		return CategorizeTaskResponse{Fault: fault("categorize-task", err)}, nil
	}
	return CategorizeTaskResponse{Category: category}, nil
}

// estimateTask handles the estimate-task service request.
func (m *Module) estimateTask(ctx context.Context, req EstimateTaskRequest, _ *mono.Msg) (EstimateTaskResponse, error) {
	var problems domain.Problems
	requireText(&problems, "title", req.Title)
	if err := problems.Err(); err != nil {
		return EstimateTaskResponse{Fault: fault("estimate-task", err)}, nil
	}

	reply, err := m.complete(ctx, "estimate-task", llm.Request{
		System: estimateSystemPrompt,
		User:   estimateUserPrompt(req.Title, req.Description, req.Category),
	})
	if err != nil {
		return EstimateTaskResponse{Fault: fault("estimate-task", err)}, nil
	}

	hours, err := parseHours(reply)
	if err != nil {
		return EstimateTaskResponse{Fault: fault("estimate-task", err)}, nil
	}
	return EstimateTaskResponse{EffortHours: hours}, nil
}

// auditTask handles the audit-task service request. The mitigation plan is
// requested after, and from, the risk analysis.
func (m *Module) auditTask(ctx context.Context, req AuditTaskRequest, _ *mono.Msg) (AuditTaskResponse, error) {
	if err := validateAuditInput(req.Task); err != nil {
		return AuditTaskResponse{Fault: fault("audit-task", err)}, nil
	}

	var task domain.Task
	domain.ApplyTaskPatch(&task, req.Task)

	analysis, err := m.complete(ctx, "audit-task", llm.Request{
		System: riskAnalysisSystemPrompt,
		User:   riskAnalysisUserPrompt(task),
	})
	if err != nil {
		return AuditTaskResponse{Fault: fault("audit-task", err)}, nil
	}

	mitigation, err := m.complete(ctx, "audit-task", llm.Request{
		System: riskMitigationSystemPrompt,
		User:   riskMitigationUserPrompt(task, analysis),
	})
	if err != nil {
		return AuditTaskResponse{Fault: fault("audit-task", err)}, nil
	}

	task.RiskAnalysis = analysis
	task.RiskMitigation = mitigation
	return AuditTaskResponse{ID: req.ID, Task: domain.TaskPatchOf(task)}, nil
}

// validateAuditInput requires every creation field and a category.
func validateAuditInput(p domain.TaskPatch) error {
	problems := domain.Problems(domain.ProblemsOf(domain.ValidateTaskCreate(p)))
	if p.Category == nil || strings.TrimSpace(*p.Category) == "" {
		problems.Add("category", "is required")
	}
	return problems.Err()
}
