package drafting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
)

// DraftingPort defines the interface for AI drafting operations.
type DraftingPort interface {
	DraftStory(ctx context.Context, prompt string) (domain.StoryPatch, error)
	DecomposeStory(ctx context.Context, story domain.UserStory) ([]domain.TaskPatch, error)
	DescribeTask(ctx context.Context, title string) (DescribeTaskResponse, error)
	CategorizeTask(ctx context.Context, title, description string) (string, error)
	EstimateTask(ctx context.Context, req EstimateTaskRequest) (float64, error)
	AuditTask(ctx context.Context, req AuditTaskRequest) (AuditTaskResponse, error)
}

// draftingAdapter wraps ServiceContainer for type-safe cross-module communication.
type draftingAdapter struct {
	container mono.ServiceContainer
	timeout   time.Duration
}

// NewDraftingAdapter creates a new adapter for drafting services. Every call
// is bounded by timeout; audit-task, which makes two model calls, gets twice
// as long.
func NewDraftingAdapter(container mono.ServiceContainer, timeout time.Duration) DraftingPort {
	if container == nil {
		panic("drafting adapter requires non-nil ServiceContainer")
	}
	return &draftingAdapter{container: container, timeout: timeout}
}

func call[Req, Resp any](ctx context.Context, a *draftingAdapter, service string, calls int, req *Req, resp *Resp) error {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(calls)*a.timeout)
		defer cancel()
	}
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

func faultErr(f *domain.Fault) error {
	if f == nil {
		return nil
	}
	return f
}

func (a *draftingAdapter) DraftStory(ctx context.Context, prompt string) (domain.StoryPatch, error) {
	var resp StoryDraftResponse
	if err := call(ctx, a, "draft-story", 1, &DraftStoryRequest{Prompt: prompt}, &resp); err != nil {
		return domain.StoryPatch{}, err
	}
	return resp.Story, faultErr(resp.Fault)
}

func (a *draftingAdapter) DecomposeStory(ctx context.Context, story domain.UserStory) ([]domain.TaskPatch, error) {
	var resp TaskDraftsResponse
	if err := call(ctx, a, "decompose-story", 1, &DecomposeStoryRequest{Story: story}, &resp); err != nil {
		return nil, err
	}
	if err := faultErr(resp.Fault); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (a *draftingAdapter) DescribeTask(ctx context.Context, title string) (DescribeTaskResponse, error) {
	var resp DescribeTaskResponse
	if err := call(ctx, a, "describe-task", 1, &DescribeTaskRequest{Title: title}, &resp); err != nil {
		return DescribeTaskResponse{}, err
	}
	return resp, faultErr(resp.Fault)
}

func (a *draftingAdapter) CategorizeTask(ctx context.Context, title, description string) (string, error) {
	var resp CategorizeTaskResponse
	req := CategorizeTaskRequest{Title: title, Description: description}
	if err := call(ctx, a, "categorize-task", 1, &req, &resp); err != nil {
		return "", err
	}
	return resp.Category, faultErr(resp.Fault)
}

func (a *draftingAdapter) EstimateTask(ctx context.Context, req EstimateTaskRequest) (float64, error) {
	var resp EstimateTaskResponse
	if err := call(ctx, a, "estimate-task", 1, &req, &resp); err != nil {
		return 0, err
	}
	return resp.EffortHours, faultErr(resp.Fault)
}

func (a *draftingAdapter) AuditTask(ctx context.Context, req AuditTaskRequest) (AuditTaskResponse, error) {
	var resp AuditTaskResponse
	if err := call(ctx, a, "audit-task", 2, &req, &resp); err != nil {
		return AuditTaskResponse{}, err
	}
	if err := faultErr(resp.Fault); err != nil {
		return AuditTaskResponse{}, err
	}
	return resp, nil
}
