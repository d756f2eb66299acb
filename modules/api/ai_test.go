package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
	"github.com/mmoralesp95/Proyecto-IA/modules/drafting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unavailable = &domain.Fault{Kind: domain.KindUnavailable, Message: "service unavailable"}

func TestDescribeTask(t *testing.T) {
	d := &mockDraftingPort{
		describeTaskFunc: func(_ context.Context, title string) (drafting.DescribeTaskResponse, error) {
			return drafting.DescribeTaskResponse{Title: title, Description: "Configurar el pipeline"}, nil
		},
	}
	app := newTestApp(nil, d)

	resp, body := doJSON(t, app, http.MethodPost, "/ai/tasks/describe", `{"title": "CI"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"title": "CI", "description": "Configurar el pipeline"}`, string(body))
}

func TestDescribeAndCategorize_InputErrors(t *testing.T) {
	app := newTestApp(nil, &mockDraftingPort{})

	for _, path := range []string{"/ai/tasks/describe", "/ai/tasks/categorize"} {
		resp, _ := doJSON(t, app, http.MethodPost, path, `not json`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)

		resp, body := doJSON(t, app, http.MethodPost, path, `{"description": "sin título"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, path)
		assert.Equal(t, []string{"title"}, problemFields(decodeError(t, body).Problems))
	}
}

func TestCategorizeTask_Unavailable(t *testing.T) {
	d := &mockDraftingPort{
		categorizeTaskFunc: func(context.Context, string, string) (string, error) {
			return "", unavailable
		},
	}
	app := newTestApp(nil, d)

	resp, body := doJSON(t, app, http.MethodPost, "/ai/tasks/categorize", `{"title": "CI"}`)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, string(domain.KindUnavailable), decodeError(t, body).Error)
}

func TestEstimateTask(t *testing.T) {
	var got drafting.EstimateTaskRequest
	d := &mockDraftingPort{
		estimateTaskFunc: func(_ context.Context, req drafting.EstimateTaskRequest) (float64, error) {
			got = req
			if req.Title == "vago" {
				return 0, &domain.Fault{Kind: domain.KindDraft, Message: "draft generation failed: not a number"}
			}
			return 6.5, nil
		},
	}
	app := newTestApp(nil, d)

	resp, body := doJSON(t, app, http.MethodPost, "/ai/tasks/estimate", `{"title": "API", "description": "REST", "category": "Backend"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"effort_hours": 6.5}`, string(body))
	assert.Equal(t, drafting.EstimateTaskRequest{Title: "API", Description: "REST", Category: "Backend"}, got)

	resp, body = doJSON(t, app, http.MethodPost, "/ai/tasks/estimate", `{"title": "vago"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid effort_hours value", decodeError(t, body).Message)

	resp, _ = doJSON(t, app, http.MethodPost, "/ai/tasks/estimate", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuditTask(t *testing.T) {
	d := &mockDraftingPort{
		auditTaskFunc: func(_ context.Context, req drafting.AuditTaskRequest) (drafting.AuditTaskResponse, error) {
			p := req.Task
			if p.Category == nil {
				var problems domain.Problems
				problems.Add("category", "is required")
				return drafting.AuditTaskResponse{}, domain.FaultFrom(problems.Err())
			}
			p.RiskAnalysis = domain.Ptr("Caída del proveedor")
			p.RiskMitigation = domain.Ptr("Reintentos")
			return drafting.AuditTaskResponse{ID: req.ID, Task: p}, nil
		},
	}
	app := newTestApp(nil, d)

	body := `{"id": 12, "title": "Pagos", "description": "d", "priority": "alta", "effort_hours": 8,
		"status": "pendiente", "assigned_to": "marta", "category": "Backend"}`
	resp, out := doJSON(t, app, http.MethodPost, "/ai/tasks/audit", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(out))

	var audited map[string]any
	require.NoError(t, json.Unmarshal(out, &audited))
	assert.Equal(t, float64(12), audited["id"])
	assert.Equal(t, "Pagos", audited["title"])
	assert.Equal(t, "Caída del proveedor", audited["risk_analysis"])
	assert.Equal(t, "Reintentos", audited["risk_mitigation"])

	withoutID := `{"title": "Pagos", "description": "d", "priority": "alta", "effort_hours": 8,
		"status": "pendiente", "assigned_to": "marta", "category": "Backend"}`
	resp, out = doJSON(t, app, http.MethodPost, "/ai/tasks/audit", withoutID)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(out))
	audited = nil
	require.NoError(t, json.Unmarshal(out, &audited))
	idValue, present := audited["id"]
	assert.True(t, present)
	assert.Nil(t, idValue)

	resp, out = doJSON(t, app, http.MethodPost, "/ai/tasks/audit", `{"id": "doce", "title": "Pagos"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []string{"id"}, problemFields(decodeError(t, out).Problems))

	resp, out = doJSON(t, app, http.MethodPost, "/ai/tasks/audit", `{"title": "Pagos"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []string{"category"}, problemFields(decodeError(t, out).Problems))
}

func TestAIProviderFailureDoesNotLeak(t *testing.T) {
	d := &mockDraftingPort{
		describeTaskFunc: func(context.Context, string) (drafting.DescribeTaskResponse, error) {
			return drafting.DescribeTaskResponse{}, &domain.Fault{Kind: domain.KindInternal, Message: "dial tcp 10.0.0.1:443: refused"}
		},
	}
	app := newTestApp(nil, d)

	resp, body := doJSON(t, app, http.MethodPost, "/ai/tasks/describe", `{"title": "CI"}`)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "10.0.0.1")
}

func TestAIRateLimit(t *testing.T) {
	d := &mockDraftingPort{
		categorizeTaskFunc: func(context.Context, string, string) (string, error) {
			return "Infra", nil
		},
	}
	m := newTestModule(nil, d)
	m.cfg.AIRateLimit = 2
	app := m.newApp()

	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, app, http.MethodPost, "/ai/tasks/categorize", `{"title": "CI"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := doJSON(t, app, http.MethodPost, "/ai/tasks/categorize", `{"title": "CI"}`)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, "rate_limited", decodeError(t, body).Error)

	resp, _ = doJSON(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
