package drafting

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/mmoralesp95/Proyecto-IA/llm"
)

// Module turns prompts and entities into language model requests and
// validates what comes back before anyone persists it.
type Module struct {
	completer  llm.Completer
	deployment string
}

var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the drafting module. When cfg lacks credentials the
// module still starts and answers every request with a service unavailable
// fault.
func NewModule(cfg llm.Config) *Module {
	m := &Module{deployment: cfg.Deployment}
	client, err := llm.NewClient(cfg)
	if err != nil {
		log.Printf("[drafting] Warning: %v, AI features are disabled", err)
		return m
	}
	m.completer = client
	return m
}

// NewModuleWithCompleter creates the module around an existing completer.
func NewModuleWithCompleter(completer llm.Completer) *Module {
	return &Module{completer: completer}
}

func (m *Module) Name() string {
	return "drafting"
}

func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "draft-story", json.Unmarshal, json.Marshal, m.draftStory,
	); err != nil {
		return fmt.Errorf("failed to register draft-story service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "decompose-story", json.Unmarshal, json.Marshal, m.decomposeStory,
	); err != nil {
		return fmt.Errorf("failed to register decompose-story service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "describe-task", json.Unmarshal, json.Marshal, m.describeTask,
	); err != nil {
		return fmt.Errorf("failed to register describe-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "categorize-task", json.Unmarshal, json.Marshal, m.categorizeTask,
	); err != nil {
		return fmt.Errorf("failed to register categorize-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "estimate-task", json.Unmarshal, json.Marshal, m.estimateTask,
	); err != nil {
		return fmt.Errorf("failed to register estimate-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "audit-task", json.Unmarshal, json.Marshal, m.auditTask,
	); err != nil {
		return fmt.Errorf("failed to register audit-task service: %w", err)
	}

	log.Printf("[drafting] Registered services: draft-story, decompose-story, describe-task, categorize-task, estimate-task, audit-task")
	return nil
}

func (m *Module) Start(_ context.Context) error {
	if m.completer == nil {
		log.Println("[drafting] Module started without a language model")
		return nil
	}
	log.Printf("[drafting] Module started (deployment: %s)", m.deployment)
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	log.Println("[drafting] Module stopped")
	return nil
}

// Health is healthy either way; a missing provider only disables AI features.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.completer == nil {
		return mono.HealthStatus{
			Healthy: true,
			Message: "disabled: language model not configured",
			Details: map[string]any{"configured": false},
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"configured": true, "deployment": m.deployment},
	}
}
