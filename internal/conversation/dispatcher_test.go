package conversation

import (
	"context"
	"testing"

	"github.com/garagemdigital/autovendas-ai-platform/internal/catalog"
	"github.com/garagemdigital/autovendas-ai-platform/internal/leads"
	"github.com/garagemdigital/autovendas-ai-platform/internal/scheduling"
	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *leads.InMemoryRepository) {
	t.Helper()
	logger := logging.Default()
	catalogSvc := catalog.NewService(nil, logger)
	leadRepo := leads.NewInMemoryRepository()
	schedulingSvc := scheduling.NewService(
		scheduling.NewInMemoryAppointmentRepository(), leadRepo, catalogSvc, "UTC", logger)
	return NewDispatcher(catalogSvc, schedulingSvc, leadRepo, logger), leadRepo
}

func TestDispatchFindVehicles(t *testing.T) {
	d, _ := newTestDispatcher(t)
	result := d.Dispatch(context.Background(), ToolInvocation{
		Name: ToolFindVehicles,
		Arguments: map[string]any{
			"budget":     "até 100 mil",
			"categories": []any{"picape"},
		},
	}, "5585999999999")
	if result.IsError {
		t.Fatalf("unexpected failure: %+v", result.Content)
	}
	vehicles, ok := result.Content["vehicles"].([]map[string]any)
	if !ok || len(vehicles) == 0 {
		t.Fatalf("expected fallback pickups, got %+v", result.Content)
	}
	for _, v := range vehicles {
		if v["category"] != "picape" {
			t.Fatalf("expected only pickups, got %+v", v)
		}
	}
}

func TestDispatchSaveLead(t *testing.T) {
	d, leadRepo := newTestDispatcher(t)
	result := d.Dispatch(context.Background(), ToolInvocation{
		Name: ToolSaveLead,
		Arguments: map[string]any{
			"name":         "Ana Souza",
			"phone":        "85999999999",
			"budget":       "até 120 mil",
			"urgency":      "urgente",
			"has_trade_in": true,
		},
	}, "5585999999999")
	if result.IsError {
		t.Fatalf("unexpected failure: %+v", result.Content)
	}
	lead, err := leadRepo.GetByPhone(context.Background(), "85999999999")
	if err != nil {
		t.Fatalf("lead not stored: %v", err)
	}
	if lead.Urgency != leads.UrgencyAlta {
		t.Fatalf("urgency not normalized, got %s", lead.Urgency)
	}
	if result.Content["score"] == nil {
		t.Fatalf("result should report the score: %+v", result.Content)
	}
}

func TestDispatchSaveLeadWithoutPhoneFails(t *testing.T) {
	d, _ := newTestDispatcher(t)
	result := d.Dispatch(context.Background(), ToolInvocation{
		Name:      ToolSaveLead,
		Arguments: map[string]any{"name": "Ana"},
	}, "conv")
	if !result.IsError {
		t.Fatalf("expected structured failure, got %+v", result.Content)
	}
}

func TestDispatchScheduleVisitThreadsConversationID(t *testing.T) {
	d, leadRepo := newTestDispatcher(t)
	result := d.Dispatch(context.Background(), ToolInvocation{
		Name: ToolScheduleVisit,
		Arguments: map[string]any{
			"customer_name":    "Ana Souza",
			"phone":            "85999999999",
			"date":             "amanhã",
			"vehicle_interest": "Onix",
		},
	}, "5585999999999")
	if success, _ := result.Content["success"].(bool); success {
		lead, err := leadRepo.GetByPhone(context.Background(), "85999999999")
		if err != nil {
			t.Fatalf("lead not stored: %v", err)
		}
		if lead.ConversationID != "5585999999999" {
			t.Fatalf("conversation id not threaded, got %q", lead.ConversationID)
		}
	} else if result.Content["reason"] == nil {
		t.Fatalf("rejections must carry a reason: %+v", result.Content)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	d, _ := newTestDispatcher(t)
	result := d.Dispatch(context.Background(), ToolInvocation{Name: "delete_database"}, "conv")
	if !result.IsError {
		t.Fatal("unknown tools must produce a structured failure")
	}
	if result.Name != "delete_database" {
		t.Fatalf("result must echo the tool name, got %q", result.Name)
	}
}

func TestDispatchAllPreservesOrder(t *testing.T) {
	d, _ := newTestDispatcher(t)
	invocations := []ToolInvocation{
		{Name: ToolFindVehicles, Arguments: map[string]any{}, ProviderCallID: "a"},
		{Name: "nope", ProviderCallID: "b"},
		{Name: ToolSaveLead, Arguments: map[string]any{"phone": "85988887777"}, ProviderCallID: "c"},
	}
	results := d.DispatchAll(context.Background(), invocations, "conv")
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"a", "b", "c"} {
		if results[i].ProviderCallID != want {
			t.Fatalf("result %d out of order: got %q want %q", i, results[i].ProviderCallID, want)
		}
	}
}
