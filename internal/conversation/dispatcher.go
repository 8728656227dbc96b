package conversation

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/garagemdigital/autovendas-ai-platform/internal/catalog"
	"github.com/garagemdigital/autovendas-ai-platform/internal/leads"
	"github.com/garagemdigital/autovendas-ai-platform/internal/scheduling"
	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

// ToolResult is the structured outcome of one dispatched invocation. It is
// always produced, even for unknown tools or handler failures, so the model
// sees a machine-readable failure instead of a dropped call.
type ToolResult struct {
	Name           string
	ProviderCallID string
	Content        map[string]any
	IsError        bool
}

// JSON renders the result content for folding into the follow-up model call.
func (r ToolResult) JSON() string {
	data, err := json.Marshal(r.Content)
	if err != nil {
		return `{"success":false,"error":"result encoding failed"}`
	}
	return string(data)
}

// Dispatcher routes parsed tool invocations to domain handlers.
type Dispatcher struct {
	catalog    *catalog.Service
	scheduling *scheduling.Service
	leads      leads.Repository
	logger     *logging.Logger
}

// NewDispatcher wires the dispatcher to the domain services.
func NewDispatcher(catalogSvc *catalog.Service, schedulingSvc *scheduling.Service, leadRepo leads.Repository, logger *logging.Logger) *Dispatcher {
	if catalogSvc == nil {
		panic("conversation: catalog service required")
	}
	if schedulingSvc == nil {
		panic("conversation: scheduling service required")
	}
	if leadRepo == nil {
		panic("conversation: lead repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		catalog:    catalogSvc,
		scheduling: schedulingSvc,
		leads:      leadRepo,
		logger:     logger,
	}
}

// Dispatch executes one invocation. Handler failures come back as structured
// failure results; the turn keeps going either way.
func (d *Dispatcher) Dispatch(ctx context.Context, inv ToolInvocation, conversationID string) ToolResult {
	result := ToolResult{Name: inv.Name, ProviderCallID: inv.ProviderCallID}
	switch inv.Name {
	case ToolFindVehicles:
		result.Content = d.findVehicles(ctx, inv.Arguments)
	case ToolScheduleVisit:
		result.Content = d.scheduleVisit(ctx, inv.Arguments, conversationID)
	case ToolSaveLead:
		result.Content = d.saveLead(ctx, inv.Arguments, conversationID)
	default:
		d.logger.Warn("conversation: model requested unknown tool", "tool", inv.Name)
		result.Content = map[string]any{
			"success": false,
			"error":   fmt.Sprintf("ferramenta desconhecida: %s", inv.Name),
		}
	}
	if success, ok := result.Content["success"].(bool); ok && !success {
		result.IsError = true
	}
	return result
}

// DispatchAll runs every invocation and returns results in invocation order
// regardless of completion order.
func (d *Dispatcher) DispatchAll(ctx context.Context, invocations []ToolInvocation, conversationID string) []ToolResult {
	results := make([]ToolResult, len(invocations))
	g, ctx := errgroup.WithContext(ctx)
	for i, inv := range invocations {
		g.Go(func() error {
			results[i] = d.Dispatch(ctx, inv, conversationID)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (d *Dispatcher) findVehicles(ctx context.Context, args map[string]any) map[string]any {
	result := d.catalog.Recommend(ctx, catalog.RecommendRequest{
		BudgetText: argString(args, "budget"),
		Categories: argStrings(args, "categories"),
		SearchTerm: argString(args, "search_term"),
	})
	vehicles := make([]map[string]any, 0, len(result.Vehicles))
	for _, v := range result.Vehicles {
		vehicles = append(vehicles, map[string]any{
			"name":     v.Name,
			"year":     v.Year,
			"price":    v.Price,
			"category": v.Category,
			"mileage":  v.Mileage,
			"status":   v.Status,
		})
	}
	return map[string]any{
		"success":  true,
		"vehicles": vehicles,
		"source":   result.Source,
	}
}

func (d *Dispatcher) scheduleVisit(ctx context.Context, args map[string]any, conversationID string) map[string]any {
	result := d.scheduling.ScheduleVisit(ctx, scheduling.VisitRequest{
		CustomerName:    argString(args, "customer_name"),
		Phone:           argString(args, "phone"),
		DateText:        argString(args, "date"),
		TimeText:        argString(args, "time"),
		VisitType:       argString(args, "visit_type"),
		VehicleInterest: argString(args, "vehicle_interest"),
		ConversationID:  conversationID,
	})
	return structToMap(result)
}

func (d *Dispatcher) saveLead(ctx context.Context, args map[string]any, conversationID string) map[string]any {
	lead, err := d.leads.UpsertByPhone(ctx, &leads.UpsertLeadRequest{
		Name:               argString(args, "name"),
		Phone:              argString(args, "phone"),
		Email:              argString(args, "email"),
		BudgetText:         argString(args, "budget"),
		PaymentMethod:      argString(args, "payment_method"),
		Urgency:            leads.NormalizeUrgency(argString(args, "urgency")),
		HasTradeIn:         argBool(args, "has_trade_in"),
		VehiclesOfInterest: argStrings(args, "vehicles_of_interest"),
		ConversationID:     conversationID,
	})
	if err != nil {
		d.logger.Error("conversation: lead save failed", "error", err)
		return map[string]any{
			"success": false,
			"error":   "não foi possível salvar os dados do cliente",
		}
	}
	return map[string]any{
		"success": true,
		"lead_id": lead.ID,
		"score":   lead.Score,
		"status":  lead.Status,
	}
}

func structToMap(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"success": false, "error": "result encoding failed"}
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{"success": false, "error": "result encoding failed"}
	}
	return out
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argBool(args map[string]any, key string) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return false
}

func argStrings(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
