package conversation

// Tool names the agent exposes to the model.
const (
	ToolFindVehicles  = "find_vehicles"
	ToolScheduleVisit = "schedule_visit"
	ToolSaveLead      = "save_lead"
)

// AgentTools is the fixed capability set offered on every model call.
// Schemas are plain JSON-schema maps; the wire layer renders them in
// whichever dialect the configured provider expects.
func AgentTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        ToolFindVehicles,
			Description: "Busca veículos no estoque da loja por orçamento, categoria ou modelo. Use sempre antes de citar carros ou preços.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"budget": map[string]any{
						"type":        "string",
						"description": "Orçamento em texto livre, ex: 'até 100 mil'",
					},
					"categories": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Categorias desejadas: hatch, sedan, suv, picape",
					},
					"search_term": map[string]any{
						"type":        "string",
						"description": "Modelo ou marca mencionado pelo cliente",
					},
				},
			},
		},
		{
			Name:        ToolScheduleVisit,
			Description: "Agenda uma visita ou test drive na loja. Exige nome, telefone e o veículo de interesse.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"customer_name":    map[string]any{"type": "string"},
					"phone":            map[string]any{"type": "string"},
					"date":             map[string]any{"type": "string", "description": "Data em texto livre: 'amanhã', 'sexta', '20/06'"},
					"time":             map[string]any{"type": "string"},
					"visit_type":       map[string]any{"type": "string", "enum": []string{"visita", "test_drive"}},
					"vehicle_interest": map[string]any{"type": "string"},
				},
				"required": []string{"customer_name", "phone", "date", "vehicle_interest"},
			},
		},
		{
			Name:        ToolSaveLead,
			Description: "Salva ou atualiza os dados de qualificação do cliente. Chame sempre que descobrir orçamento, urgência, forma de pagamento ou troca.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":           map[string]any{"type": "string"},
					"phone":          map[string]any{"type": "string"},
					"email":          map[string]any{"type": "string"},
					"budget":         map[string]any{"type": "string"},
					"payment_method": map[string]any{"type": "string", "enum": []string{"a_vista", "pix", "financiamento", "consorcio"}},
					"urgency":        map[string]any{"type": "string", "enum": []string{"alta", "media", "baixa"}},
					"has_trade_in":   map[string]any{"type": "boolean"},
					"vehicles_of_interest": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"required": []string{"phone"},
			},
		},
	}
}
