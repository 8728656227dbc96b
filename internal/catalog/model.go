package catalog

// Vehicle statuses as stored in the vehicles table.
const (
	StatusAvailable = "disponivel"
	StatusReserved  = "reservado"
	StatusSold      = "vendido"
)

// Vehicle is a sellable catalog item. The catalog is read-only from the
// conversation engine's perspective; rows are maintained by the CRM.
type Vehicle struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Model    string  `json:"model"`
	Year     int     `json:"year"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Mileage  int     `json:"mileage"`
	Status   string  `json:"status"`
}

// RecommendRequest describes a natural-language vehicle search.
type RecommendRequest struct {
	BudgetText string
	Categories []string
	SearchTerm string
	MaxResults int
}

// RecommendResult carries the ranked vehicles and which backend served them.
type RecommendResult struct {
	Vehicles []Vehicle `json:"vehicles"`
	Source   string    `json:"source"` // "store" or "fallback"
}
