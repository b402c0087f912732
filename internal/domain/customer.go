package domain

// Customer segments as reported by the customer service.
const (
	CustomerTypePersonal = "PERSONAL"
	CustomerTypeBusiness = "BUSINESS"
)

// Customer is read-only data owned by the external customer service.
type Customer struct {
	ID   string `json:"id"`
	Type string `json:"type"` // PERSONAL or BUSINESS
}
