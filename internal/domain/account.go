package domain

// ============================================================
// Accounts
// ============================================================

// Account types with dedicated creation workflows.
const (
	AccountTypeVIP  = "VIP"
	AccountTypePyme = "PYME"
)

// Account is a bank account document held in the account store.
// The id is assigned by the store on first save and immutable afterwards.
// debitCardLinked is never set by any workflow; it exists in the document
// for forward compatibility with the card-linking service.
type Account struct {
	ID                    string  `json:"id"`
	AccountNumber         string  `json:"accountNumber"`
	CustomerID            string  `json:"customerId"`
	Type                  string  `json:"type"` // SAVINGS, CURRENT, FIXED, VIP, PYME
	Balance               float64 `json:"balance"`
	MaxTransactions       int     `json:"maxTransactions"`
	MonthlyFee            float64 `json:"monthlyFee"`
	AllowedWithdrawalDate string  `json:"allowedWithdrawalDate"`
	DebitCardLinked       bool    `json:"debitCardLinked"`
}

// AccountRequest is the caller-supplied payload for creating or updating
// a bank account.
type AccountRequest struct {
	AccountNumber         string  `json:"accountNumber"`
	CustomerID            string  `json:"customerId"`
	Type                  string  `json:"type"`
	Balance               float64 `json:"balance"`
	MaxTransactions       int     `json:"maxTransactions"`
	MonthlyFee            float64 `json:"monthlyFee"`
	AllowedWithdrawalDate string  `json:"allowedWithdrawalDate"`
}

// NewAccount builds a fresh account document from a creation request.
// The id is left empty for the store to assign.
func NewAccount(req *AccountRequest) *Account {
	return &Account{
		AccountNumber:         req.AccountNumber,
		CustomerID:            req.CustomerID,
		Type:                  req.Type,
		Balance:               req.Balance,
		MaxTransactions:       req.MaxTransactions,
		MonthlyFee:            req.MonthlyFee,
		AllowedWithdrawalDate: req.AllowedWithdrawalDate,
	}
}

// ApplyUpdate overwrites the mutable fields from an update request.
// customerId and debitCardLinked are not updatable.
func (a *Account) ApplyUpdate(req *AccountRequest) {
	a.AccountNumber = req.AccountNumber
	a.Balance = req.Balance
	a.Type = req.Type
	a.MaxTransactions = req.MaxTransactions
	a.MonthlyFee = req.MonthlyFee
	a.AllowedWithdrawalDate = req.AllowedWithdrawalDate
}
