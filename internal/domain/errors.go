package domain

import "fmt"

// Error types for consistent error handling across the service.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrInvalidCustomer indicates the referenced customer does not exist or
// does not match what the requested operation demands.
type ErrInvalidCustomer struct {
	CustomerID string
	Reason     string
}

func (e *ErrInvalidCustomer) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid customer %s: %s", e.CustomerID, e.Reason)
	}
	return fmt.Sprintf("invalid customer: %s", e.CustomerID)
}

// ErrDuplicateAccountNumber indicates the account number is already taken.
type ErrDuplicateAccountNumber struct {
	AccountNumber string
}

func (e *ErrDuplicateAccountNumber) Error() string {
	return fmt.Sprintf("account number already exists: %s", e.AccountNumber)
}

// ErrNoCreditCard indicates the customer has no active credit card.
type ErrNoCreditCard struct {
	CustomerID string
}

func (e *ErrNoCreditCard) Error() string {
	return fmt.Sprintf("customer %s has no active credit card", e.CustomerID)
}

// ErrCustomerValidation indicates the eligibility check could not be
// completed. The underlying cause is logged, never surfaced.
type ErrCustomerValidation struct {
	Err error
}

func (e *ErrCustomerValidation) Error() string {
	return "could not validate customer or credit card"
}

func (e *ErrCustomerValidation) Unwrap() error {
	return e.Err
}

// ErrEligibility indicates a privileged account creation (VIP, PYME) was
// rejected, carrying the underlying reason.
type ErrEligibility struct {
	Tier string
	Err  error
}

func (e *ErrEligibility) Error() string {
	return fmt.Sprintf("customer does not meet %s account requirements: %v", e.Tier, e.Err)
}

func (e *ErrEligibility) Unwrap() error {
	return e.Err
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}
