// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/bank-microservices/account-service/internal/domain"
)

// AccountStore is the persistence contract for bank account documents.
// Implemented by the document-store adapter (or in-memory fakes in tests).
//
// Lookup methods return (nil, nil) when no document matches; translating
// absence into a domain error is the workflow's job.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]domain.Account, error)
	FindAll(ctx context.Context) ([]domain.Account, error)
	Save(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Delete(ctx context.Context, account *domain.Account) error
}

// CustomerDirectory exposes the customer-service lookups the account
// workflows need.
//
// Exists is the cheap, failure-tolerant probe used by plain CRUD: in its
// default lenient mode any failure reads as "does not exist" and the error
// is always nil. GetCustomer and HasActiveCreditCard are the strict calls
// behind VIP/PYME eligibility and do surface transport failures.
type CustomerDirectory interface {
	Exists(ctx context.Context, customerID string) (bool, error)
	GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error)
	HasActiveCreditCard(ctx context.Context, customerID string) (bool, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
