package customer

import (
	"context"
	"time"

	"github.com/bank-microservices/account-service/internal/domain"
	"github.com/bank-microservices/account-service/internal/infra/cache"
	"github.com/bank-microservices/account-service/internal/infra/observability"
	"github.com/bank-microservices/account-service/internal/port"
)

// CachedDirectory decorates a CustomerDirectory with a short-lived
// in-memory cache. Only positive answers are cached so a customer created
// or carded moments ago is picked up on the next attempt.
type CachedDirectory struct {
	inner     port.CustomerDirectory
	customers *cache.InMemory[*domain.Customer]
	flags     *cache.InMemory[bool]
	metrics   *observability.Metrics
}

// NewCachedDirectory wraps a directory with caches sharing one TTL.
func NewCachedDirectory(inner port.CustomerDirectory, ttl time.Duration, metrics *observability.Metrics) *CachedDirectory {
	return &CachedDirectory{
		inner:     inner,
		customers: cache.New[*domain.Customer](ttl),
		flags:     cache.New[bool](ttl),
		metrics:   metrics,
	}
}

func (d *CachedDirectory) Exists(ctx context.Context, customerID string) (bool, error) {
	key := "exists:" + customerID
	if ok, hit := d.flags.Get(key); hit && ok {
		d.metrics.IncrCacheHit("customer")
		return true, nil
	}
	d.metrics.IncrCacheMiss("customer")

	exists, err := d.inner.Exists(ctx, customerID)
	if err == nil && exists {
		d.flags.Set(key, true)
	}
	return exists, err
}

func (d *CachedDirectory) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	if cust, hit := d.customers.Get(customerID); hit {
		d.metrics.IncrCacheHit("customer")
		return cust, nil
	}
	d.metrics.IncrCacheMiss("customer")

	cust, err := d.inner.GetCustomer(ctx, customerID)
	if err == nil && cust != nil {
		d.customers.Set(customerID, cust)
	}
	return cust, err
}

func (d *CachedDirectory) HasActiveCreditCard(ctx context.Context, customerID string) (bool, error) {
	key := "card:" + customerID
	if hasCard, hit := d.flags.Get(key); hit && hasCard {
		d.metrics.IncrCacheHit("customer")
		return true, nil
	}
	d.metrics.IncrCacheMiss("customer")

	hasCard, err := d.inner.HasActiveCreditCard(ctx, customerID)
	if err == nil && hasCard {
		d.flags.Set(key, hasCard)
	}
	return hasCard, err
}
