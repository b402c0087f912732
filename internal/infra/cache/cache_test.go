package cache_test

import (
	"testing"
	"time"

	"github.com/bank-microservices/account-service/internal/domain"
	"github.com/bank-microservices/account-service/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[*domain.Customer](5 * time.Minute)

	c.Set("cust-1", &domain.Customer{ID: "cust-1", Type: "PERSONAL"})
	cust, ok := c.Get("cust-1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if cust.Type != "PERSONAL" {
		t.Errorf("expected PERSONAL, got '%s'", cust.Type)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[bool](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}
