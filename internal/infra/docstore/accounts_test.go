package docstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bank-microservices/account-service/internal/domain"
	"github.com/bank-microservices/account-service/internal/infra/docstore"
	"github.com/bank-microservices/account-service/internal/infra/resilience"

	"go.uber.org/zap"
)

func newClient(baseURL string) *docstore.Client {
	return docstore.NewClient(
		&http.Client{Timeout: time.Second},
		baseURL,
		"anon-key",
		"service-key",
		resilience.NewCircuitBreaker("docstore-test"),
		resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxConcurrency: 4},
		zap.NewNop(),
	)
}

func TestFindByID_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bank_accounts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "eq.acc-1" {
			t.Errorf("unexpected id filter %s", got)
		}
		if r.Header.Get("apikey") != "anon-key" {
			t.Error("missing apikey header")
		}
		if r.Header.Get("Authorization") != "Bearer service-key" {
			t.Error("missing bearer token")
		}
		w.Write([]byte(`[{"id":"acc-1","account_number":"0001-123","customer_id":"cust-1","type":"SAVINGS","balance":250.5,"max_transactions":20,"monthly_fee":4.9,"allowed_withdrawal_date":"2026-01-15","debit_card_linked":true}]`))
	}))
	defer srv.Close()

	account, err := newClient(srv.URL).FindByID(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if account == nil {
		t.Fatal("expected account, got nil")
	}
	if account.AccountNumber != "0001-123" || account.CustomerID != "cust-1" {
		t.Errorf("unexpected account %+v", account)
	}
	if account.Balance != 250.5 || !account.DebitCardLinked {
		t.Errorf("unexpected field mapping %+v", account)
	}
}

func TestFindByID_AbsentIsNilNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	account, err := newClient(srv.URL).FindByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if account != nil {
		t.Errorf("expected nil account, got %+v", account)
	}
}

func TestFindByAccountNumber_Filter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("account_number"); got != "eq.0001-123" {
			t.Errorf("unexpected filter %s", got)
		}
		w.Write([]byte(`[{"id":"acc-1","account_number":"0001-123"}]`))
	}))
	defer srv.Close()

	account, err := newClient(srv.URL).FindByAccountNumber(context.Background(), "0001-123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if account == nil || account.ID != "acc-1" {
		t.Fatalf("unexpected account %+v", account)
	}
}

func TestFindAll_DecodesAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"acc-1"},{"id":"acc-2"}]`))
	}))
	defer srv.Close()

	accounts, err := newClient(srv.URL).FindAll(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(accounts) != 2 {
		t.Errorf("expected 2 accounts, got %d", len(accounts))
	}
}

func TestSave_InsertAssignsID(t *testing.T) {
	var posted map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Prefer") != "return=representation" {
			t.Error("expected return=representation")
		}
		if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
			t.Fatalf("decode posted body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]map[string]any{posted})
	}))
	defer srv.Close()

	account, err := newClient(srv.URL).Save(context.Background(), &domain.Account{
		AccountNumber: "0001-123",
		CustomerID:    "cust-1",
		Type:          "SAVINGS",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if account.ID == "" {
		t.Error("expected client-assigned id")
	}
	if posted["id"] == "" || posted["id"] == nil {
		t.Error("expected id present in insert payload")
	}
	if posted["account_number"] != "0001-123" {
		t.Errorf("unexpected insert payload %v", posted)
	}
}

func TestSave_ConflictIsDuplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code":"23505"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Save(context.Background(), &domain.Account{
		AccountNumber: "0001-123",
	})

	var dup *domain.ErrDuplicateAccountNumber
	if !errors.As(err, &dup) {
		t.Fatalf("expected ErrDuplicateAccountNumber, got %v", err)
	}
	if dup.AccountNumber != "0001-123" {
		t.Errorf("unexpected account number '%s'", dup.AccountNumber)
	}
}

func TestSave_UpdatePatchesThenRefetches(t *testing.T) {
	var patched bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			if got := r.URL.Query().Get("id"); got != "eq.acc-1" {
				t.Errorf("unexpected patch filter %s", got)
			}
			patched = true
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			if !patched {
				t.Error("re-fetch before patch")
			}
			w.Write([]byte(`[{"id":"acc-1","account_number":"0001-999","balance":500}]`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	account, err := newClient(srv.URL).Save(context.Background(), &domain.Account{
		ID:            "acc-1",
		AccountNumber: "0001-999",
		Balance:       500,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !patched {
		t.Error("expected PATCH request")
	}
	if account.Balance != 500 {
		t.Errorf("expected refreshed balance, got %f", account.Balance)
	}
}

func TestDelete_ByID(t *testing.T) {
	var deleted bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		if got := r.URL.Query().Get("id"); got != "eq.acc-1" {
			t.Errorf("unexpected filter %s", got)
		}
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := newClient(srv.URL).Delete(context.Background(), &domain.Account{ID: "acc-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !deleted {
		t.Error("expected DELETE request")
	}
}

func TestFindByID_ServerErrorWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).FindByID(context.Background(), "acc-1")

	var extErr *domain.ErrExternalService
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if extErr.Service != "account-store" {
		t.Errorf("unexpected service name '%s'", extErr.Service)
	}
}
