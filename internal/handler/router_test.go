package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bank-microservices/account-service/internal/domain"
	"github.com/bank-microservices/account-service/internal/handler"
	"github.com/bank-microservices/account-service/internal/infra/observability"
	"github.com/bank-microservices/account-service/internal/service"

	"go.uber.org/zap"
)

// --- Fakes ---

type fakeStore struct {
	accounts map[string]*domain.Account
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]*domain.Account)}
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*domain.Account, error) {
	if a, ok := f.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) FindByAccountNumber(_ context.Context, accountNumber string) (*domain.Account, error) {
	for _, a := range f.accounts {
		if a.AccountNumber == accountNumber {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindByCustomerID(_ context.Context, customerID string) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range f.accounts {
		if a.CustomerID == customerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) FindAll(_ context.Context) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range f.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeStore) Save(_ context.Context, account *domain.Account) (*domain.Account, error) {
	cp := *account
	if cp.ID == "" {
		f.nextID++
		cp.ID = fmt.Sprintf("acc-%d", f.nextID)
	}
	f.accounts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) Delete(_ context.Context, account *domain.Account) error {
	delete(f.accounts, account.ID)
	return nil
}

type fakeDirectory struct {
	exists   bool
	customer *domain.Customer
	hasCard  bool
}

func (f *fakeDirectory) Exists(_ context.Context, _ string) (bool, error) {
	return f.exists, nil
}

func (f *fakeDirectory) GetCustomer(_ context.Context, _ string) (*domain.Customer, error) {
	return f.customer, nil
}

func (f *fakeDirectory) HasActiveCreditCard(_ context.Context, _ string) (bool, error) {
	return f.hasCard, nil
}

func newTestServer(store *fakeStore, dir *fakeDirectory) *httptest.Server {
	metrics := observability.NewMetrics()
	svc := service.NewAccountService(store, dir, metrics, zap.NewNop())
	return httptest.NewServer(handler.NewRouter(svc, dir, metrics, zap.NewNop()))
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, domain.Envelope) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var env domain.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

// --- Tests ---

func TestCreateAccount_Envelope(t *testing.T) {
	srv := newTestServer(newFakeStore(), &fakeDirectory{exists: true})
	defer srv.Close()

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/accounts",
		`{"accountNumber":"0001-123","customerId":"cust-1","type":"SAVINGS","balance":100}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !env.Success {
		t.Fatalf("expected success, got message '%s'", env.Message)
	}
	if env.Message != "bank account created" {
		t.Errorf("unexpected message '%s'", env.Message)
	}
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatal("expected account object in data")
	}
	if data["accountNumber"] != "0001-123" {
		t.Errorf("unexpected account number %v", data["accountNumber"])
	}
	if data["id"] == "" || data["id"] == nil {
		t.Error("expected assigned id in data")
	}
}

func TestCreateAccount_UnknownCustomerIs200Failure(t *testing.T) {
	srv := newTestServer(newFakeStore(), &fakeDirectory{exists: false})
	defer srv.Close()

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/accounts",
		`{"accountNumber":"0001-123","customerId":"ghost"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if env.Success {
		t.Fatal("expected failure envelope")
	}
	if !strings.Contains(env.Message, "invalid customer") {
		t.Errorf("unexpected message '%s'", env.Message)
	}
	if env.Data != nil {
		t.Errorf("expected null data, got %v", env.Data)
	}
}

func TestCreateAccount_MalformedBody(t *testing.T) {
	srv := newTestServer(newFakeStore(), &fakeDirectory{exists: true})
	defer srv.Close()

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/accounts", `{not json`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if env.Success {
		t.Fatal("expected failure envelope")
	}
}

func TestGetAccount_NotFoundIs404(t *testing.T) {
	srv := newTestServer(newFakeStore(), &fakeDirectory{})
	defer srv.Close()

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/accounts/missing", "")

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if env.Success {
		t.Fatal("expected failure envelope")
	}
}

func TestGetAccount_Found(t *testing.T) {
	store := newFakeStore()
	store.accounts["acc-1"] = &domain.Account{ID: "acc-1", AccountNumber: "0001-123"}
	srv := newTestServer(store, &fakeDirectory{})
	defer srv.Close()

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/accounts/acc-1", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if env.Message != "bank account found" {
		t.Errorf("unexpected message '%s'", env.Message)
	}
}

func TestListAccounts_FilterByCustomer(t *testing.T) {
	store := newFakeStore()
	store.accounts["acc-1"] = &domain.Account{ID: "acc-1", CustomerID: "cust-1"}
	store.accounts["acc-2"] = &domain.Account{ID: "acc-2", CustomerID: "cust-2"}
	srv := newTestServer(store, &fakeDirectory{})
	defer srv.Close()

	_, env := doJSON(t, http.MethodGet, srv.URL+"/accounts?customerId=cust-1", "")

	list, ok := env.Data.([]any)
	if !ok {
		t.Fatalf("expected array data, got %T", env.Data)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 account for cust-1, got %d", len(list))
	}
}

func TestListAccounts_EmptyArrayNotNull(t *testing.T) {
	srv := newTestServer(newFakeStore(), &fakeDirectory{})
	defer srv.Close()

	_, env := doJSON(t, http.MethodGet, srv.URL+"/accounts", "")

	if !env.Success {
		t.Fatalf("expected success, got '%s'", env.Message)
	}
	if _, ok := env.Data.([]any); !ok {
		t.Fatalf("expected JSON array data, got %T", env.Data)
	}
}

func TestDeleteAccount_NullData(t *testing.T) {
	store := newFakeStore()
	store.accounts["acc-1"] = &domain.Account{ID: "acc-1"}
	srv := newTestServer(store, &fakeDirectory{})
	defer srv.Close()

	resp, env := doJSON(t, http.MethodDelete, srv.URL+"/accounts/acc-1", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if env.Message != "bank account deleted" {
		t.Errorf("unexpected message '%s'", env.Message)
	}
	if env.Data != nil {
		t.Errorf("expected null data, got %v", env.Data)
	}
	if _, ok := store.accounts["acc-1"]; ok {
		t.Error("expected account removed from store")
	}
}

func TestCreateVIPAccount_RejectionIs200(t *testing.T) {
	dir := &fakeDirectory{
		customer: &domain.Customer{ID: "cust-1", Type: "BUSINESS"},
		hasCard:  true,
	}
	srv := newTestServer(newFakeStore(), dir)
	defer srv.Close()

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/accounts/vip",
		`{"accountNumber":"0001-123","customerId":"cust-1","balance":100}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if env.Success {
		t.Fatal("expected failure envelope")
	}
	if !strings.Contains(env.Message, "VIP") {
		t.Errorf("expected VIP requirement message, got '%s'", env.Message)
	}
}

func TestCreatePymeAccount_Success(t *testing.T) {
	dir := &fakeDirectory{
		customer: &domain.Customer{ID: "cust-1", Type: "BUSINESS"},
		hasCard:  true,
	}
	srv := newTestServer(newFakeStore(), dir)
	defer srv.Close()

	_, env := doJSON(t, http.MethodPost, srv.URL+"/accounts/pyme",
		`{"accountNumber":"0001-456","customerId":"cust-1","balance":900}`)

	if !env.Success {
		t.Fatalf("expected success, got '%s'", env.Message)
	}
	if env.Message != "PYME account created" {
		t.Errorf("unexpected message '%s'", env.Message)
	}
	data := env.Data.(map[string]any)
	if data["type"] != "PYME" {
		t.Errorf("expected PYME type, got %v", data["type"])
	}
	if data["customerId"] != "" {
		t.Errorf("expected empty customerId, got %v", data["customerId"])
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(newFakeStore(), &fakeDirectory{exists: true})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var health domain.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("expected healthy, got '%s'", health.Status)
	}
	if len(health.Services) != 3 {
		t.Errorf("expected 3 probes, got %d", len(health.Services))
	}
}

func TestReadyzAndPing(t *testing.T) {
	srv := newTestServer(newFakeStore(), &fakeDirectory{})
	defer srv.Close()

	for _, path := range []string{"/readyz", "/ping"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("%s failed: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestServiceMetricsSnapshot(t *testing.T) {
	srv := newTestServer(newFakeStore(), &fakeDirectory{exists: true})
	defer srv.Close()

	// Generate one successful operation first.
	doJSON(t, http.MethodPost, srv.URL+"/accounts",
		`{"accountNumber":"0001-123","customerId":"cust-1"}`)

	resp, err := http.Get(srv.URL + "/v1/metrics/service")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var snap domain.OpsSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.TotalRequests < 1 {
		t.Errorf("expected at least 1 request counted, got %d", snap.TotalRequests)
	}
}
