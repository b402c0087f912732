// Package service contains the account workflows: CRUD over the account
// store plus the VIP and PYME creation flows that gate on the customer
// service.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bank-microservices/account-service/internal/domain"
	"github.com/bank-microservices/account-service/internal/infra/observability"
	"github.com/bank-microservices/account-service/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/accounts")

// AccountService orchestrates account operations. All external calls run
// sequentially; the store and directory adapters own their own resilience.
type AccountService struct {
	store     port.AccountStore
	customers port.CustomerDirectory
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAccountService wires the account workflows.
func NewAccountService(store port.AccountStore, customers port.CustomerDirectory, metrics *observability.Metrics, logger *zap.Logger) *AccountService {
	return &AccountService{
		store:     store,
		customers: customers,
		metrics:   metrics,
		logger:    logger,
	}
}

// observe records per-operation duration and outcome counters.
func (s *AccountService) observe(operation string, start time.Time, err error) {
	s.metrics.RecordRequestDuration(operation, time.Since(start))
	if err != nil {
		s.metrics.IncrRequest("error")
		var extErr *domain.ErrExternalService
		if errors.As(err, &extErr) {
			s.metrics.IncrExternalError(extErr.Service)
		}
		return
	}
	s.metrics.IncrRequest("success")
}

// CreateAccount creates a standard bank account. The customer must be
// known to the customer service and the account number must be free.
func (s *AccountService) CreateAccount(ctx context.Context, req *domain.AccountRequest) (account *domain.Account, err error) {
	ctx, span := tracer.Start(ctx, "AccountService.CreateAccount")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", req.CustomerID))
	defer func(start time.Time) { s.observe("create_account", start, err) }(time.Now())

	exists, err := s.customers.Exists(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		s.logger.Warn("account creation rejected: unknown customer",
			zap.String("customer_id", req.CustomerID),
		)
		return nil, &domain.ErrInvalidCustomer{CustomerID: req.CustomerID}
	}

	existing, err := s.store.FindByAccountNumber(ctx, req.AccountNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ErrDuplicateAccountNumber{AccountNumber: req.AccountNumber}
	}

	account, err = s.store.Save(ctx, domain.NewAccount(req))
	if err != nil {
		return nil, err
	}

	s.metrics.IncrAccountCreated(account.Type)
	s.logger.Info("account created",
		zap.String("account_id", account.ID),
		zap.String("account_number", account.AccountNumber),
		zap.String("customer_id", account.CustomerID),
	)
	return account, nil
}

// GetAccount fetches one account by id.
func (s *AccountService) GetAccount(ctx context.Context, id string) (account *domain.Account, err error) {
	ctx, span := tracer.Start(ctx, "AccountService.GetAccount")
	defer span.End()
	defer func(start time.Time) { s.observe("get_account", start, err) }(time.Now())

	account, err = s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, &domain.ErrNotFound{Resource: "account", ID: id}
	}
	return account, nil
}

// ListAccounts returns every account.
func (s *AccountService) ListAccounts(ctx context.Context) (accounts []domain.Account, err error) {
	ctx, span := tracer.Start(ctx, "AccountService.ListAccounts")
	defer span.End()
	defer func(start time.Time) { s.observe("list_accounts", start, err) }(time.Now())

	accounts, err = s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

// ListAccountsByCustomer returns all accounts owned by one customer.
func (s *AccountService) ListAccountsByCustomer(ctx context.Context, customerID string) (accounts []domain.Account, err error) {
	ctx, span := tracer.Start(ctx, "AccountService.ListAccountsByCustomer")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))
	defer func(start time.Time) { s.observe("list_accounts_by_customer", start, err) }(time.Now())

	accounts, err = s.store.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

// UpdateAccount overwrites the mutable fields of an existing account.
// The owning customer is re-validated; customerId itself never changes.
func (s *AccountService) UpdateAccount(ctx context.Context, id string, req *domain.AccountRequest) (account *domain.Account, err error) {
	ctx, span := tracer.Start(ctx, "AccountService.UpdateAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", id))
	defer func(start time.Time) { s.observe("update_account", start, err) }(time.Now())

	exists, err := s.customers.Exists(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &domain.ErrInvalidCustomer{CustomerID: req.CustomerID}
	}

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &domain.ErrNotFound{Resource: "account", ID: id}
	}

	current.ApplyUpdate(req)

	account, err = s.store.Save(ctx, current)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account updated",
		zap.String("account_id", account.ID),
		zap.String("account_number", account.AccountNumber),
	)
	return account, nil
}

// DeleteAccount removes an account by id.
func (s *AccountService) DeleteAccount(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "AccountService.DeleteAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", id))
	defer func(start time.Time) { s.observe("delete_account", start, err) }(time.Now())

	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if account == nil {
		return &domain.ErrNotFound{Resource: "account", ID: id}
	}

	if err = s.store.Delete(ctx, account); err != nil {
		return err
	}

	s.logger.Info("account deleted", zap.String("account_id", id))
	return nil
}

// CreateVIPAccount creates a VIP account for a PERSONAL customer holding
// an active credit card. Only the account number and opening balance are
// taken from the request; everything else starts at its zero value.
func (s *AccountService) CreateVIPAccount(ctx context.Context, req *domain.AccountRequest) (account *domain.Account, err error) {
	ctx, span := tracer.Start(ctx, "AccountService.CreateVIPAccount")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", req.CustomerID))
	defer func(start time.Time) { s.observe("create_vip_account", start, err) }(time.Now())

	if err = s.validateEligibility(ctx, req.CustomerID, domain.CustomerTypePersonal); err != nil {
		return nil, &domain.ErrEligibility{Tier: domain.AccountTypeVIP, Err: err}
	}

	account, err = s.store.Save(ctx, &domain.Account{
		AccountNumber: req.AccountNumber,
		Type:          domain.AccountTypeVIP,
		Balance:       req.Balance,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrAccountCreated(domain.AccountTypeVIP)
	s.logger.Info("vip account created",
		zap.String("account_id", account.ID),
		zap.String("account_number", account.AccountNumber),
		zap.String("customer_id", req.CustomerID),
	)
	return account, nil
}

// CreatePymeAccount creates a PYME account for a BUSINESS customer holding
// an active credit card. Mirrors the VIP flow.
func (s *AccountService) CreatePymeAccount(ctx context.Context, req *domain.AccountRequest) (account *domain.Account, err error) {
	ctx, span := tracer.Start(ctx, "AccountService.CreatePymeAccount")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", req.CustomerID))
	defer func(start time.Time) { s.observe("create_pyme_account", start, err) }(time.Now())

	if err = s.validateEligibility(ctx, req.CustomerID, domain.CustomerTypeBusiness); err != nil {
		return nil, &domain.ErrEligibility{Tier: domain.AccountTypePyme, Err: err}
	}

	account, err = s.store.Save(ctx, &domain.Account{
		AccountNumber: req.AccountNumber,
		Type:          domain.AccountTypePyme,
		Balance:       req.Balance,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrAccountCreated(domain.AccountTypePyme)
	s.logger.Info("pyme account created",
		zap.String("account_id", account.ID),
		zap.String("account_number", account.AccountNumber),
		zap.String("customer_id", req.CustomerID),
	)
	return account, nil
}

// validateEligibility checks that the customer exists, has the required
// segment (case-insensitive), and holds an active credit card. Transport
// failures are logged in full but reported generically.
func (s *AccountService) validateEligibility(ctx context.Context, customerID, requiredType string) error {
	cust, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("eligibility check failed: customer lookup",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return &domain.ErrCustomerValidation{Err: err}
	}
	if cust == nil {
		return &domain.ErrInvalidCustomer{CustomerID: customerID, Reason: "customer not found"}
	}
	if !strings.EqualFold(cust.Type, requiredType) {
		return &domain.ErrInvalidCustomer{
			CustomerID: customerID,
			Reason:     "customer type must be " + requiredType,
		}
	}

	hasCard, err := s.customers.HasActiveCreditCard(ctx, customerID)
	if err != nil {
		s.logger.Error("eligibility check failed: credit card lookup",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return &domain.ErrCustomerValidation{Err: err}
	}
	if !hasCard {
		return &domain.ErrNoCreditCard{CustomerID: customerID}
	}

	return nil
}
