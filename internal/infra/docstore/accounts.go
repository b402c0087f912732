package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bank-microservices/account-service/internal/domain"
	"github.com/bank-microservices/account-service/internal/infra/resilience"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Bank accounts — implements port.AccountStore
// ============================================================

const accountsTable = "bank_accounts"

// accountDocument maps document-store columns to the domain account.
type accountDocument struct {
	ID                    string  `json:"id,omitempty"`
	AccountNumber         string  `json:"account_number"`
	CustomerID            string  `json:"customer_id"`
	Type                  string  `json:"type"`
	Balance               float64 `json:"balance"`
	MaxTransactions       int     `json:"max_transactions"`
	MonthlyFee            float64 `json:"monthly_fee"`
	AllowedWithdrawalDate string  `json:"allowed_withdrawal_date"`
	DebitCardLinked       bool    `json:"debit_card_linked"`
}

func (d *accountDocument) toDomain() *domain.Account {
	return &domain.Account{
		ID:                    d.ID,
		AccountNumber:         d.AccountNumber,
		CustomerID:            d.CustomerID,
		Type:                  d.Type,
		Balance:               d.Balance,
		MaxTransactions:       d.MaxTransactions,
		MonthlyFee:            d.MonthlyFee,
		AllowedWithdrawalDate: d.AllowedWithdrawalDate,
		DebitCardLinked:       d.DebitCardLinked,
	}
}

func fromDomain(a *domain.Account) *accountDocument {
	return &accountDocument{
		ID:                    a.ID,
		AccountNumber:         a.AccountNumber,
		CustomerID:            a.CustomerID,
		Type:                  a.Type,
		Balance:               a.Balance,
		MaxTransactions:       a.MaxTransactions,
		MonthlyFee:            a.MonthlyFee,
		AllowedWithdrawalDate: a.AllowedWithdrawalDate,
		DebitCardLinked:       a.DebitCardLinked,
	}
}

// wrapErr translates transport-level failures into domain errors.
func wrapErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: "account-store"}
	}
	return &domain.ErrExternalService{Service: "account-store", Err: err}
}

// findOne fetches at most one document matching the given filter.
// Returns (nil, nil) when nothing matches. Reads go through the circuit
// breaker and are retried; the query is idempotent.
func (c *Client) findOne(ctx context.Context, filter string) (*domain.Account, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	var account *domain.Account

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("%s?%s&limit=1", accountsTable, filter)
			body, err := c.doGet(ctx, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				account = nil
				return nil
			}

			var docs []accountDocument
			if err := json.Unmarshal(body, &docs); err != nil {
				return fmt.Errorf("decode account: %w", err)
			}
			if len(docs) == 0 {
				account = nil
				return nil
			}

			account = docs[0].toDomain()
			return nil
		})
	})
	if err != nil {
		return nil, wrapErr(err)
	}

	return account, nil
}

// findMany fetches all documents matching the given query string.
func (c *Client) findMany(ctx context.Context, query string) ([]domain.Account, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	var accounts []domain.Account

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := accountsTable
			if query != "" {
				path = fmt.Sprintf("%s?%s", accountsTable, query)
			}
			body, err := c.doGet(ctx, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				accounts = []domain.Account{}
				return nil
			}

			var docs []accountDocument
			if err := json.Unmarshal(body, &docs); err != nil {
				return fmt.Errorf("decode accounts: %w", err)
			}

			accounts = make([]domain.Account, 0, len(docs))
			for i := range docs {
				accounts = append(accounts, *docs[i].toDomain())
			}
			return nil
		})
	})
	if err != nil {
		return nil, wrapErr(err)
	}

	return accounts, nil
}

// FindByID fetches an account by document id.
func (c *Client) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Docstore.FindByID")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", id))

	return c.findOne(ctx, fmt.Sprintf("id=eq.%s", id))
}

// FindByAccountNumber fetches an account by its business account number.
func (c *Client) FindByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Docstore.FindByAccountNumber")
	defer span.End()
	span.SetAttributes(attribute.String("account.number", accountNumber))

	return c.findOne(ctx, fmt.Sprintf("account_number=eq.%s", accountNumber))
}

// FindByCustomerID fetches all accounts belonging to a customer.
func (c *Client) FindByCustomerID(ctx context.Context, customerID string) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Docstore.FindByCustomerID")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	return c.findMany(ctx, fmt.Sprintf("customer_id=eq.%s&order=account_number.asc", customerID))
}

// FindAll fetches every account document.
func (c *Client) FindAll(ctx context.Context) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Docstore.FindAll")
	defer span.End()

	return c.findMany(ctx, "order=account_number.asc")
}

// Save inserts or updates an account document. A missing id means insert:
// the id is assigned client-side and the store's unique index on
// account_number turns races into a 409, surfaced as ErrDuplicateAccountNumber.
// Writes are not retried; they go through the circuit breaker only.
func (c *Client) Save(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Docstore.Save")
	defer span.End()

	if account.ID == "" {
		return c.insert(ctx, account)
	}
	return c.update(ctx, account)
}

func (c *Client) insert(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	doc := fromDomain(account)
	doc.ID = uuid.New().String()

	var saved *domain.Account

	_, err := c.cb.Execute(func() (any, error) {
		body, err := c.doPost(ctx, accountsTable, doc)
		if err != nil {
			return nil, err
		}

		var docs []accountDocument
		if err := json.Unmarshal(body, &docs); err != nil {
			return nil, fmt.Errorf("decode saved account: %w", err)
		}
		if len(docs) == 0 {
			return nil, fmt.Errorf("empty representation after insert")
		}

		saved = docs[0].toDomain()
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, errConflict) {
			return nil, &domain.ErrDuplicateAccountNumber{AccountNumber: account.AccountNumber}
		}
		return nil, wrapErr(err)
	}

	c.logger.Info("docstore: account created",
		zap.String("account_id", saved.ID),
		zap.String("account_number", saved.AccountNumber),
		zap.String("type", saved.Type),
	)
	return saved, nil
}

func (c *Client) update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	_, err := c.cb.Execute(func() (any, error) {
		path := fmt.Sprintf("%s?id=eq.%s", accountsTable, account.ID)
		return nil, c.doPatch(ctx, path, fromDomain(account))
	})
	c.bulkhead.Release()
	if err != nil {
		return nil, wrapErr(err)
	}

	// Re-fetch to confirm the update actually persisted
	updated, err := c.findOne(ctx, fmt.Sprintf("id=eq.%s", account.ID))
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &domain.ErrNotFound{Resource: "account", ID: account.ID}
	}

	c.logger.Info("docstore: account updated",
		zap.String("account_id", updated.ID),
		zap.String("account_number", updated.AccountNumber),
	)
	return updated, nil
}

// Delete removes an account document by id.
func (c *Client) Delete(ctx context.Context, account *domain.Account) error {
	ctx, span := tracer.Start(ctx, "Docstore.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", account.ID))

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return err
	}
	defer c.bulkhead.Release()

	_, err := c.cb.Execute(func() (any, error) {
		path := fmt.Sprintf("%s?id=eq.%s", accountsTable, account.ID)
		return nil, c.doDelete(ctx, path)
	})
	if err != nil {
		return wrapErr(err)
	}

	c.logger.Info("docstore: account deleted", zap.String("account_id", account.ID))
	return nil
}

// Ping probes the store for health checks with a cheap single-row query.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doGet(ctx, fmt.Sprintf("%s?limit=1", accountsTable))
	if err != nil {
		return &domain.ErrExternalService{Service: "account-store", Err: err}
	}
	return nil
}
