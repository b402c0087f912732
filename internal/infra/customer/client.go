// Package customer provides the HTTP client for the external customer
// service, used to validate customers during account creation.
package customer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bank-microservices/account-service/internal/domain"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("customer")

// Client calls the customer service over HTTP. Calls are single-shot:
// the account workflows treat customer data as advisory, so a failed
// lookup is reported (or tolerated) rather than retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	strict     bool
	logger     *zap.Logger
}

// NewClient creates a customer-service client. With strict=false (the
// default), Exists treats any failure as "customer does not exist";
// with strict=true failures surface as external-service errors.
func NewClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, strict bool, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		strict:     strict,
		logger:     logger,
	}
}

func (c *Client) get(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// Exists reports whether a customer exists. Any 2xx answer counts as yes;
// any other status as no. Transport failures follow the strict flag.
func (c *Client) Exists(ctx context.Context, customerID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Customer.Exists")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	res, err := c.cb.Execute(func() (any, error) {
		status, _, err := c.get(ctx, fmt.Sprintf("%s/%s", c.baseURL, customerID))
		if err != nil {
			return false, err
		}
		return status >= 200 && status < 300, nil
	})
	if err != nil {
		if c.strict {
			return false, translateErr(err)
		}
		c.logger.Warn("customer: existence check failed, assuming absent",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return false, nil
	}

	exists, _ := res.(bool)
	return exists, nil
}

// customerEnvelope mirrors the customer service's response wrapper.
type customerEnvelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    *domain.Customer `json:"data"`
}

// GetCustomer fetches the customer's full record. Returns (nil, nil) when
// the service answers successfully but carries no customer data.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "Customer.GetCustomer")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	var cust *domain.Customer

	_, err := c.cb.Execute(func() (any, error) {
		status, body, err := c.get(ctx, fmt.Sprintf("%s/customers/%s", c.baseURL, customerID))
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			return nil, nil // unknown customer, not a transport failure
		}
		if status < 200 || status >= 300 {
			return nil, fmt.Errorf("customer service returned %d: %s", status, string(body))
		}

		var env customerEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("decode customer: %w", err)
		}
		cust = env.Data
		return nil, nil
	})
	if err != nil {
		return nil, translateErr(err)
	}

	return cust, nil
}

// HasActiveCreditCard reports whether the customer holds an active credit
// card. The customer service answers with a bare JSON boolean.
func (c *Client) HasActiveCreditCard(ctx context.Context, customerID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Customer.HasActiveCreditCard")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	res, err := c.cb.Execute(func() (any, error) {
		status, body, err := c.get(ctx, fmt.Sprintf("%s/customers/%s/has-credit-card", c.baseURL, customerID))
		if err != nil {
			return false, err
		}
		if status < 200 || status >= 300 {
			return false, fmt.Errorf("customer service returned %d: %s", status, string(body))
		}

		var hasCard bool
		if err := json.Unmarshal(body, &hasCard); err != nil {
			return false, fmt.Errorf("decode credit card answer: %w", err)
		}
		return hasCard, nil
	})
	if err != nil {
		return false, translateErr(err)
	}

	hasCard, _ := res.(bool)
	return hasCard, nil
}

func translateErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: "customer-service"}
	}
	return &domain.ErrExternalService{Service: "customer-service", Err: err}
}
