// Package billing is a REST/JSON client for the payment gateway. Requests
// authenticate with an access_token header.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoToken is returned when the client has no API token.
	ErrNoToken = errors.New("billing: api token not configured")
	// ErrRejected wraps gateway 4xx answers; the request itself was bad.
	ErrRejected = errors.New("billing: request rejected")
)

// Customer is a gateway customer record.
type Customer struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	CpfCnpj string `json:"cpfCnpj"`
}

// Payment is a one-off charge.
type Payment struct {
	ID          string          `json:"id,omitempty"`
	Customer    string          `json:"customer"`
	BillingType string          `json:"billingType"`
	Value       decimal.Decimal `json:"value"`
	DueDate     string          `json:"dueDate"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status,omitempty"`
	InvoiceURL  string          `json:"invoiceUrl,omitempty"`
}

// Subscription is a recurring charge.
type Subscription struct {
	ID          string          `json:"id,omitempty"`
	Customer    string          `json:"customer"`
	BillingType string          `json:"billingType"`
	Value       decimal.Decimal `json:"value"`
	NextDueDate string          `json:"nextDueDate"`
	Cycle       string          `json:"cycle"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status,omitempty"`
}

// APIError is a non-2xx gateway answer.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("billing: gateway status %d: %s", e.Status, e.Message)
}

// Unwrap lets callers match 4xx answers with errors.Is(err, ErrRejected).
func (e *APIError) Unwrap() error {
	if e.Status >= 400 && e.Status < 500 {
		return ErrRejected
	}
	return nil
}

// Client talks to the gateway.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New returns a Client with the given timeout.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// FindCustomerByTaxID returns the first customer registered with taxID, or
// nil when there is none.
func (c *Client) FindCustomerByTaxID(ctx context.Context, taxID string) (*Customer, error) {
	var page struct {
		Data []Customer `json:"data"`
	}
	q := url.Values{"cpfCnpj": {taxID}}
	if err := c.do(ctx, http.MethodGet, "/customers?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	if len(page.Data) == 0 {
		return nil, nil
	}
	return &page.Data[0], nil
}

// CreateCustomer registers a customer.
func (c *Client) CreateCustomer(ctx context.Context, in Customer) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodPost, "/customers", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePayment creates a one-off charge.
func (c *Client) CreatePayment(ctx context.Context, in Payment) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodPost, "/payments", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSubscription creates a recurring charge.
func (c *Client) CreateSubscription(ctx context.Context, in Subscription) (*Subscription, error) {
	var out Subscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c == nil || strings.TrimSpace(c.Token) == "" {
		return ErrNoToken
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("access_token", c.Token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("billing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("billing: decode: %w", err)
	}
	return nil
}

// errorMessage pulls the first description out of the gateway's
// {"errors":[{"code","description"}]} envelope, falling back to raw text.
func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 8<<10))
	var env struct {
		Errors []struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"errors"`
	}
	if json.Unmarshal(raw, &env) == nil && len(env.Errors) > 0 {
		return env.Errors[0].Description
	}
	return strings.TrimSpace(string(raw))
}
