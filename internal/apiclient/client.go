// Package apiclient is the typed HTTP client for the CRM API boundary. The
// scheduled jobs use it exclusively — they never touch the record store
// directly, so they observe exactly what any external caller would.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StatusError reports a non-2xx response from the API boundary.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Client talks JSON over HTTP to the API server. Every call is one blocking
// round-trip bounded by the client timeout; no retries.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Customer is the subset of customer fields the jobs consume.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Order carries the fields the reminder and report jobs need. TotalAmount is
// a pointer so an absent amount is distinguishable from zero.
type Order struct {
	ID          string           `json:"id"`
	Customer    *Customer        `json:"customer"`
	OrderDate   time.Time        `json:"order_date"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
}

type LowStockProduct struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

type LowStockResult struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	UpdatedCount int               `json:"updated_count"`
	Products     []LowStockProduct `json:"products"`
}

// OrdersQuery restricts ListOrders. The zero value lists everything.
type OrdersQuery struct {
	OrderDateGte *time.Time
}

// Hello issues the liveness query and reports whether the boundary answered
// truthily.
func (c *Client) Hello(ctx context.Context) (bool, error) {
	var res struct {
		Hello bool `json:"hello"`
	}
	if err := c.do(ctx, http.MethodGet, "/hello", nil, &res); err != nil {
		return false, err
	}
	return res.Hello, nil
}

// ListCustomers returns all customers.
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	var out []Customer
	if err := c.do(ctx, http.MethodGet, "/customers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOrders returns orders matching q, with the owning customer nested in
// each.
func (c *Client) ListOrders(ctx context.Context, q OrdersQuery) ([]Order, error) {
	path := "/orders"
	if q.OrderDateGte != nil {
		params := url.Values{}
		params.Set("order_date_gte", q.OrderDateGte.UTC().Format(time.RFC3339))
		path += "?" + params.Encode()
	}

	var out []Order
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateLowStockProducts invokes the restock mutation. The client treats it
// as opaque: whatever the server says happened is what gets logged.
func (c *Client) UpdateLowStockProducts(ctx context.Context) (*LowStockResult, error) {
	var out LowStockResult
	if err := c.do(ctx, http.MethodPost, "/products/update-low-stock", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode request: %w", err)
		}
		reqBody = strings.NewReader(string(raw))
	} else {
		reqBody = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("apiclient: decode %s %s: %w", method, path, err)
	}
	return nil
}
