package httpx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/crm-records/internal/domain"
)

type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type CreateProductRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock *int            `json:"stock,omitempty"`
}

type CreateOrderRequest struct {
	CustomerID string     `json:"customer_id"`
	ProductIDs []string   `json:"product_ids"`
	OrderDate  *time.Time `json:"order_date,omitempty"`
}

type CustomerPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductPayload struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
}

type OrderPayload struct {
	ID          string           `json:"id"`
	Customer    *CustomerPayload `json:"customer,omitempty"`
	Products    []ProductPayload `json:"products"`
	OrderDate   time.Time        `json:"order_date"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
}

// Mutation responses always carry a message and, on failure, the error list —
// a caller never sees a bare exception.

type CustomerResponse struct {
	Customer *CustomerPayload `json:"customer"`
	Message  string           `json:"message"`
	Errors   []string         `json:"errors,omitempty"`
}

type BulkCustomersResponse struct {
	Customers []CustomerPayload `json:"customers"`
	Message   string            `json:"message"`
	Errors    []string          `json:"errors,omitempty"`
}

type ProductResponse struct {
	Product *ProductPayload `json:"product"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors,omitempty"`
}

type OrderResponse struct {
	Order   *OrderPayload `json:"order"`
	Message string        `json:"message"`
	Errors  []string      `json:"errors,omitempty"`
}

type LowStockResponse struct {
	Success      bool             `json:"success"`
	Message      string           `json:"message"`
	UpdatedCount int              `json:"updated_count"`
	Products     []ProductPayload `json:"products"`
}

type HelloResponse struct {
	Hello bool `json:"hello"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func customerPayload(c *domain.Customer) *CustomerPayload {
	if c == nil {
		return nil
	}
	return &CustomerPayload{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}

func customerPayloads(cs []domain.Customer) []CustomerPayload {
	out := make([]CustomerPayload, len(cs))
	for i := range cs {
		out[i] = *customerPayload(&cs[i])
	}
	return out
}

func productPayload(p *domain.Product) *ProductPayload {
	if p == nil {
		return nil
	}
	return &ProductPayload{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
	}
}

func productPayloads(ps []domain.Product) []ProductPayload {
	out := make([]ProductPayload, len(ps))
	for i := range ps {
		out[i] = *productPayload(&ps[i])
	}
	return out
}

func orderPayload(o *domain.Order) *OrderPayload {
	if o == nil {
		return nil
	}
	return &OrderPayload{
		ID:          o.ID,
		Customer:    customerPayload(o.Customer),
		Products:    productPayloads(o.Products),
		OrderDate:   o.OrderDate,
		TotalAmount: o.TotalAmount,
	}
}

func orderPayloads(os []domain.Order) []OrderPayload {
	out := make([]OrderPayload, len(os))
	for i := range os {
		out[i] = *orderPayload(&os[i])
	}
	return out
}
