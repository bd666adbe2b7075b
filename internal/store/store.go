// Package store defines the port for the record store. Services depend on
// this abstraction, not on SQLite directly, so the implementation can be
// swapped (Postgres, in-memory for tests, etc.).
package store

import (
	"context"

	"github.com/jcmexdev/crm-records/internal/domain"
)

// Store is the persistence port for the three record kinds.
//
// Single-record getters return (nil, nil) when the id does not resolve —
// a miss is not an error. Callers that need "not found" as a failure build
// it themselves.
type Store interface {
	CreateCustomer(ctx context.Context, c *domain.Customer) error
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	CustomerEmailExists(ctx context.Context, email string) (bool, error)
	ListCustomers(ctx context.Context, f CustomerFilter) ([]domain.Customer, error)

	CreateProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]domain.Product, error)

	// RestockLowProducts adds increment to the stock of every product whose
	// stock is below threshold, atomically, and returns the updated rows.
	RestockLowProducts(ctx context.Context, threshold, increment int) ([]domain.Product, error)

	// CreateOrder writes the order row and its product associations as one
	// unit. An order is never observable without its products.
	CreateOrder(ctx context.Context, o *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]domain.Order, error)

	// InTransaction runs fn inside a single atomic transaction. Every write
	// made through tx commits together when fn returns nil, or is discarded
	// together when fn returns an error or the commit itself fails. Reads
	// through tx observe the transaction's own uncommitted writes.
	InTransaction(ctx context.Context, fn func(tx Store) error) error
}
