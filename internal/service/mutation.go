// Package service implements the mutation and query layers on top of the
// record store. Mutations validate first and only then write; validation
// failures are reported as structured error lists in the result, never as Go
// errors. A non-nil Go error from a mutation means the store itself failed
// (connection, constraint at commit time) and the operation wrote nothing.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/crm-records/internal/domain"
	"github.com/jcmexdev/crm-records/internal/store"
	"github.com/jcmexdev/crm-records/internal/validate"
)

// MutationService creates records. All entities are created through it.
type MutationService struct {
	store store.Store
	now   func() time.Time
}

func NewMutationService(s store.Store) *MutationService {
	return &MutationService{store: s, now: time.Now}
}

type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

type ProductInput struct {
	Name  string
	Price decimal.Decimal
	// Stock defaults to 0 when nil.
	Stock *int
}

type OrderInput struct {
	CustomerID string
	ProductIDs []string
	// OrderDate defaults to the current time when nil.
	OrderDate *time.Time
}

// Mutation results carry exactly one of {record, non-empty Errors}, plus a
// human-readable Message. BulkCreateCustomersResult may carry both created
// rows and row-scoped errors.

type CreateCustomerResult struct {
	Customer *domain.Customer
	Message  string
	Errors   []string
}

type BulkCreateCustomersResult struct {
	Customers []domain.Customer
	Message   string
	Errors    []string
}

type CreateProductResult struct {
	Product *domain.Product
	Message string
	Errors  []string
}

type CreateOrderResult struct {
	Order   *domain.Order
	Message string
	Errors  []string
}

// CreateCustomer creates a single customer. A duplicate email or a malformed
// phone rejects the input without writing anything.
func (m *MutationService) CreateCustomer(ctx context.Context, in CustomerInput) (CreateCustomerResult, error) {
	exists, err := m.store.CustomerEmailExists(ctx, in.Email)
	if err != nil {
		return CreateCustomerResult{}, fmt.Errorf("create customer: %w", err)
	}
	if exists {
		return CreateCustomerResult{
			Message: "Failed",
			Errors:  []string{fmt.Sprintf("Email '%s' already exists", in.Email)},
		}, nil
	}

	if !validate.Phone(in.Phone) {
		return CreateCustomerResult{
			Message: "Failed",
			Errors:  []string{"Invalid phone number format. Use +1234567890 or 123-456-7890"},
		}, nil
	}

	c := domain.Customer{
		ID:        domain.NewID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: m.now().UTC(),
	}
	if err := m.store.CreateCustomer(ctx, &c); err != nil {
		return CreateCustomerResult{}, fmt.Errorf("create customer: %w", err)
	}

	return CreateCustomerResult{
		Customer: &c,
		Message:  "Customer created successfully",
	}, nil
}

// BulkCreateCustomers processes rows strictly in input order inside one
// transaction. Each failing row records "Row {n}: {reason}" (1-based) and is
// skipped; the rest of the batch continues. All rows that passed commit
// together — if the commit fails, none of them persist and the store error
// is returned.
//
// The duplicate-email check runs against the state visible inside the
// transaction, which includes the batch's own earlier writes. Two rows
// sharing a new email therefore produce one created customer and one row
// error.
func (m *MutationService) BulkCreateCustomers(ctx context.Context, rows []CustomerInput) (BulkCreateCustomersResult, error) {
	var created []domain.Customer
	var errs []string

	err := m.store.InTransaction(ctx, func(tx store.Store) error {
		for i, row := range rows {
			exists, err := tx.CustomerEmailExists(ctx, row.Email)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			if exists {
				errs = append(errs, fmt.Sprintf("Row %d: Email '%s' already exists", i+1, row.Email))
				continue
			}

			if !validate.Phone(row.Phone) {
				errs = append(errs, fmt.Sprintf("Row %d: Invalid phone number format", i+1))
				continue
			}

			c := domain.Customer{
				ID:        domain.NewID(),
				Name:      row.Name,
				Email:     row.Email,
				Phone:     row.Phone,
				CreatedAt: m.now().UTC(),
			}
			if err := tx.CreateCustomer(ctx, &c); err != nil {
				errs = append(errs, fmt.Sprintf("Row %d: %v", i+1, err))
				continue
			}
			created = append(created, c)
		}
		return nil
	})
	if err != nil {
		// The transaction rolled back; every row is discarded as a unit.
		return BulkCreateCustomersResult{}, fmt.Errorf("bulk create customers: %w", err)
	}

	msg := fmt.Sprintf("Created %d customers", len(created))
	if len(errs) > 0 {
		msg += fmt.Sprintf(", %d failed", len(errs))
	}

	return BulkCreateCustomersResult{
		Customers: created,
		Message:   msg,
		Errors:    errs,
	}, nil
}

// CreateProduct creates a product. Stock defaults to 0.
func (m *MutationService) CreateProduct(ctx context.Context, in ProductInput) (CreateProductResult, error) {
	if !validate.Price(in.Price) {
		return CreateProductResult{
			Message: "Failed",
			Errors:  []string{"Price must be positive"},
		}, nil
	}

	stock := 0
	if in.Stock != nil {
		stock = *in.Stock
	}
	if !validate.Stock(stock) {
		return CreateProductResult{
			Message: "Failed",
			Errors:  []string{"Stock cannot be negative"},
		}, nil
	}

	p := domain.Product{
		ID:        domain.NewID(),
		Name:      in.Name,
		Price:     in.Price,
		Stock:     stock,
		CreatedAt: m.now().UTC(),
	}
	if err := m.store.CreateProduct(ctx, &p); err != nil {
		return CreateProductResult{}, fmt.Errorf("create product: %w", err)
	}

	return CreateProductResult{
		Product: &p,
		Message: "Product created successfully",
	}, nil
}

// CreateOrder resolves the customer and every product, computes the exact
// decimal total, and writes the order with its associations atomically.
// Unlike BulkCreateCustomers, any unresolved product aborts the whole
// operation: the error list names every missing product and no order is
// created.
func (m *MutationService) CreateOrder(ctx context.Context, in OrderInput) (CreateOrderResult, error) {
	var result CreateOrderResult

	err := m.store.InTransaction(ctx, func(tx store.Store) error {
		customer, err := tx.GetCustomer(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			result = CreateOrderResult{
				Message: "Failed",
				Errors:  []string{fmt.Sprintf("Customer with ID %s does not exist", in.CustomerID)},
			}
			return nil
		}

		if len(in.ProductIDs) == 0 {
			result = CreateOrderResult{
				Message: "Failed",
				Errors:  []string{"At least one product is required"},
			}
			return nil
		}

		// Resolve sequentially so the error list is deterministic.
		var products []domain.Product
		var missing []string
		for _, id := range in.ProductIDs {
			p, err := tx.GetProduct(ctx, id)
			if err != nil {
				return err
			}
			if p == nil {
				missing = append(missing, fmt.Sprintf("Product with ID %s does not exist", id))
				continue
			}
			products = append(products, *p)
		}
		if len(missing) > 0 {
			result = CreateOrderResult{Message: "Failed", Errors: missing}
			return nil
		}

		total := decimal.Zero
		for _, p := range products {
			total = total.Add(p.Price)
		}

		orderDate := m.now().UTC()
		if in.OrderDate != nil {
			orderDate = in.OrderDate.UTC()
		}

		o := domain.Order{
			ID:          domain.NewID(),
			CustomerID:  customer.ID,
			Customer:    customer,
			Products:    products,
			OrderDate:   orderDate,
			TotalAmount: total,
		}
		if err := tx.CreateOrder(ctx, &o); err != nil {
			return err
		}

		result = CreateOrderResult{
			Order:   &o,
			Message: "Order created successfully",
		}
		return nil
	})
	if err != nil {
		return CreateOrderResult{}, fmt.Errorf("create order: %w", err)
	}
	return result, nil
}

// RestockLowStockResult is the response of the restock maintenance mutation.
type RestockLowStockResult struct {
	Success      bool
	Message      string
	UpdatedCount int
	Products     []domain.Product
}

// Stock below restockThreshold counts as low; each restock pass adds
// restockIncrement.
const (
	restockThreshold = 10
	restockIncrement = 10
)

// UpdateLowStockProducts restocks every low-stock product in one pass.
func (m *MutationService) UpdateLowStockProducts(ctx context.Context) (RestockLowStockResult, error) {
	products, err := m.store.RestockLowProducts(ctx, restockThreshold, restockIncrement)
	if err != nil {
		return RestockLowStockResult{}, fmt.Errorf("update low-stock products: %w", err)
	}

	return RestockLowStockResult{
		Success:      true,
		Message:      fmt.Sprintf("Successfully updated %d low-stock products", len(products)),
		UpdatedCount: len(products),
		Products:     products,
	}, nil
}
