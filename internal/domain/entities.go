// Package domain defines the record types the CRM tracks: customers,
// products, and the orders that tie them together.
//
// Records are created once and never modified afterwards; the only exception
// is the low-stock restock pass, which bumps product stock counts. Monetary
// amounts use shopspring/decimal so that order totals are exact — summing
// product prices must give the same result in any permutation, with no
// floating-point drift.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a CRM customer. Email is globally unique; Phone is optional
// (empty string means absent).
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// Product is a sellable item with an exact decimal price and a non-negative
// stock count.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Stock     int
	CreatedAt time.Time
}

// Order belongs to exactly one customer and references one or more products.
// TotalAmount is the sum of the referenced products' prices at creation time.
//
// Customer and Products are populated by reads that traverse the relations;
// writes only need CustomerID and the product IDs inside Products.
type Order struct {
	ID          string
	CustomerID  string
	Customer    *Customer
	Products    []Product
	OrderDate   time.Time
	TotalAmount decimal.Decimal
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}
