package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// Filter parameter structs. Zero values mean "no constraint"; pointer fields
// distinguish "unset" from a legitimate zero bound. String matches are
// case-insensitive substring matches unless the field name says otherwise.

type CustomerFilter struct {
	NameContains  string
	EmailContains string
	PhonePrefix   string
	CreatedAtGte  *time.Time
	CreatedAtLte  *time.Time
}

type ProductFilter struct {
	NameContains string
	PriceGte     *decimal.Decimal
	PriceLte     *decimal.Decimal
	StockGte     *int
	StockLte     *int
	// LowStock restricts the result to products with stock below the
	// restock threshold.
	LowStock bool
}

type OrderFilter struct {
	TotalAmountGte *decimal.Decimal
	TotalAmountLte *decimal.Decimal
	OrderDateGte   *time.Time
	OrderDateLte   *time.Time
	CustomerID     string
	// CustomerNameContains and ProductNameContains traverse the order's
	// relations: orders whose owning customer, or any referenced product,
	// has a matching name.
	CustomerNameContains string
	ProductNameContains  string
	ProductID            string
}
