// Package validate holds the stateless field validators applied before any
// record is written. Email uniqueness is the store's job (it requires a
// lookup); everything here is a pure function.
package validate

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// phonePattern accepts either an international number with 10-15 digits and
// an optional leading "+", or the dashed form 123-456-7890.
var phonePattern = regexp.MustCompile(`^(\+?\d{10,15}|\d{3}-\d{3}-\d{4})$`)

// Phone reports whether phone is acceptable. An empty phone is valid —
// the field is optional.
func Phone(phone string) bool {
	if phone == "" {
		return true
	}
	return phonePattern.MatchString(phone)
}

// Price reports whether price is strictly positive.
func Price(price decimal.Decimal) bool {
	return price.IsPositive()
}

// Stock reports whether stock is non-negative.
func Stock(stock int) bool {
	return stock >= 0
}
