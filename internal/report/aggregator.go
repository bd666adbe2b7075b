// Package report computes the periodic CRM summary. It is a pure function
// over result sets already fetched through the API boundary — it never
// touches storage.
package report

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Summary holds the aggregated figures of one report run.
type Summary struct {
	Customers int
	Orders    int
	Revenue   decimal.Decimal
}

// Summarize counts customers and orders and sums order totals. A nil total
// (an order whose amount was absent in the response) contributes zero.
// Decimal addition is commutative and exact, so the revenue is independent
// of the order the totals arrive in.
func Summarize(customerCount int, orderTotals []*decimal.Decimal) Summary {
	revenue := decimal.Zero
	for _, t := range orderTotals {
		if t != nil {
			revenue = revenue.Add(*t)
		}
	}
	return Summary{
		Customers: customerCount,
		Orders:    len(orderTotals),
		Revenue:   revenue,
	}
}

// Line renders the summary as the single report log line, with the revenue
// fixed to two decimals. ts is the pre-formatted timestamp prefix.
func (s Summary) Line(ts string) string {
	return fmt.Sprintf("%s - Report: %d customers, %d orders, $%s revenue",
		ts, s.Customers, s.Orders, s.Revenue.StringFixed(2))
}
