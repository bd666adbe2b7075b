package report

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestSummarize(t *testing.T) {
	s := Summarize(3, []*decimal.Decimal{dec("10.00"), dec("2.50"), nil, dec("0.10")})
	if s.Customers != 3 {
		t.Fatalf("customers = %d", s.Customers)
	}
	if s.Orders != 4 { // the nil-amount order still counts
		t.Fatalf("orders = %d", s.Orders)
	}
	if !s.Revenue.Equal(decimal.RequireFromString("12.60")) {
		t.Fatalf("revenue = %s", s.Revenue)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	a := Summarize(0, []*decimal.Decimal{dec("0.10"), dec("0.20"), dec("0.70")})
	b := Summarize(0, []*decimal.Decimal{dec("0.70"), dec("0.10"), dec("0.20")})
	if !a.Revenue.Equal(b.Revenue) {
		t.Fatalf("revenue depends on summation order: %s vs %s", a.Revenue, b.Revenue)
	}
	if !a.Revenue.Equal(decimal.RequireFromString("1.00")) {
		t.Fatalf("revenue = %s, want exactly 1.00", a.Revenue)
	}
}

func TestLine(t *testing.T) {
	s := Summarize(5, []*decimal.Decimal{dec("100"), dec("20.5")})
	got := s.Line("2026-09-01 06:00:00")
	want := "2026-09-01 06:00:00 - Report: 5 customers, 2 orders, $120.50 revenue"
	if got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
}

func TestLineEmptyDataSet(t *testing.T) {
	got := Summarize(0, nil).Line("ts")
	want := "ts - Report: 0 customers, 0 orders, $0.00 revenue"
	if got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
}
