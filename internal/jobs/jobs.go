package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/crm-records/internal/apiclient"
	"github.com/jcmexdev/crm-records/internal/jobs/joblog"
	"github.com/jcmexdev/crm-records/internal/report"
)

// Timestamp layouts are fixed per job family; log consumers parse them, so
// they must never change. The heartbeat log historically uses a day-first
// layout, the other three share the ISO-like one.
const (
	heartbeatTimeLayout = "02/01/2006-15:04:05"
	logTimeLayout       = "2006-01-02 15:04:05"
)

// Heartbeat appends a liveness line, then probes the API boundary with the
// hello query and appends a second line with the outcome. The primary line
// is written before the probe runs, so it appears even when the API is down;
// probe errors are logged, never returned.
func (r *Runner) Heartbeat(ctx context.Context) error {
	ts := r.now().Format(heartbeatTimeLayout)

	if err := joblog.Append(r.cfg.HeartbeatLog, ts+" CRM is alive"); err != nil {
		return err
	}

	probeCtx, cancel := r.callCtx(ctx)
	defer cancel()

	alive, err := r.api.Hello(probeCtx)
	switch {
	case err != nil:
		_ = joblog.Append(r.cfg.HeartbeatLog, fmt.Sprintf("%s API check failed: %v", ts, err))
	case alive:
		_ = joblog.Append(r.cfg.HeartbeatLog, ts+" API endpoint responsive")
	}
	return nil
}

// LowStockRefresh invokes the restock mutation and logs the server's message
// plus one line per restocked product. Failures are logged and swallowed.
func (r *Runner) LowStockRefresh(ctx context.Context) error {
	ts := r.now().Format(logTimeLayout)

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	res, err := r.api.UpdateLowStockProducts(callCtx)
	if err != nil {
		var statusErr *apiclient.StatusError
		if errors.As(err, &statusErr) {
			_ = joblog.Append(r.cfg.LowStockLog, fmt.Sprintf("[%s] HTTP Error: %d", ts, statusErr.Code))
		} else {
			_ = joblog.Append(r.cfg.LowStockLog, fmt.Sprintf("[%s] ERROR: %v", ts, err))
		}
		return nil
	}

	lines := []string{fmt.Sprintf("[%s] %s", ts, res.Message)}
	if res.Success {
		for _, p := range res.Products {
			lines = append(lines, fmt.Sprintf("[%s] Product: %s, New Stock: %d", ts, p.Name, p.Stock))
		}
	}
	return joblog.Append(r.cfg.LowStockLog, lines...)
}

// OrderReminders logs a reminder line for every order placed in the last
// seven days. This is the one job whose failure propagates to the scheduler:
// a reminder silently not sent is worse than a rerun.
func (r *Runner) OrderReminders(ctx context.Context) error {
	ts := r.now().Format(logTimeLayout)
	since := r.now().AddDate(0, 0, -7)

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	orders, err := r.api.ListOrders(callCtx, apiclient.OrdersQuery{OrderDateGte: &since})
	if err != nil {
		_ = joblog.Append(r.cfg.RemindersLog, fmt.Sprintf("[%s] ERROR: %v", ts, err))
		return fmt.Errorf("order reminders: %w", err)
	}

	lines := []string{fmt.Sprintf("[%s] Processing %d order(s)", ts, len(orders))}
	for _, o := range orders {
		email := ""
		if o.Customer != nil {
			email = o.Customer.Email
		}
		lines = append(lines, fmt.Sprintf("[%s] Order ID: %s, Customer Email: %s, Order Date: %s",
			ts, o.ID, email, o.OrderDate.Format(time.RFC3339)))
	}
	return joblog.Append(r.cfg.RemindersLog, lines...)
}

// PeriodicReport fetches all customers and orders through the API boundary,
// aggregates them, and appends the summary line. Failures are logged and
// swallowed.
func (r *Runner) PeriodicReport(ctx context.Context) error {
	ts := r.now().Format(logTimeLayout)

	customersCtx, cancel := r.callCtx(ctx)
	defer cancel()
	customers, err := r.api.ListCustomers(customersCtx)
	if err != nil {
		r.logReportFailure(ts, err)
		return nil
	}

	ordersCtx, cancel := r.callCtx(ctx)
	defer cancel()
	orders, err := r.api.ListOrders(ordersCtx, apiclient.OrdersQuery{})
	if err != nil {
		r.logReportFailure(ts, err)
		return nil
	}

	totals := make([]*decimal.Decimal, len(orders))
	for i := range orders {
		totals[i] = orders[i].TotalAmount
	}

	summary := report.Summarize(len(customers), totals)
	return joblog.Append(r.cfg.ReportLog, summary.Line(ts))
}

func (r *Runner) logReportFailure(ts string, err error) {
	var statusErr *apiclient.StatusError
	if errors.As(err, &statusErr) {
		_ = joblog.Append(r.cfg.ReportLog, fmt.Sprintf("%s - HTTP Error: %d", ts, statusErr.Code))
		return
	}
	_ = joblog.Append(r.cfg.ReportLog, fmt.Sprintf("%s - ERROR: %v", ts, err))
}
