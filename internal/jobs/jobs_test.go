package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/crm-records/internal/httpx"
	"github.com/jcmexdev/crm-records/internal/service"
	"github.com/jcmexdev/crm-records/internal/store/sqlite"
)

var fixedNow = time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)

// newAPIServer starts the real API boundary over a throwaway database, so the
// jobs are exercised end to end exactly as cron runs them.
func newAPIServer(t *testing.T) (*httptest.Server, *service.MutationService) {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	m := service.NewMutationService(repo)
	handler := httpx.NewHandler(m, service.NewQueryService(repo, nil))
	srv := httptest.NewServer(httpx.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv, m
}

func newRunner(t *testing.T, baseURL string) *Runner {
	t.Helper()
	dir := t.TempDir()
	r := NewRunner(Config{
		APIBaseURL:   baseURL,
		HeartbeatLog: filepath.Join(dir, "crm_heartbeat_log.txt"),
		LowStockLog:  filepath.Join(dir, "low_stock_updates_log.txt"),
		RemindersLog: filepath.Join(dir, "order_reminders_log.txt"),
		ReportLog:    filepath.Join(dir, "crm_report_log.txt"),
	})
	r.now = func() time.Time { return fixedNow }
	return r
}

func logLines(t *testing.T, path string) []string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
}

// unreachableURL returns a base URL with nothing listening behind it.
func unreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestHeartbeatResponsive(t *testing.T) {
	srv, _ := newAPIServer(t)
	r := newRunner(t, srv.URL)

	require.NoError(t, r.Heartbeat(context.Background()))

	lines := logLines(t, r.cfg.HeartbeatLog)
	require.Equal(t, []string{
		"01/09/2026-06:00:00 CRM is alive",
		"01/09/2026-06:00:00 API endpoint responsive",
	}, lines)
}

// The liveness line goes out before the probe, so it survives an API outage;
// the probe failure is logged, not returned.
func TestHeartbeatAPIDown(t *testing.T) {
	r := newRunner(t, unreachableURL(t))

	require.NoError(t, r.Heartbeat(context.Background()))

	lines := logLines(t, r.cfg.HeartbeatLog)
	require.Len(t, lines, 2)
	require.Equal(t, "01/09/2026-06:00:00 CRM is alive", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "01/09/2026-06:00:00 API check failed: "), "got %q", lines[1])
}

func TestHeartbeatAppendsAcrossRuns(t *testing.T) {
	srv, _ := newAPIServer(t)
	r := newRunner(t, srv.URL)

	require.NoError(t, r.Heartbeat(context.Background()))
	require.NoError(t, r.Heartbeat(context.Background()))

	require.Len(t, logLines(t, r.cfg.HeartbeatLog), 4)
}

func TestLowStockRefresh(t *testing.T) {
	srv, m := newAPIServer(t)
	ctx := context.Background()
	stock := 1
	_, err := m.CreateProduct(ctx, service.ProductInput{
		Name: "Scarce", Price: decimal.RequireFromString("1.00"), Stock: &stock,
	})
	require.NoError(t, err)

	r := newRunner(t, srv.URL)
	require.NoError(t, r.LowStockRefresh(ctx))

	lines := logLines(t, r.cfg.LowStockLog)
	require.Equal(t, []string{
		"[2026-09-01 06:00:00] Successfully updated 1 low-stock products",
		"[2026-09-01 06:00:00] Product: Scarce, New Stock: 11",
	}, lines)
}

func TestLowStockRefreshLogsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	r := newRunner(t, srv.URL)
	require.NoError(t, r.LowStockRefresh(context.Background()))

	lines := logLines(t, r.cfg.LowStockLog)
	require.Equal(t, []string{"[2026-09-01 06:00:00] HTTP Error: 500"}, lines)
}

func TestOrderReminders(t *testing.T) {
	srv, m := newAPIServer(t)
	ctx := context.Background()

	c, err := m.CreateCustomer(ctx, service.CustomerInput{Name: "Alice", Email: "alice@x.com"})
	require.NoError(t, err)
	p, err := m.CreateProduct(ctx, service.ProductInput{Name: "Widget", Price: decimal.RequireFromString("10.00")})
	require.NoError(t, err)

	recent := fixedNow.AddDate(0, 0, -1)
	stale := fixedNow.AddDate(0, 0, -30)
	for _, date := range []time.Time{recent, stale} {
		d := date
		_, err := m.CreateOrder(ctx, service.OrderInput{
			CustomerID: c.Customer.ID,
			ProductIDs: []string{p.Product.ID},
			OrderDate:  &d,
		})
		require.NoError(t, err)
	}

	r := newRunner(t, srv.URL)
	require.NoError(t, r.OrderReminders(ctx))

	lines := logLines(t, r.cfg.RemindersLog)
	require.Len(t, lines, 2) // header + the one recent order
	require.Equal(t, "[2026-09-01 06:00:00] Processing 1 order(s)", lines[0])
	require.Contains(t, lines[1], "Customer Email: alice@x.com")
	require.Contains(t, lines[1], "Order Date: "+recent.Format(time.RFC3339))
}

// Reminders is the only job whose failure reaches the scheduler, and it still
// leaves an error line in its own log.
func TestOrderRemindersPropagatesFailure(t *testing.T) {
	r := newRunner(t, unreachableURL(t))

	err := r.OrderReminders(context.Background())
	require.Error(t, err)

	lines := logLines(t, r.cfg.RemindersLog)
	require.Len(t, lines, 1)
	require.True(t, strings.HasPrefix(lines[0], "[2026-09-01 06:00:00] ERROR: "), "got %q", lines[0])
}

func TestPeriodicReport(t *testing.T) {
	srv, m := newAPIServer(t)
	ctx := context.Background()

	a, err := m.CreateCustomer(ctx, service.CustomerInput{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	_, err = m.CreateCustomer(ctx, service.CustomerInput{Name: "B", Email: "b@x.com"})
	require.NoError(t, err)
	p, err := m.CreateProduct(ctx, service.ProductInput{Name: "W", Price: decimal.RequireFromString("10.50")})
	require.NoError(t, err)
	_, err = m.CreateOrder(ctx, service.OrderInput{CustomerID: a.Customer.ID, ProductIDs: []string{p.Product.ID}})
	require.NoError(t, err)

	r := newRunner(t, srv.URL)
	require.NoError(t, r.PeriodicReport(ctx))
	// A second run over unchanged data appends the same figures again.
	require.NoError(t, r.PeriodicReport(ctx))

	want := "2026-09-01 06:00:00 - Report: 2 customers, 1 orders, $10.50 revenue"
	require.Equal(t, []string{want, want}, logLines(t, r.cfg.ReportLog))
}

func TestPeriodicReportLogsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	r := newRunner(t, srv.URL)
	require.NoError(t, r.PeriodicReport(context.Background()))

	lines := logLines(t, r.cfg.ReportLog)
	require.Equal(t, []string{"2026-09-01 06:00:00 - HTTP Error: 502"}, lines)
}

func TestJobRegistry(t *testing.T) {
	r := newRunner(t, "http://localhost:0")

	reminders, ok := r.Job("reminders")
	require.True(t, ok)
	require.True(t, reminders.PropagateFailure)

	for _, name := range []string{"heartbeat", "lowstock", "report"} {
		j, ok := r.Job(name)
		require.True(t, ok, name)
		require.False(t, j.PropagateFailure, name)
	}

	_, ok = r.Job("nope")
	require.False(t, ok)
}
