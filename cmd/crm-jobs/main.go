// crm-jobs runs one scheduled job and exits. An external cron owns the
// schedule, e.g.:
//
//	*/5 * * * *   crm-jobs heartbeat
//	0 */12 * * *  crm-jobs lowstock
//	0 8 * * 1     crm-jobs reminders
//	0 6 * * 1     crm-jobs report
//
// The exit code follows each job's failure policy: only a failed reminders
// run exits non-zero.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jcmexdev/crm-records/internal/jobs"
	"github.com/jcmexdev/crm-records/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	if len(os.Args) != 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "crm-jobs"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	logDir := getEnv("CRM_LOG_DIR", "/tmp")
	runner := jobs.NewRunner(jobs.Config{
		APIBaseURL:   getEnv("CRM_API_URL", "http://localhost:8080"),
		HeartbeatLog: getEnv("CRM_HEARTBEAT_LOG", filepath.Join(logDir, "crm_heartbeat_log.txt")),
		LowStockLog:  getEnv("CRM_LOW_STOCK_LOG", filepath.Join(logDir, "low_stock_updates_log.txt")),
		RemindersLog: getEnv("CRM_REMINDERS_LOG", filepath.Join(logDir, "order_reminders_log.txt")),
		ReportLog:    getEnv("CRM_REPORT_LOG", filepath.Join(logDir, "crm_report_log.txt")),
	})

	job, ok := runner.Job(os.Args[1])
	if !ok {
		usage()
		os.Exit(2)
	}

	if err := job.Run(ctx); err != nil {
		slog.Error("job failed", "job", job.Name, "error", err)
		if job.PropagateFailure {
			os.Exit(1)
		}
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: crm-jobs <heartbeat|lowstock|reminders|report>")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
