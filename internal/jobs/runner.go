// Package jobs implements the four scheduled maintenance and reporting jobs.
// Each is an independent, short-lived unit of work: an external timer (cron)
// invokes one job per process run, the job calls the API boundary like any
// other client, appends its outcome to its own log file, and exits.
package jobs

import (
	"context"
	"time"

	"github.com/jcmexdev/crm-records/internal/apiclient"
)

// callTimeout bounds every API round-trip a job makes. A timed-out call is
// handled like any other failure; there are no retries.
const callTimeout = 30 * time.Second

// Config carries the deployment wiring: where the API boundary lives and
// where each job appends its log. Passing it in explicitly keeps the jobs
// testable against an in-memory API server.
type Config struct {
	APIBaseURL   string
	HeartbeatLog string
	LowStockLog  string
	RemindersLog string
	ReportLog    string
}

// Job is one schedulable unit.
//
// PropagateFailure is the per-job failure policy: when false the job always
// reports success to its invoker and failures only show up in its log; when
// true a failed run surfaces to the scheduler. The asymmetry is deliberate —
// only OrderReminders propagates — so it is a flag, not a uniform rule.
type Job struct {
	Name             string
	Run              func(ctx context.Context) error
	PropagateFailure bool
}

// Runner holds the shared wiring for all four jobs.
type Runner struct {
	cfg Config
	api *apiclient.Client
	now func() time.Time
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg: cfg,
		api: apiclient.New(cfg.APIBaseURL, callTimeout),
		now: time.Now,
	}
}

// Jobs lists every schedulable job.
func (r *Runner) Jobs() []Job {
	return []Job{
		{Name: "heartbeat", Run: r.Heartbeat},
		{Name: "lowstock", Run: r.LowStockRefresh},
		{Name: "reminders", Run: r.OrderReminders, PropagateFailure: true},
		{Name: "report", Run: r.PeriodicReport},
	}
}

// Job returns the named job.
func (r *Runner) Job(name string) (Job, bool) {
	for _, j := range r.Jobs() {
		if j.Name == name {
			return j, true
		}
	}
	return Job{}, false
}

func (r *Runner) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, callTimeout)
}
