package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/mtlprog/tinkreport/internal/report"
)

// ReportRunner renders reports for every configured account.
type ReportRunner interface {
	Run(ctx context.Context, date time.Time, only string) (report.Result, error)
}

// ReportJob regenerates all account reports as of the moment it runs.
type ReportJob struct {
	runner ReportRunner
	now    func() time.Time
}

// NewReportJob creates a new ReportJob.
func NewReportJob(runner ReportRunner) *ReportJob {
	return &ReportJob{runner: runner, now: time.Now}
}

// Name implements Job.
func (j *ReportJob) Name() string {
	return "report"
}

// Run implements Job.
func (j *ReportJob) Run(ctx context.Context) error {
	res, err := j.runner.Run(ctx, j.now(), "")
	slog.Info("ReportJob: run finished", "files", len(res.Files), "failed", len(res.Failed))
	return err
}
