package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/samber/lo"

	"github.com/mtlprog/tinkreport/internal/config"
	"github.com/mtlprog/tinkreport/internal/domain"
)

// Renderer writes one report to a file.
type Renderer interface {
	Render(rep domain.Report, path string) error
}

// Publisher pushes the headline figures of finished reports somewhere shared.
type Publisher interface {
	Publish(ctx context.Context, reports []domain.Report) error
}

// Job renders reports for every configured account.
type Job struct {
	service    *Service
	accounts   config.Accounts
	renderer   Renderer
	publishers []Publisher
	dir        string
}

// NewJob creates a Job writing into dir. Nil publishers are ignored.
func NewJob(service *Service, accounts config.Accounts, renderer Renderer, dir string, publishers ...Publisher) *Job {
	if service == nil {
		panic("report.NewJob: service is nil")
	}
	if renderer == nil {
		panic("report.NewJob: renderer is nil")
	}
	publishers = lo.Filter(publishers, func(p Publisher, _ int) bool { return p != nil })
	return &Job{service: service, accounts: accounts, renderer: renderer, publishers: publishers, dir: dir}
}

// Result lists rendered files and accounts that failed.
type Result struct {
	Files  []string
	Failed map[string]error
}

// Run renders reports dated date. A non-empty only limits the run to that account.
// Accounts are processed sequentially; one failure does not stop the rest.
func (j *Job) Run(ctx context.Context, date time.Time, only string) (Result, error) {
	accounts, err := j.service.Accounts(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Failed: map[string]error{}}
	var reports []domain.Report
	for _, acc := range domain.OpenAccounts(accounts) {
		if only != "" && acc.ID != only {
			continue
		}
		settings := j.accounts.For(acc.ID)
		if !settings.Parse && only == "" {
			slog.Info("ReportJob: account disabled, skipping", "account", acc.ID)
			continue
		}

		rep, err := j.service.Build(ctx, acc, Options{Title: settings.Name, StartDate: settings.StartDate, Date: date})
		if err != nil {
			slog.Error("ReportJob: building report failed", "account", acc.ID, "error", err)
			res.Failed[acc.ID] = err
			continue
		}

		path := filepath.Join(j.dir, settings.FileName(rep.Date))
		if err := j.renderer.Render(rep, path); err != nil {
			slog.Error("ReportJob: rendering report failed", "account", acc.ID, "error", err)
			res.Failed[acc.ID] = fmt.Errorf("rendering %s: %w", path, err)
			continue
		}
		slog.Info("ReportJob: report written", "account", acc.ID, "path", path, "warnings", len(rep.Warnings))
		res.Files = append(res.Files, path)
		reports = append(reports, rep)

		if err := ctx.Err(); err != nil {
			return res, err
		}
	}

	if only != "" && len(res.Files) == 0 && len(res.Failed) == 0 {
		return res, fmt.Errorf("account %s not found among open accounts", only)
	}

	if len(reports) > 0 {
		for _, p := range j.publishers {
			if err := p.Publish(ctx, reports); err != nil {
				slog.Warn("ReportJob: publishing summary failed", "publisher", fmt.Sprintf("%T", p), "error", err)
			}
		}
	}

	if len(res.Failed) > 0 {
		errs := make([]error, 0, len(res.Failed))
		for id, e := range res.Failed {
			errs = append(errs, fmt.Errorf("account %s: %w", id, e))
		}
		return res, errors.Join(errs...)
	}
	return res, nil
}
