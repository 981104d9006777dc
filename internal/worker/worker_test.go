package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mtlprog/tinkreport/internal/report"
)

type mockRefresher struct {
	callCount atomic.Int32
}

func (m *mockRefresher) Refresh(_ context.Context, _ time.Time) error {
	m.callCount.Add(1)
	return nil
}

func TestRateWorkerRunsAndShutdown(t *testing.T) {
	mock := &mockRefresher{}
	w := NewRateWorker(mock, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	// initial refresh plus some ticks
	if got := mock.callCount.Load(); got < 2 {
		t.Errorf("call count = %d, want >= 2", got)
	}
}

type mockJob struct {
	runs atomic.Int32
	err  error
}

func (m *mockJob) Run(_ context.Context) error {
	m.runs.Add(1)
	return m.err
}

func (m *mockJob) Name() string {
	return "mock"
}

func TestSchedulerRunsJobs(t *testing.T) {
	s := NewScheduler()
	job := &mockJob{err: errors.New("failure is logged, not fatal")}
	if err := s.AddJob("* * * * * *", job); err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2100*time.Millisecond)
	defer cancel()

	s.Run(ctx)

	if got := job.runs.Load(); got < 1 {
		t.Errorf("runs = %d, want >= 1", got)
	}
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := NewScheduler()
	if err := s.AddJob("every day at seven", &mockJob{}); err == nil {
		t.Error("AddJob should reject an invalid schedule")
	}
}

func TestSchedulerRunNow(t *testing.T) {
	s := NewScheduler()
	job := &mockJob{}
	if err := s.RunNow(context.Background(), job); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if got := job.runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
}

type mockRunner struct {
	date time.Time
	only string
	err  error
}

func (m *mockRunner) Run(_ context.Context, date time.Time, only string) (report.Result, error) {
	m.date = date
	m.only = only
	return report.Result{Files: []string{"a.xlsx"}}, m.err
}

func TestReportJob(t *testing.T) {
	now := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
	runner := &mockRunner{err: errors.New("account 1 failed")}
	job := NewReportJob(runner)
	job.now = func() time.Time { return now }

	err := job.Run(context.Background())
	if err == nil {
		t.Error("Run should pass the runner error through")
	}
	if !runner.date.Equal(now) || runner.only != "" {
		t.Errorf("runner called with %s %q, want %s for all accounts", runner.date, runner.only, now)
	}
	if job.Name() != "report" {
		t.Errorf("Name() = %q", job.Name())
	}
}
