// Package snapshot keeps the headline figures of every rendered report so past
// valuations of an account can be compared without re-reading the broker history.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// Summary is the stored part of a report.
type Summary struct {
	Account    domain.Account             `json:"account"`
	Title      string                     `json:"title"`
	Date       time.Time                  `json:"date"`
	StartDate  time.Time                  `json:"startDate"`
	Statistics domain.Statistics          `json:"statistics"`
	Types      []domain.TypePart          `json:"types"`
	CBRates    map[string]decimal.Decimal `json:"cbRates,omitempty"`
	ProfitLoss domain.ProfitLoss          `json:"profitLoss"`
	Warnings   []string                   `json:"warnings,omitempty"`
}

// NewSummary extracts the stored part of rep.
func NewSummary(rep domain.Report) Summary {
	return Summary{
		Account:    rep.Account,
		Title:      rep.Title,
		Date:       rep.Date,
		StartDate:  rep.StartDate,
		Statistics: rep.Statistics,
		Types:      rep.Parts.Types,
		CBRates:    rep.CBRates,
		ProfitLoss: rep.ProfitLoss,
		Warnings:   rep.Warnings,
	}
}

// Service manages snapshot storage and retrieval.
type Service struct {
	repo Repository
}

// NewService creates a snapshot Service.
func NewService(repo Repository) *Service {
	if repo == nil {
		panic("snapshot.NewService: repo is nil")
	}
	return &Service{repo: repo}
}

// Publish stores one snapshot per report, keyed by account and the report's MSK calendar day.
// A report re-rendered on the same day replaces the earlier snapshot.
func (s *Service) Publish(ctx context.Context, reports []domain.Report) error {
	var errs []error
	for _, rep := range reports {
		data, err := json.Marshal(NewSummary(rep))
		if err != nil {
			errs = append(errs, fmt.Errorf("marshaling snapshot of %s: %w", rep.Account.ID, err))
			continue
		}
		day := Day(rep.Date)
		if err := s.repo.Save(ctx, rep.Account.ID, day, data); err != nil {
			errs = append(errs, err)
			continue
		}
		slog.Debug("Snapshot: saved", "account", rep.Account.ID, "date", day.Format(time.DateOnly))
	}
	return errors.Join(errs...)
}

// GetLatest retrieves the most recent snapshot of the account.
func (s *Service) GetLatest(ctx context.Context, accountID string) (*Snapshot, error) {
	return s.repo.GetLatest(ctx, accountID)
}

// GetByDate retrieves the snapshot of a specific day.
func (s *Service) GetByDate(ctx context.Context, accountID string, date time.Time) (*Snapshot, error) {
	return s.repo.GetByDate(ctx, accountID, Day(date))
}

// List retrieves recent snapshots, newest first.
func (s *Service) List(ctx context.Context, accountID string, limit int) ([]Snapshot, error) {
	return s.repo.List(ctx, accountID, limit)
}

// Day is the storage key of t: its MSK calendar day at midnight UTC.
func Day(t time.Time) time.Time {
	return domain.DateOnly(t.In(domain.MSK))
}
