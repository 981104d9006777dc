package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtlprog/tinkreport/internal/cache"
	"github.com/mtlprog/tinkreport/internal/cbr"
	"github.com/mtlprog/tinkreport/internal/config"
	"github.com/mtlprog/tinkreport/internal/costbasis"
	"github.com/mtlprog/tinkreport/internal/database"
	"github.com/mtlprog/tinkreport/internal/export"
	"github.com/mtlprog/tinkreport/internal/ledger"
	"github.com/mtlprog/tinkreport/internal/market"
	"github.com/mtlprog/tinkreport/internal/portfolio"
	"github.com/mtlprog/tinkreport/internal/rates"
	"github.com/mtlprog/tinkreport/internal/report"
	"github.com/mtlprog/tinkreport/internal/snapshot"
	"github.com/mtlprog/tinkreport/internal/tinvest"
	"github.com/mtlprog/tinkreport/internal/valuation"
)

// app holds the wired services shared by all commands.
type app struct {
	cfg       config.Config
	accounts  config.Accounts
	rates     *rates.Service
	report    *report.Service
	job       *report.Job
	snapshots *snapshot.Service
	close     func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	accounts, err := config.LoadAccounts(cfg.AccountsFile)
	if err != nil {
		return nil, err
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := st.cache

	gateway := tinvest.NewClient(cfg.TInvestURL, cfg.TInvestToken, cfg.TInvestRetryMax, cfg.TInvestRetryBaseDelay)
	cbrClient := cbr.NewClient(cfg.CBRURL, cfg.CBRDelay, cfg.CBRRetryMax)

	rateSvc := rates.NewService(store, cbrClient)
	marketSvc := market.NewService(gateway, store, cfg.InstrumentMaxAge, cfg.MarketPriceMaxAge)

	reportSvc := report.NewService(
		gateway,
		marketSvc,
		rateSvc,
		costbasis.NewReconstructor(rateSvc, marketSvc, costbasis.Aliases(accounts.InstrumentAliases)),
		ledger.NewService(ledger.NewClassifier(), rateSvc),
		valuation.NewValuator(cfg.TaxRate),
		portfolio.NewAggregator(cfg.TaxRate, accounts.TickerCurrency),
	)

	var publisher report.Publisher
	if cfg.SheetsEnabled() {
		sw, err := export.NewSheetsWriter(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleCredentialsJSON)
		if err != nil {
			st.close()
			return nil, err
		}
		publisher = sw
	}

	snapshots := snapshot.NewService(st.snapshots)
	job := report.NewJob(reportSvc, accounts, export.NewXLSXRenderer(cfg.TaxRate), cfg.ReportDir, snapshots, publisher)

	return &app{
		cfg:       cfg,
		accounts:  accounts,
		rates:     rateSvc,
		report:    reportSvc,
		job:       job,
		snapshots: snapshots,
		close:     st.close,
	}, nil
}

type stores struct {
	cache     cache.Repository
	snapshots snapshot.Repository
	close     func()
}

// openStores uses PostgreSQL when DATABASE_URL is set and a local SQLite file otherwise.
func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return stores{}, fmt.Errorf("connecting to database: %w", err)
		}
		if err := database.RunMigrations(ctx, pool, database.PostgresMigrations()); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("running migrations: %w", err)
		}
		slog.Debug("Cache: using PostgreSQL")
		return stores{
			cache:     cache.NewPgRepository(pool),
			snapshots: snapshot.NewPgRepository(pool),
			close:     pool.Close,
		}, nil
	}

	db, err := database.OpenSQLite(ctx, cfg.CachePath)
	if err != nil {
		return stores{}, fmt.Errorf("opening cache %s: %w", cfg.CachePath, err)
	}
	if err := database.RunSQLiteMigrations(ctx, db, database.SQLiteMigrations()); err != nil {
		db.Close()
		return stores{}, fmt.Errorf("running migrations: %w", err)
	}
	slog.Debug("Cache: using SQLite", "path", cfg.CachePath)
	return stores{
		cache:     cache.NewSQLiteRepository(db),
		snapshots: snapshot.NewSQLiteRepository(db),
		close:     func() { db.Close() },
	}, nil
}
