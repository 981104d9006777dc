package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/tinkreport/internal/api"
	"github.com/mtlprog/tinkreport/internal/config"
	"github.com/mtlprog/tinkreport/internal/domain"
	"github.com/mtlprog/tinkreport/internal/snapshot"
	"github.com/mtlprog/tinkreport/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "tinkreport",
		Usage: "T-Invest portfolio valuation and tax reports",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Before: func(c *cli.Context) error {
			level := slog.LevelInfo
			if c.Bool("verbose") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "report",
				Usage: "render a workbook per enabled account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Usage: "only this account id"},
					&cli.StringFlag{Name: "date", Usage: "report date, YYYY-MM-DD (default: now)"},
				},
				Action: runReport,
			},
			{
				Name:   "accounts",
				Usage:  "list broker accounts and their report settings",
				Action: runAccounts,
			},
			{
				Name:  "rates",
				Usage: "print central bank rates for a date",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD (default: today)"},
				},
				Action: runRates,
			},
			{
				Name:  "history",
				Usage: "print stored report snapshots of an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Usage: "account id", Required: true},
					&cli.IntFlag{Name: "limit", Value: 30, Usage: "number of snapshots"},
				},
				Action: runHistory,
			},
			{
				Name:  "watch",
				Usage: "keep rates warm, render reports on schedule and serve snapshots until interrupted",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-api", Usage: "do not start the HTTP API"},
				},
				Action: runWatch,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("tinkreport: %v", err)
	}
}

func runReport(c *cli.Context) error {
	date, err := parseDate(c.String("date"))
	if err != nil {
		return err
	}

	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.job.Run(c.Context, date, c.String("account"))
	for _, f := range res.Files {
		fmt.Println(f)
	}
	return err
}

func runAccounts(c *cli.Context) error {
	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	accounts, err := a.report.Accounts(c.Context)
	if err != nil {
		return err
	}
	for _, acc := range accounts {
		s := a.accounts.For(acc.ID)
		fmt.Printf("%s\t%s\t%s\t%s\tparse=%t\t%s\n", acc.ID, acc.Type, acc.Status, acc.Name, s.Parse, s.Name)
	}
	return nil
}

func runRates(c *cli.Context) error {
	date, err := parseDate(c.String("date"))
	if err != nil {
		return err
	}
	if date.IsZero() {
		date = time.Now()
	}

	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	rates, err := a.rates.Rates(c.Context, date)
	if err != nil {
		return err
	}
	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Printf("%s\t%s\n", code, rates[code])
	}
	return nil
}

func runWatch(c *cli.Context) error {
	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	rateWorker := worker.NewRateWorker(a.rates, a.cfg.RateWorkerInterval)
	go rateWorker.Run(c.Context)

	scheduler := worker.NewScheduler()
	if err := scheduler.AddJob(a.cfg.ReportSchedule, worker.NewReportJob(a.job)); err != nil {
		return err
	}

	ctx, stop := context.WithCancel(c.Context)
	defer stop()

	var srv *http.Server
	if !c.Bool("no-api") {
		if a.cfg.AdminAPIKey == "" {
			slog.Warn("ADMIN_API_KEY not set, generate endpoint is unprotected")
		}
		srv = api.NewServer(a.cfg.HTTPPort, a.snapshots, a.job, a.cfg.AdminAPIKey)
		go func() {
			slog.Info("HTTP server listening", "port", a.cfg.HTTPPort)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("HTTP server error", "error", err)
				stop()
			}
		}()
	}

	scheduler.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown error", "error", err)
		}
	}

	slog.Info("Shutdown complete")
	return nil
}

func runHistory(c *cli.Context) error {
	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	list, err := a.snapshots.List(c.Context, c.String("account"), c.Int("limit"))
	if err != nil {
		return err
	}
	for _, s := range list {
		var sum snapshot.Summary
		if err := json.Unmarshal(s.Data, &sum); err != nil {
			return fmt.Errorf("decoding snapshot %d: %w", s.ID, err)
		}
		xirr := "undefined"
		if sum.Statistics.XIRR != nil {
			xirr = fmt.Sprintf("%.2f%%", *sum.Statistics.XIRR*100)
		}
		fmt.Printf("%s\tclean=%s\tprofit=%s\txirr=%s\twarnings=%d\n",
			s.SnapshotDate.Format(time.DateOnly),
			sum.Statistics.CleanPortfolio.StringFixed(2),
			sum.Statistics.Profit.StringFixed(2),
			xirr, len(sum.Warnings))
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	day, err := time.ParseInLocation(time.DateOnly, s, domain.MSK)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", config.ErrInvalidConfig, s, err)
	}
	// end of the trading day, so the day's operations are included
	return day.Add(23*time.Hour + 59*time.Minute), nil
}
