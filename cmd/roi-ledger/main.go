// Package main provides the roi-ledger command line and API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/roi-ledger/internal/api"
	"github.com/yourusername/roi-ledger/internal/config"
	"github.com/yourusername/roi-ledger/internal/health"
	"github.com/yourusername/roi-ledger/internal/normalize"
	"github.com/yourusername/roi-ledger/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(serveCmd, importCmd, reportsCmd, pendingCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:           "roi-ledger",
	Short:         "Sports betting ROI ledger",
	Long:          `Tracks pending bets and weekly ROI reports, grading bets from uploaded PDF reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, configFile)
		if err != nil {
			return err
		}
		defer a.Close()
		return serve(ctx, a)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <pdf>",
	Short: "Import a PDF report and grade matching pending bets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pdf, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read report: %w", err)
		}

		a, err := newApp(cmd.Context(), configFile)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.ingestion.Ingest(cmd.Context(), filepath.Base(args[0]), pdf)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List imported reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), configFile)
		if err != nil {
			return err
		}
		defer a.Close()

		reports, err := a.bets.ListReports(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tLABEL\tWAGERED\tNET\tROI")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				normalize.FormatDate(r.ReportDate), r.Label,
				normalize.FormatCurrency(r.TotalWagered), normalize.FormatCurrency(r.NetProfit),
				normalize.FormatPercent(r.ROIPercent))
		}
		return w.Flush()
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List pending bets",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), configFile)
		if err != nil {
			return err
		}
		defer a.Close()

		bets, err := a.bets.List(cmd.Context(), "pending")
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEVENT\tTITLE\tSTAKE\tODDS")
		for _, b := range bets {
			odds := normalize.Placeholder
			if b.Odds != nil {
				odds = *b.Odds
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				b.ID, normalize.FormatDate(b.EventDate), b.Title, normalize.FormatCurrency(b.Stake), odds)
		}
		return w.Flush()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "roi-ledger %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func serve(ctx context.Context, a *app) error {
	cfg := a.cfg

	checker := health.NewChecker(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      a.logger,
		Checks:      map[string]health.Pinger{"store": a.store},
	})

	deps := api.Deps{
		Ingestion: a.ingestion,
		Bets:      a.bets,
		Dashboard: a.dashboard,
		Health:    checker,
		Metrics:   cfg.Metrics,
		Logger:    a.logger,
	}
	if a.hub != nil {
		go a.hub.Run(ctx)
		deps.Websocket = a.hub
	}

	if cfg.Dashboard.RefreshCron != "" {
		sched := scheduler.NewScheduler(a.logger)
		if err := sched.ScheduleDashboardRefresh(cfg.Dashboard.RefreshCron, a.dashboard); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				a.logger.WithError(err).Warn("Scheduler did not stop cleanly")
			}
		}()
	}

	a.logger.WithFields(logrus.Fields{
		"environment":  cfg.App.Environment,
		"store_driver": cfg.Store.Driver,
		"extraction":   a.ingestion.Ready(),
		"version":      Version,
	}).Info("ROI ledger starting")

	checker.SetReady(true)
	return api.NewServer(cfg.Server, deps).Start(ctx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// loadConfig reads, overlays secrets and validates the configuration
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := config.LoadAndValidate(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
