/*
main.go - Application entry point

PURPOSE:
  Command-line entry point of the coverage engine. Serves the HTTP API,
  prints coverage reports and portfolio alerts, and loads demo scenarios.

COMMANDS:
  serve       Start the HTTP server and the alert scanner
  report      Print the coverage report of one rental as JSON
  alerts      Print portfolio alerts as JSON
  scenarios   List demo scenarios, or load one into the database

STARTUP SEQUENCE (serve):
  1. Load configuration (defaults, config.yaml, COVERAGE_* env, flags)
  2. Build the zap logger
  3. Open the SQLite store
  4. Create API handler, metrics and alert scanner
  5. Start server with graceful shutdown

GLOBAL FLAGS:
  --config      Config file path (default: ./config.yaml when present)
  --db          SQLite database path, ":memory:" for in-memory
  --log-level   debug, info, warn, error
  --log-format  json or console

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the alert scanner
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  ./server serve --db ./data/coverage.db --port 3000
  ./server scenarios load gap-detection --db ./data/coverage.db
  ./server report --rental rental-gap --as-of 2024-03-01 --db ./data/coverage.db

SEE ALSO:
  - config/config.go: Configuration keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/warp/coverage-engine/api"
	"github.com/warp/coverage-engine/config"
	"github.com/warp/coverage-engine/coverage"
	"github.com/warp/coverage-engine/logger"
	"github.com/warp/coverage-engine/store/sqlite"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles what every command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *sqlite.Store
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

func rootCmd() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:           "server",
		Short:         "Rental coverage and financial reconciliation engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./config.yaml)")
	flags.String("db", "", "SQLite database path")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: json or console")
	_ = v.BindPFlag("database.path", flags.Lookup("db"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(serveCmd(v))
	root.AddCommand(reportCmd(v))
	root.AddCommand(alertsCmd(v))
	root.AddCommand(scenariosCmd(v))
	return root
}

// setup loads configuration and opens the store.
func setup(cmd *cobra.Command, v *viper.Viper) (*app, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	return &app{cfg: cfg, logger: log, store: store}, nil
}

// =============================================================================
// SERVE
// =============================================================================

func serveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, v)
			if err != nil {
				return err
			}
			defer a.close()
			return serve(a)
		},
	}
	cmd.Flags().Int("port", 0, "HTTP server port")
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}

func serve(a *app) error {
	metrics := api.NewMetrics()
	handler := api.NewHandler(a.store, a.logger, metrics)

	scanner := api.NewAlertScanner(handler.Reports, metrics, a.logger)
	scanner.Spec = a.cfg.Scheduler.AlertScan
	scanner.Enabled = a.cfg.Scheduler.Enabled
	if err := scanner.Start(); err != nil {
		return err
	}
	defer scanner.Stop()
	if scanner.Enabled {
		handler.Scanner = scanner
	}

	server := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      api.NewRouter(handler, a.cfg.CORS.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("database", a.cfg.Database.Path),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	a.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.logger.Info("server stopped")
	return nil
}

// =============================================================================
// REPORT AND ALERTS
// =============================================================================

func reportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the coverage report of a rental",
		RunE: func(cmd *cobra.Command, args []string) error {
			rentalID, _ := cmd.Flags().GetString("rental")
			asOf, err := asOfFlag(cmd)
			if err != nil {
				return err
			}

			a, err := setup(cmd, v)
			if err != nil {
				return err
			}
			defer a.close()

			svc := coverage.NewReportService(a.store, a.store, a.logger)
			report, err := svc.Report(cmd.Context(), coverage.RentalID(rentalID), asOf)
			if err != nil {
				return err
			}
			return printJSON(cmd, api.NewReportDTO(report))
		},
	}
	cmd.Flags().String("rental", "", "rental ID")
	cmd.Flags().String("as-of", "", "report date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("rental")
	return cmd
}

func alertsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Print alerts across all rentals",
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf, err := asOfFlag(cmd)
			if err != nil {
				return err
			}

			a, err := setup(cmd, v)
			if err != nil {
				return err
			}
			defer a.close()

			svc := coverage.NewReportService(a.store, a.store, a.logger)
			alerts, err := svc.PortfolioAlerts(cmd.Context(), asOf)
			if err != nil {
				return err
			}
			return printJSON(cmd, api.NewRentalAlertDTOs(alerts))
		},
	}
	cmd.Flags().String("as-of", "", "alert date YYYY-MM-DD (default today)")
	return cmd
}

func asOfFlag(cmd *cobra.Command) (coverage.Date, error) {
	raw, _ := cmd.Flags().GetString("as-of")
	if raw == "" {
		return coverage.DateOf(time.Now().UTC()), nil
	}
	d, err := coverage.ParseDate(raw)
	if err != nil {
		return coverage.Date{}, fmt.Errorf("--as-of: %w", err)
	}
	return d, nil
}

func printJSON(cmd *cobra.Command, data any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func scenariosCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List or load demo scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range api.Scenarios() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", s.ID, s.Description)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "load <scenario-id>",
		Short: "Reset the database and load a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, v)
			if err != nil {
				return err
			}
			defer a.close()

			handler := api.NewHandler(a.store, a.logger, nil)
			if err := handler.ApplyScenario(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("load scenario %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %s into %s\n", args[0], a.cfg.Database.Path)
			return nil
		},
	})
	return cmd
}
