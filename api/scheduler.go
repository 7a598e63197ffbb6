/*
scheduler.go - Periodic portfolio alert scan

PURPOSE:
  Runs the alert scheduler across every rental on a cron schedule, keeps
  the latest result for GET /api/alerts/latest and logs critical alerts so
  they reach whoever watches the logs.

DESIGN:
  - robfig/cron drives the scan in its own goroutine, in UTC, with a
    seconds field in the cron expression ("0 0 6 * * *" = every day at 06:00)
  - One scan runs immediately on Start
  - The as_of date of a scan is the current UTC day, matching the cron location
  - Rentals that fail validation are skipped by ReportService

CONFIGURATION:
  - Spec: cron expression with seconds (default: "0 0 6 * * *")
  - Enabled: whether the scanner starts (default: true)

USAGE:
  scanner := NewAlertScanner(handler.Reports, metrics, logger)
  if err := scanner.Start(); err != nil { ... }
  // ... later
  scanner.Stop()

SEE ALSO:
  - coverage/service.go: PortfolioAlerts
  - handlers.go: ListAlerts (on-demand scan for any as_of)
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/warp/coverage-engine/coverage"
)

// DefaultAlertScanSpec runs the scan every day at 06:00 UTC.
const DefaultAlertScanSpec = "0 0 6 * * *"

// ScanResult is the outcome of one portfolio scan.
type ScanResult struct {
	AsOf   coverage.Date
	RanAt  time.Time
	Alerts []coverage.RentalAlert
}

// AlertScanner periodically scans the portfolio for alerts.
type AlertScanner struct {
	Reports *coverage.ReportService
	Metrics *Metrics
	Logger  *zap.Logger
	Spec    string
	Enabled bool
	Now     func() time.Time

	cron *cron.Cron

	mu     sync.RWMutex
	latest *ScanResult
}

// NewAlertScanner creates a scanner with the default daily schedule.
func NewAlertScanner(reports *coverage.ReportService, metrics *Metrics, logger *zap.Logger) *AlertScanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &AlertScanner{
		Reports: reports,
		Metrics: metrics,
		Logger:  logger.Named("alert_scanner"),
		Spec:    DefaultAlertScanSpec,
		Enabled: true,
		Now:     time.Now,
	}
}

// Start registers the scan with cron and runs a first scan.
func (s *AlertScanner) Start() error {
	if !s.Enabled {
		s.Logger.Info("disabled, not starting")
		return nil
	}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)
	if _, err := c.AddFunc(s.Spec, func() { s.Scan(context.Background()) }); err != nil {
		return fmt.Errorf("register alert scan %q: %w", s.Spec, err)
	}

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()

	s.Scan(context.Background())
	c.Start()

	s.Logger.Info("started", zap.String("spec", s.Spec))
	return nil
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *AlertScanner) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.Logger.Info("stopped")
}

// Scan runs one portfolio scan and stores its result.
func (s *AlertScanner) Scan(ctx context.Context) (ScanResult, error) {
	started := s.Now()
	asOf := coverage.DateOf(started.UTC())

	alerts, err := s.Reports.PortfolioAlerts(ctx, asOf)
	s.Metrics.observeScan(alerts, time.Since(started).Seconds(), err)
	if err != nil {
		s.Logger.Error("scan failed", zap.String("as_of", asOf.String()), zap.Error(err))
		return ScanResult{}, err
	}

	result := ScanResult{AsOf: asOf, RanAt: started, Alerts: alerts}
	s.mu.Lock()
	s.latest = &result
	s.mu.Unlock()

	critical := 0
	for _, a := range alerts {
		if a.Priority != coverage.PriorityCritical {
			continue
		}
		critical++
		s.Logger.Warn("critical alert",
			zap.String("rental_id", string(a.RentalID)),
			zap.String("kind", string(a.Kind)),
			zap.String("date", a.Date.String()),
			zap.Int("days_until", a.DaysUntil),
			zap.String("message", a.Message),
		)
	}

	s.Logger.Info("scan completed",
		zap.String("as_of", asOf.String()),
		zap.Int("alerts", len(alerts)),
		zap.Int("critical", critical),
	)
	return result, nil
}

// Latest returns the most recent successful scan.
func (s *AlertScanner) Latest() (ScanResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return ScanResult{}, false
	}
	return *s.latest, true
}

// LatestScanDTO is the response of GET /api/alerts/latest.
type LatestScanDTO struct {
	AsOf   string     `json:"as_of"`
	RanAt  time.Time  `json:"ran_at"`
	Alerts []AlertDTO `json:"alerts"`
}

// GetLatestScan returns the last scheduled scan.
func (h *Handler) GetLatestScan(w http.ResponseWriter, r *http.Request) {
	if h.Scanner == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Alert scanner is not running", Code: "NOT_FOUND"})
		return
	}
	result, ok := h.Scanner.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "No scan has completed yet", Code: "NOT_FOUND"})
		return
	}
	writeJSON(w, http.StatusOK, LatestScanDTO{
		AsOf:   result.AsOf.String(),
		RanAt:  result.RanAt,
		Alerts: NewRentalAlertDTOs(result.Alerts),
	})
}
