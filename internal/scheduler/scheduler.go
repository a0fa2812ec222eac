// Package scheduler drives the daily billing jobs. Shortly after civil
// midnight in the billing time zone it closes statements whose closing day
// has arrived, then settles statements that fall due. Both jobs are
// idempotent, so a missed or repeated run is harmless.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/pocketfolio/pocketfolio/internal/core/ports/services"
	"github.com/pocketfolio/pocketfolio/internal/middleware"
)

// runOffset keeps the daily run clear of midnight clock skew.
const runOffset = 10 * time.Minute

// Scheduler runs the billing jobs once per civil day.
type Scheduler struct {
	billing  portssvc.BillingSvcFacade
	location *time.Location
	logger   *slog.Logger
}

func New(billing portssvc.BillingSvcFacade, location *time.Location, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		billing:  billing,
		location: location,
		logger:   logger,
	}
}

// Start launches the daily loop. It returns immediately; the loop stops when
// ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	for {
		next := NextRunAfter(time.Now().In(s.location), runOffset)
		s.logger.Info("Next billing run scheduled", slog.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Billing scheduler stopped")
			return
		case <-timer.C:
		}

		s.RunOnce(ctx, time.Now().In(s.location))
	}
}

// RunOnce executes the close and autopay jobs for the civil date of the given
// instant. Job errors are logged; individual failures are already isolated
// inside the billing service.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) {
	y, m, d := now.In(s.location).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	runLogger := s.logger.With(slog.String("billing_date", today.Format("2006-01-02")))
	jobCtx := middleware.WithLogger(ctx, runLogger)

	runLogger.Info("Running daily statement close")
	if err := s.billing.AutoCloseForDay(jobCtx, today); err != nil {
		runLogger.Error("Daily statement close finished with errors", slog.String("error", err.Error()))
	}

	runLogger.Info("Running autopay for due statements")
	if err := s.billing.AutopayDueStatements(jobCtx, today); err != nil {
		runLogger.Error("Autopay run finished with errors", slog.String("error", err.Error()))
	}
}

// NextRunAfter returns the next scheduled run instant strictly after now:
// today's midnight-plus-offset if that is still ahead, otherwise tomorrow's.
func NextRunAfter(now time.Time, offset time.Duration) time.Time {
	y, m, d := now.Date()
	todayRun := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).Add(offset)
	if todayRun.After(now) {
		return todayRun
	}
	return todayRun.AddDate(0, 0, 1)
}
