// Package jobs runs the periodic back-office housekeeping: overdue installments and travel reminders.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/platform/metrics"
)

// ReminderWindow is how far ahead departures are announced.
const ReminderWindow = 2 * 24 * time.Hour

const (
	jobOverdue = "overdue_installments"
	jobTravel  = "travel_reminders"
)

type overdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) ([]domain.Installment, error)
}

type departureLister interface {
	UpcomingDepartures(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
}

type notifier interface {
	Notify(ctx context.Context, n domain.Notification) (bool, error)
}

// Runner holds the job bodies. They are safe to run repeatedly: notifications are deduplicated per entity.
type Runner struct {
	subscriptions overdueMarker
	bookings      departureLister
	notifications notifier
	logger        *slog.Logger
	now           func() time.Time
}

// NewRunner creates a Runner. A nil logger falls back to slog.Default().
func NewRunner(subscriptions overdueMarker, bookings departureLister, notifications notifier, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		subscriptions: subscriptions,
		bookings:      bookings,
		notifications: notifications,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// MarkOverdueInstallments flags past-due installments and notifies once per installment.
// It returns the number of notifications created.
func (r *Runner) MarkOverdueInstallments(ctx context.Context) (int, error) {
	now := r.now()
	overdue, err := r.subscriptions.MarkOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}

	created := 0
	var errs []error
	for _, inst := range overdue {
		ok, err := r.notifications.Notify(ctx, domain.Notification{
			Kind:  domain.NotificationInstallmentOverdue,
			Title: "Installment overdue",
			Body: fmt.Sprintf("Installment #%d of %s was due on %s.",
				inst.Sequence, inst.Amount.StringFixed(2), inst.DueDate.Format(time.DateOnly)),
			EntityType: domain.EntityInstallment,
			EntityID:   inst.InstallmentID,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			created++
		}
	}
	return created, errors.Join(errs...)
}

// RemindUpcomingTravel notifies about live bookings departing within ReminderWindow.
func (r *Runner) RemindUpcomingTravel(ctx context.Context) (int, error) {
	today := domain.DateOnly(r.now())
	bookings, err := r.bookings.UpcomingDepartures(ctx, today, today.Add(ReminderWindow))
	if err != nil {
		return 0, fmt.Errorf("list departures: %w", err)
	}

	created := 0
	var errs []error
	for _, b := range bookings {
		ok, err := r.notifications.Notify(ctx, domain.Notification{
			Kind:       domain.NotificationTravelUpcoming,
			Title:      "Upcoming departure",
			Body:       departureBody(b),
			EntityType: domain.EntityBooking,
			EntityID:   b.BookingID,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			created++
		}
	}
	return created, errors.Join(errs...)
}

func departureBody(b domain.Booking) string {
	names := make([]string, 0, len(b.Passengers))
	for _, p := range b.Passengers {
		names = append(names, p.Name)
	}
	who := b.ClientName
	if len(names) > 0 {
		who = strings.Join(names, ", ")
	}
	body := fmt.Sprintf("%s travel on %s", who, b.TravelDate.Format(time.DateOnly))
	if b.Route != "" {
		body += " (" + b.Route + ")"
	}
	if b.Reference != "" {
		body += ", ref " + b.Reference
	}
	return body + "."
}

// RunAll runs every job once, recording metrics for each.
func (r *Runner) RunAll(ctx context.Context) error {
	return errors.Join(
		r.run(ctx, jobOverdue, r.MarkOverdueInstallments),
		r.run(ctx, jobTravel, r.RemindUpcomingTravel),
	)
}

func (r *Runner) run(ctx context.Context, name string, fn func(context.Context) (int, error)) error {
	start := time.Now()
	n, err := fn(ctx)
	metrics.RecordJobRun(name, time.Since(start), err == nil)
	if err != nil {
		r.logger.ErrorContext(ctx, "Job failed", slog.String("job", name), slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", name, err)
	}
	r.logger.InfoContext(ctx, "Job finished",
		slog.String("job", name),
		slog.Int("notifications", n),
		slog.Duration("took", time.Since(start)))
	return nil
}

// Scheduler triggers Runner.RunAll on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler validates spec (standard 5-field or descriptors such as @daily) and registers the jobs.
func NewScheduler(runner *Runner, spec string, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{runner: runner, logger: logger, ctx: ctx, cancel: cancel}

	cl := cronLogger{logger: logger}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(spec, func() { _ = s.runner.RunAll(s.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid job schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("Job scheduler started", slog.Int("entries", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Job scheduler did not stop in time")
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
