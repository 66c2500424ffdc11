package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Default schedules
const (
	DefaultRefreshSchedule    = "@every 5m"
	DefaultReclassifySchedule = "0 0 * * *"
)

// BoardJobs is the work the scheduler drives
type BoardJobs interface {
	RefreshAll(ctx context.Context) error
	ReclassifyAll(ctx context.Context) error
}

// Scheduler runs a periodic safety refresh, for shares that drop file
// events, and a reclassification when the calendar day changes.
type Scheduler struct {
	cron   *cron.Cron
	jobs   BoardJobs
	logger *slog.Logger
}

// scheduleParser accepts standard 5-field expressions and descriptors
// such as "@every 5m" or "@midnight".
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule validates a schedule expression
func ParseSchedule(spec string) (cron.Schedule, error) {
	sched, err := scheduleParser.Parse(strings.TrimSpace(spec))
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return sched, nil
}

// NewScheduler creates a scheduler; an empty spec disables that job
func NewScheduler(jobs BoardJobs, refreshSpec, reclassifySpec string, loc *time.Location, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	logger = logger.With(slog.String("component", "scheduler"))

	c := cron.New(
		cron.WithParser(scheduleParser),
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	s := &Scheduler{cron: c, jobs: jobs, logger: logger}

	if err := s.add("refresh", refreshSpec, s.refresh); err != nil {
		return nil, err
	}
	if err := s.add("reclassify", reclassifySpec, s.reclassify); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) add(name, spec string, job func()) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		s.logger.Info("Scheduled job disabled", slog.String("job", name))
		return nil
	}
	if _, err := ParseSchedule(spec); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.logger.Info("Scheduled job registered", slog.String("job", name), slog.String("schedule", spec))
	return nil
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs up to ctx
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out with a job still running")
	}
}

func (s *Scheduler) refresh() {
	if err := s.jobs.RefreshAll(context.Background()); err != nil {
		s.logger.Warn("Scheduled refresh incomplete", slog.String("error", err.Error()))
	}
}

func (s *Scheduler) reclassify() {
	if err := s.jobs.ReclassifyAll(context.Background()); err != nil {
		s.logger.Warn("Scheduled reclassification failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("Board reclassified for the new day")
}
