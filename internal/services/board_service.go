package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"deliveryboard/internal/classification"
	"deliveryboard/internal/confirmations"
	"deliveryboard/internal/dataprocessing"
	"deliveryboard/internal/files"
	"deliveryboard/pkg/contracts/domain"
)

// Refresh outcomes reported to BoardMetrics
const (
	OutcomeOK                = "ok"
	OutcomeSourceUnavailable = "source_unavailable"
	OutcomeParseError        = "parse_error"
	OutcomeStoreError        = "store_error"
)

// BoardConfig configures where reports are read from and how
type BoardConfig struct {
	Dirs         map[domain.RecordKind]string
	Encoding     string
	MaxRecords   int
	MaxFileBytes int64
	// CompactColumns drops empty cells in fixed-offset reports
	CompactColumns bool
	Location       *time.Location
}

// BoardNotifier is told about every publish and failed refresh
type BoardNotifier interface {
	BoardUpdated(snapshot *domain.ReportSnapshot)
	RefreshFailed(kind domain.RecordKind, err error)
}

// BoardMetrics records refresh and confirmation activity
type BoardMetrics interface {
	RefreshCompleted(ctx context.Context, kind domain.RecordKind, outcome string, duration time.Duration)
	ConfirmationRecorded(ctx context.Context, kind domain.RecordKind, arrived bool)
}

// BoardOption customizes a BoardService
type BoardOption func(*BoardService)

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) BoardOption {
	return func(s *BoardService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) BoardOption {
	return func(s *BoardService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNotifier registers a publish listener
func WithNotifier(n BoardNotifier) BoardOption {
	return func(s *BoardService) { s.notifier = n }
}

// WithMetrics registers a metrics recorder
func WithMetrics(m BoardMetrics) BoardOption {
	return func(s *BoardService) { s.metrics = m }
}

// WithDiscovery replaces the default file discovery
func WithDiscovery(d *files.Discovery) BoardOption {
	return func(s *BoardService) {
		if d != nil {
			s.discovery = d
		}
	}
}

// BoardService keeps the published board current
type BoardService struct {
	cfg       BoardConfig
	state     *BoardState
	store     confirmations.Store
	discovery *files.Discovery
	parsers   map[domain.RecordKind]*dataprocessing.Parser
	locks     map[domain.RecordKind]*sync.Mutex

	now      func() time.Time
	notifier BoardNotifier
	metrics  BoardMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewBoardService creates a board service over store
func NewBoardService(cfg BoardConfig, store confirmations.Store, opts ...BoardOption) (*BoardService, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: confirmation store is required", ErrInvalidInput)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	s := &BoardService{
		cfg:       cfg,
		state:     NewBoardState(),
		store:     store,
		discovery: files.NewDiscovery(""),
		parsers:   make(map[domain.RecordKind]*dataprocessing.Parser, len(domain.Kinds)),
		locks:     make(map[domain.RecordKind]*sync.Mutex, len(domain.Kinds)),
		now:       time.Now,
		tracer:    otel.Tracer("deliveryboard/services"),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "board_service"))

	for _, kind := range domain.Kinds {
		p, err := dataprocessing.NewParserForKind(kind, dataprocessing.Options{
			Encoding:       cfg.Encoding,
			MaxRecords:     cfg.MaxRecords,
			Now:            s.now,
			Location:       cfg.Location,
			CompactColumns: cfg.CompactColumns,
			Logger:         s.logger,
		})
		if err != nil {
			return nil, err
		}
		s.parsers[kind] = p
		s.locks[kind] = &sync.Mutex{}
	}

	s.logger.Info("BoardService initialized",
		slog.String("reservations_dir", cfg.Dirs[domain.KindReservation]),
		slog.String("requisitions_dir", cfg.Dirs[domain.KindRequisition]),
		slog.Int("max_records", cfg.MaxRecords),
		slog.String("timezone", cfg.Location.String()))

	return s, nil
}

// State exposes the published board
func (s *BoardService) State() *BoardState {
	return s.state
}

// Today returns the current calendar day in the board's time zone
func (s *BoardService) Today() domain.Date {
	return classification.Today(s.now(), s.cfg.Location)
}

// Snapshot returns the published snapshot of kind, nil when none
func (s *BoardService) Snapshot(kind domain.RecordKind) *domain.ReportSnapshot {
	return s.state.Load(kind)
}

// Result returns the published buckets of kind. Before the first successful
// refresh the buckets are empty.
func (s *BoardService) Result(kind domain.RecordKind) domain.ClassificationResult {
	if snap := s.state.Load(kind); snap != nil {
		return snap.Result
	}
	return domain.EmptyResult()
}

// Refresh re-reads the newest report of kind and publishes a new snapshot.
// On any failure the previous snapshot stays published and the error is
// returned for logging; callers may ignore it.
func (s *BoardService) Refresh(ctx context.Context, kind domain.RecordKind) (snap *domain.ReportSnapshot, err error) {
	lock, ok := s.locks[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	lock.Lock()
	defer lock.Unlock()

	ctx, span := s.tracer.Start(ctx, "board.refresh", trace.WithAttributes(attribute.String("kind", string(kind))))
	defer span.End()

	start := time.Now()
	outcome := OutcomeOK
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRefreshPanicked, r)
			outcome = OutcomeParseError
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.WarnContext(ctx, "Refresh failed, keeping previous board",
				slog.String("kind", string(kind)),
				slog.String("outcome", outcome),
				slog.String("error", err.Error()))
			if s.notifier != nil {
				s.notifier.RefreshFailed(kind, err)
			}
		}
		if s.metrics != nil {
			s.metrics.RefreshCompleted(ctx, kind, outcome, time.Since(start))
		}
	}()

	file, err := s.discovery.LatestFile(s.cfg.Dirs[kind])
	if err != nil {
		outcome = OutcomeSourceUnavailable
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	span.SetAttributes(attribute.String("file", file.Name))

	parsed, err := s.parsers[kind].ParseFile(file.Path, s.cfg.MaxFileBytes)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrHeaderNotFound) || errors.Is(err, dataprocessing.ErrFileTooLarge) {
			outcome = OutcomeParseError
			return nil, fmt.Errorf("%w: %s: %v", ErrParseFailed, file.Name, err)
		}
		outcome = OutcomeSourceUnavailable
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	confirmed, err := s.store.LoadAll(ctx)
	if err != nil {
		outcome = OutcomeStoreError
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	now := s.now()
	today := classification.Today(now, s.cfg.Location)
	snap = &domain.ReportSnapshot{
		Kind:        kind,
		Result:      classification.Classify(parsed.Records, confirmed, today),
		Records:     parsed.Records,
		Source:      file.Source(),
		Today:       today,
		RefreshedAt: now,
	}
	s.publish(ctx, snap)

	s.logger.InfoContext(ctx, "Board refreshed",
		slog.String("kind", string(kind)),
		slog.String("file", file.Name),
		slog.Int("records", len(parsed.Records)),
		slog.Int("dropped_lines", parsed.Stats.Dropped),
		slog.Int("duplicates", parsed.Stats.Duplicates),
		slog.Int("truncated", parsed.Stats.Truncated),
		slog.Duration("duration", time.Since(start)))
	return snap, nil
}

// RefreshAll refreshes every kind concurrently and returns the first error
func (s *BoardService) RefreshAll(ctx context.Context) error {
	var g errgroup.Group
	for _, kind := range domain.Kinds {
		g.Go(func() error {
			_, err := s.Refresh(ctx, kind)
			return err
		})
	}
	return g.Wait()
}

// Reclassify re-applies classification to the records of the current
// snapshot of kind with fresh confirmations and today's date. The source
// file is not read again.
func (s *BoardService) Reclassify(ctx context.Context, kind domain.RecordKind) (*domain.ReportSnapshot, error) {
	lock, ok := s.locks[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	lock.Lock()
	defer lock.Unlock()

	ctx, span := s.tracer.Start(ctx, "board.reclassify", trace.WithAttributes(attribute.String("kind", string(kind))))
	defer span.End()

	current := s.state.Load(kind)
	if current == nil {
		return nil, ErrNoSnapshot
	}

	confirmed, err := s.store.LoadAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	now := s.now()
	today := classification.Today(now, s.cfg.Location)
	snap := &domain.ReportSnapshot{
		Kind:        kind,
		Result:      classification.Classify(current.Records, confirmed, today),
		Records:     current.Records,
		Source:      current.Source,
		Today:       today,
		RefreshedAt: now,
	}
	s.publish(ctx, snap)
	return snap, nil
}

// ReclassifyAll reclassifies every published kind
func (s *BoardService) ReclassifyAll(ctx context.Context) error {
	var errs []error
	for _, kind := range domain.Kinds {
		if _, err := s.Reclassify(ctx, kind); err != nil && !errors.Is(err, ErrNoSnapshot) {
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}

// Confirm records whether a record arrived and republishes its board.
// A store failure is returned and nothing is republished. Once the answer is
// stored Confirm succeeds; a board that could not be reclassified is left as
// is and a nil snapshot is returned.
func (s *BoardService) Confirm(ctx context.Context, entry domain.ConfirmationEntry) (*domain.ReportSnapshot, error) {
	if _, ok := s.locks[entry.Kind]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, entry.Kind)
	}
	if entry.RecordID == "" {
		return nil, fmt.Errorf("%w: record id is required", ErrInvalidInput)
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = s.now().UTC()
	}

	if err := s.store.Upsert(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "Confirmation not saved",
			slog.String("kind", string(entry.Kind)),
			slog.String("id", entry.RecordID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrConfirmationNotSaved, err)
	}
	if s.metrics != nil {
		s.metrics.ConfirmationRecorded(ctx, entry.Kind, entry.Arrived)
	}
	s.logger.InfoContext(ctx, "Confirmation recorded",
		slog.String("kind", string(entry.Kind)),
		slog.String("id", entry.RecordID),
		slog.Bool("arrived", entry.Arrived))

	snap, err := s.Reclassify(ctx, entry.Kind)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			s.logger.WarnContext(ctx, "Confirmation stored but board not reclassified",
				slog.String("kind", string(entry.Kind)),
				slog.String("id", entry.RecordID),
				slog.String("error", err.Error()))
		}
		return nil, nil
	}
	return snap, nil
}

// Confirmations lists every stored confirmation, most recent first
func (s *BoardService) Confirmations(ctx context.Context) ([]domain.ConfirmationEntry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return entries, nil
}

func (s *BoardService) publish(ctx context.Context, snap *domain.ReportSnapshot) {
	s.state.Publish(snap)
	counts := snap.Result.Counts()
	s.logger.DebugContext(ctx, "Board published",
		slog.String("kind", string(snap.Kind)),
		slog.String("today", snap.Today.String()),
		slog.Int("on_track", counts[domain.BucketOnTrack]),
		slog.Int("delivered", counts[domain.BucketDelivered]),
		slog.Int("late", counts[domain.BucketLate]))
	if s.notifier != nil {
		s.notifier.BoardUpdated(snap)
	}
}
