package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"cinefill/internal/catalog"
	"cinefill/internal/logging"
)

// Summary reports the outcome of one enrichment run.
type Summary struct {
	RunID    string
	Provider string
	Selected int
	Updated  int64
	Skipped  int64
	Errored  int64
	// FlushErrors holds store write failures that survived the in-run
	// retry; the affected movies stay incomplete and a later run picks
	// them up again.
	FlushErrors []error
}

// SchedulerOptions tune a batch run.
type SchedulerOptions struct {
	// Concurrency bounds the number of movies resolved in parallel.
	Concurrency int
	// FlushBatchSize bounds how many write sets accumulate before a
	// store flush.
	FlushBatchSize int
}

// Store is the catalog surface the scheduler needs: one upfront selection
// of incomplete movies and batched fill-only writes.
type Store interface {
	ListIncomplete(ctx context.Context) ([]catalog.WorkItem, error)
	MergeBatch(ctx context.Context, updates []catalog.FieldUpdate) error
}

// Scheduler drives batch enrichment: it selects incomplete movies once,
// resolves them under a bounded worker pool, and drains write sets through a
// single writer that flushes in batches.
type Scheduler struct {
	store    Store
	resolver *Resolver
	opts     SchedulerOptions
	logger   *slog.Logger
}

// NewScheduler wires a scheduler. A nil logger disables logging.
func NewScheduler(store Store, resolver *Resolver, opts SchedulerOptions, logger *slog.Logger) (*Scheduler, error) {
	if store == nil {
		return nil, errors.New("enrich: store required")
	}
	if resolver == nil {
		return nil, errors.New("enrich: resolver required")
	}
	if opts.Concurrency <= 0 {
		return nil, errors.New("enrich: concurrency must be positive")
	}
	if opts.FlushBatchSize <= 0 {
		return nil, errors.New("enrich: flush batch size must be positive")
	}
	return &Scheduler{
		store:    store,
		resolver: resolver,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "scheduler"),
	}, nil
}

// Run executes one enrichment pass and reports its summary. The work list is
// read once upfront; a selection or startup failure is fatal, while
// per-movie failures only mark that movie errored. Cancelling ctx stops
// admitting new movies and lets in-flight ones finish.
func (s *Scheduler) Run(ctx context.Context) (*Summary, error) {
	items, err := s.store.ListIncomplete(ctx)
	if err != nil {
		return nil, fmt.Errorf("select incomplete movies: %w", err)
	}

	summary := &Summary{
		RunID:    uuid.NewString(),
		Provider: s.resolver.gateway.Name(),
		Selected: len(items),
	}
	logger := s.logger.With(logging.String(logging.FieldRunID, summary.RunID))
	logger.Info("enrichment run starting",
		logging.Int("selected", summary.Selected),
		logging.Int("concurrency", s.opts.Concurrency),
		logging.String(logging.FieldProvider, summary.Provider))

	if len(items) == 0 {
		logger.Info("catalog already complete")
		return summary, nil
	}

	work := make(chan catalog.WorkItem)
	updates := make(chan catalog.FieldUpdate, s.opts.FlushBatchSize)

	// Feeder: stops admitting new items as soon as ctx is cancelled.
	go func() {
		defer close(work)
		for _, item := range items {
			select {
			case work <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	var workers sync.WaitGroup
	for i := 0; i < s.opts.Concurrency; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for item := range work {
				s.process(ctx, item, summary, updates, logger)
			}
		}()
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.drain(ctx, updates, summary, logger)
	}()

	workers.Wait()
	close(updates)
	<-writerDone

	logger.Info("enrichment run finished",
		logging.Int("selected", summary.Selected),
		logging.Int64("updated", summary.Updated),
		logging.Int64("skipped", summary.Skipped),
		logging.Int64("errored", summary.Errored),
		logging.Int("flush_errors", len(summary.FlushErrors)))
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// process resolves one movie and forwards its write set to the writer.
func (s *Scheduler) process(ctx context.Context, item catalog.WorkItem, summary *Summary, updates chan<- catalog.FieldUpdate, logger *slog.Logger) {
	targetYear := 0
	if item.Year != nil {
		targetYear = *item.Year
	}
	decision, err := s.resolver.Resolve(ctx, item.Title, targetYear)
	if err != nil {
		atomic.AddInt64(&summary.Errored, 1)
		logger.Warn("resolution aborted",
			logging.Int64(logging.FieldMovieID, item.ID),
			logging.Error(err))
		return
	}
	if decision == nil {
		atomic.AddInt64(&summary.Skipped, 1)
		logger.Debug("no match found",
			logging.Int64(logging.FieldMovieID, item.ID),
			logging.String("title", item.Title))
		return
	}

	writes := Merge(item.Existing, decision.Result.Fields)
	if len(writes) == 0 {
		atomic.AddInt64(&summary.Skipped, 1)
		return
	}
	logger.Debug("match accepted",
		logging.Int64(logging.FieldMovieID, item.ID),
		logging.String(logging.FieldPhase, string(decision.Phase)),
		logging.Int("distance", decision.Distance),
		logging.Int("fields", len(writes)))

	select {
	case updates <- catalog.FieldUpdate{ID: item.ID, Fields: writes}:
	case <-ctx.Done():
		atomic.AddInt64(&summary.Errored, 1)
	}
}

// drain is the single writer: it buffers updates and flushes them in
// batches, plus a final flush when the workers finish.
func (s *Scheduler) drain(ctx context.Context, updates <-chan catalog.FieldUpdate, summary *Summary, logger *slog.Logger) {
	batch := make([]catalog.FieldUpdate, 0, s.opts.FlushBatchSize)
	for update := range updates {
		batch = append(batch, update)
		if len(batch) >= s.opts.FlushBatchSize {
			s.flush(ctx, batch, summary, logger)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		s.flush(ctx, batch, summary, logger)
	}
}

// flush commits one batch, retrying a failed commit once before surfacing
// the failure in the summary. The affected fields stay unset either way, so
// the next run retries them.
func (s *Scheduler) flush(ctx context.Context, batch []catalog.FieldUpdate, summary *Summary, logger *slog.Logger) {
	err := s.store.MergeBatch(ctx, batch)
	if err != nil {
		logger.Warn("batch flush failed, retrying",
			logging.Int("batch_size", len(batch)),
			logging.Error(err))
		err = s.store.MergeBatch(ctx, batch)
	}
	if err != nil {
		atomic.AddInt64(&summary.Errored, int64(len(batch)))
		summary.FlushErrors = append(summary.FlushErrors,
			fmt.Errorf("flush %d updates: %w", len(batch), err))
		logger.Error("batch flush failed",
			logging.Int("batch_size", len(batch)),
			logging.Error(err))
		return
	}
	atomic.AddInt64(&summary.Updated, int64(len(batch)))
	logger.Debug("batch flushed", logging.Int("batch_size", len(batch)))
}
