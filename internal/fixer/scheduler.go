// File: internal/fixer/scheduler.go
// Description: Bounded-concurrency batch scheduler. A fixed pool of workers
// pulls issues from one shared queue, drives each job through the state
// machine, and reports aggregate progress. Job failures stay local; the batch
// never aborts siblings.

package fixer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/docmend/api/schemas"
	"github.com/xkilldash9x/docmend/internal/snippet"
)

// DefaultConcurrency is the policy default for simultaneous generation calls.
const DefaultConcurrency = 3

// BatchConfig tunes one fix session.
type BatchConfig struct {
	// Concurrency bounds the number of simultaneous generation calls.
	// Defaults to DefaultConcurrency when zero; negative values are rejected.
	Concurrency int
	// RatePerSecond throttles generation calls across all workers. Zero
	// disables throttling.
	RatePerSecond float64
	// OnProgress, when set, observes the (completed, total) stream. Calls are
	// serialized and monotonically non-decreasing.
	OnProgress schemas.ProgressFunc
}

// Batch runs the fix jobs of one session. It owns the tracker and keeps the
// original document text: generation always reasons about the unmodified
// document, never a running merge result.
type Batch struct {
	logger    *zap.Logger
	generator schemas.Generator
	cfg       BatchConfig
	limiter   *rate.Limiter

	tracker *Tracker
	issues  []schemas.Issue
	byID    map[string]schemas.Issue
	docText string

	progressMu sync.Mutex
	completed  int
	total      int
}

// NewBatch prepares a session over the given issues and document text. One
// Pending job is registered per eligible issue before any work starts.
func NewBatch(
	logger *zap.Logger,
	generator schemas.Generator,
	issues []schemas.Issue,
	documentText string,
	cfg BatchConfig,
) (*Batch, error) {
	if logger == nil || generator == nil {
		return nil, fmt.Errorf("fixer: cannot initialize batch with nil dependencies")
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Concurrency < 0 {
		return nil, fmt.Errorf("fixer: concurrency must be a positive integer, got %d", cfg.Concurrency)
	}

	b := &Batch{
		logger:    logger.Named("fixer"),
		generator: generator,
		cfg:       cfg,
		tracker:   NewTracker(),
		issues:    issues,
		byID:      make(map[string]schemas.Issue, len(issues)),
		docText:   documentText,
	}
	if cfg.RatePerSecond > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	b.total = b.tracker.Init(issues)
	for _, issue := range issues {
		b.byID[issue.ID] = issue
	}
	return b, nil
}

// Tracker exposes the session's job states for observers and the selection
// surface.
func (b *Batch) Tracker() *Tracker { return b.tracker }

// Total returns the number of eligible jobs in the session.
func (b *Batch) Total() int { return b.total }

// Run drains the queue with min(concurrency, queue length) workers and blocks
// until every worker has exited. Per-job failures are recorded in the tracker
// and never returned here; the only error is the context's, when the session
// is cancelled before the queue drains.
func (b *Batch) Run(ctx context.Context) error {
	queue := make(chan schemas.Issue, b.total)
	for _, issue := range b.issues {
		if issue.Fixable() {
			queue <- issue
		}
	}
	close(queue)

	workers := b.cfg.Concurrency
	if b.total < workers {
		workers = b.total
	}
	if workers == 0 {
		b.reportProgress()
		return nil
	}

	b.logger.Info("Starting fix batch",
		zap.Int("jobs", b.total),
		zap.Int("workers", workers))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		workerID := i + 1
		g.Go(func() error {
			return b.runWorker(gctx, workerID, queue)
		})
	}
	return g.Wait()
}

// runWorker is the loop of one pool worker: dequeue, process, repeat until the
// queue is empty or the session is cancelled.
func (b *Batch) runWorker(ctx context.Context, workerID int, queue <-chan schemas.Issue) error {
	logger := b.logger.With(zap.Int("worker_id", workerID))
	for {
		select {
		case issue, ok := <-queue:
			if !ok {
				logger.Debug("Queue drained, worker exiting")
				return nil
			}
			err := b.processIssue(ctx, issue, false, logger)
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if err == nil {
				b.markCompleted()
			}
		case <-ctx.Done():
			logger.Debug("Session cancelled, worker exiting")
			return ctx.Err()
		}
	}
}

// Retry re-runs a single Failed (or Pending) job outside the main batch,
// through the identical state-machine and context-extraction path. The
// tracker rejects the attempt if the job is already in flight.
func (b *Batch) Retry(ctx context.Context, issueID string) error {
	return b.rerun(ctx, issueID, false)
}

// Regenerate re-runs a Succeeded job, atomically overwriting the prior
// suggestion on completion.
func (b *Batch) Regenerate(ctx context.Context, issueID string) error {
	return b.rerun(ctx, issueID, true)
}

func (b *Batch) rerun(ctx context.Context, issueID string, regenerate bool) error {
	issue, ok := b.byID[issueID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, issueID)
	}
	if !issue.Fixable() {
		return fmt.Errorf("fixer: issue %s has no usable fix pattern", issueID)
	}
	return b.processIssue(ctx, issue, regenerate, b.logger)
}

// processIssue drives one generation attempt end to end. The context is
// checked again before the final state commit so that a call completing after
// cancellation cannot mutate state the caller no longer observes.
func (b *Batch) processIssue(ctx context.Context, issue schemas.Issue, regenerate bool, logger *zap.Logger) error {
	generation, err := b.tracker.BeginAttempt(issue.ID, regenerate)
	if err != nil {
		return err
	}

	action := schemas.ActionForIssue(issue)
	window := snippet.Extract(b.docText, issue.Fix.Pattern, issue.Fix.OccurrenceIndex)

	logger.Debug("Dispatching generation",
		zap.String("issue_id", issue.ID),
		zap.String("action", string(action)))

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			// Cancelled while throttled; nothing was dispatched, leave the
			// job retriable.
			b.tracker.Abandon(issue.ID, generation, "generation cancelled before dispatch")
			return err
		}
	}

	result, genErr := b.generator.Generate(ctx, schemas.GenerationRequest{
		Action:      action,
		Target:      issue.Fix.Pattern,
		Context:     window,
		SectionHint: issue.Section,
	})

	if ctx.Err() != nil {
		// Discard the outcome entirely: the session was abandoned and no
		// observer remains for this state.
		logger.Debug("Discarding stale generation result", zap.String("issue_id", issue.ID))
		return ctx.Err()
	}

	switch {
	case genErr != nil:
		b.tracker.CommitFailure(issue.ID, generation, genErr.Error())
		logger.Warn("Generation failed",
			zap.String("issue_id", issue.ID),
			zap.Error(genErr))
	case strings.TrimSpace(result) == "":
		b.tracker.CommitFailure(issue.ID, generation, "generator returned an empty replacement")
		logger.Warn("Generation returned empty result", zap.String("issue_id", issue.ID))
	default:
		b.tracker.CommitSuccess(issue.ID, generation, result)
		logger.Debug("Generation succeeded", zap.String("issue_id", issue.ID))
	}
	return nil
}

// markCompleted bumps the shared completed counter and emits one progress
// point. The mutex serializes emissions so the stream stays monotonic.
func (b *Batch) markCompleted() {
	b.progressMu.Lock()
	b.completed++
	b.progressMu.Unlock()
	b.reportProgress()
}

func (b *Batch) reportProgress() {
	if b.cfg.OnProgress == nil {
		return
	}
	b.progressMu.Lock()
	p := schemas.Progress{Completed: b.completed, Total: b.total}
	b.cfg.OnProgress(p)
	b.progressMu.Unlock()
}
