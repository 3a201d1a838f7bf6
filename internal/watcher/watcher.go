// File: internal/watcher/watcher.go
// Description: Issue feed watcher. Tails a JSONL feed written by an external
// analysis pass, decodes one issue per line, and debounces bursts into
// batches for the fix engine.

package watcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hpcloud/tail"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/docmend/api/schemas"
	"github.com/xkilldash9x/docmend/internal/config"
)

// Watcher monitors an issue feed file and emits debounced issue batches.
// The feed is JSONL: every line is one issue object. Lines that fail to
// decode are logged and skipped so a single bad producer write cannot stall
// the feed.
type Watcher struct {
	logger    *zap.Logger
	feedPath  string
	debounce  time.Duration
	batchChan chan<- []schemas.Issue
}

// NewWatcher initializes a watcher for the configured feed path.
func NewWatcher(logger *zap.Logger, cfg config.WatchConfig, batchChan chan<- []schemas.Issue) (*Watcher, error) {
	if cfg.FeedPath == "" {
		return nil, fmt.Errorf("watch.feed_path must be configured")
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = config.DefaultWatchDebounce
	}

	return &Watcher{
		logger:    logger.Named("watcher"),
		feedPath:  cfg.FeedPath,
		debounce:  debounce,
		batchChan: batchChan,
	}, nil
}

// Start begins tailing the feed file. The monitor loop runs in its own
// goroutine until ctx is cancelled or the tailer closes.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("Starting issue feed watcher...", zap.String("feed", w.feedPath))

	t, err := tail.TailFile(w.feedPath, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: 2},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to tail issue feed: %w", err)
	}

	go w.monitorLoop(ctx, t)
	return nil
}

// The core loop that reads feed lines and groups them into batches. A batch
// is flushed when the debounce window passes with no new lines, or when the
// loop shuts down.
func (w *Watcher) monitorLoop(ctx context.Context, t *tail.Tail) {
	defer func() {
		t.Stop()
		t.Cleanup()
	}()

	var pending []schemas.Issue
	timeout := time.NewTimer(w.debounce)
	if !timeout.Stop() {
		<-timeout.C
	}

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := make([]schemas.Issue, len(pending))
		copy(batch, pending)
		pending = nil

		select {
		case w.batchChan <- batch:
			w.logger.Debug("Dispatched issue batch", zap.Int("size", len(batch)))
		case <-ctx.Done():
			w.logger.Warn("Context cancelled while dispatching issue batch", zap.Int("size", len(batch)))
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			w.logger.Info("Stopping issue feed watcher.")
			return

		case line, ok := <-t.Lines:
			if !ok {
				flush()
				w.logger.Info("Issue feed tailer channel closed.")
				return
			}
			if line.Err != nil {
				w.logger.Warn("Error reading from issue feed", zap.Error(line.Err))
				continue
			}

			issue, err := decodeIssueLine(line.Text)
			if err != nil {
				w.logger.Warn("Skipping malformed feed line", zap.Error(err))
				continue
			}
			if issue == nil {
				continue
			}

			pending = append(pending, *issue)
			if !timeout.Stop() {
				select {
				case <-timeout.C:
				default:
				}
			}
			timeout.Reset(w.debounce)

		case <-timeout.C:
			flush()
		}
	}
}

// decodeIssueLine parses one JSONL feed line. Blank lines yield a nil issue
// without an error; issues without an id get a generated one.
func decodeIssueLine(text string) (*schemas.Issue, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	var issue schemas.Issue
	if err := json.Unmarshal([]byte(trimmed), &issue); err != nil {
		return nil, fmt.Errorf("decoding feed line: %w", err)
	}
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	return &issue, nil
}
