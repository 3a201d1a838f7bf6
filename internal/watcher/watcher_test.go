// File: internal/watcher/watcher_test.go
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/docmend/api/schemas"
	"github.com/xkilldash9x/docmend/internal/config"
)

// --- Unit Tests (Line Decoding) ---

func TestDecodeIssueLine(t *testing.T) {
	t.Parallel()

	t.Run("decodes a fixable issue", func(t *testing.T) {
		t.Parallel()
		line := `{"id":"a","kind":"error","label":"Placeholder","fix":{"pattern":"TBD","requires_generation":true}}`
		issue, err := decodeIssueLine(line)
		require.NoError(t, err)
		require.NotNil(t, issue)
		assert.Equal(t, "a", issue.ID)
		assert.True(t, issue.Fixable())
	})

	t.Run("generates an id when missing", func(t *testing.T) {
		t.Parallel()
		issue, err := decodeIssueLine(`{"kind":"info","label":"FYI"}`)
		require.NoError(t, err)
		require.NotNil(t, issue)
		assert.NotEmpty(t, issue.ID)
	})

	t.Run("blank line yields nothing", func(t *testing.T) {
		t.Parallel()
		issue, err := decodeIssueLine("   ")
		require.NoError(t, err)
		assert.Nil(t, issue)
	})

	t.Run("malformed line errors", func(t *testing.T) {
		t.Parallel()
		_, err := decodeIssueLine(`{"kind":`)
		assert.Error(t, err)
	})
}

func TestNewWatcher_RequiresFeedPath(t *testing.T) {
	t.Parallel()
	_, err := NewWatcher(zaptest.NewLogger(t), config.WatchConfig{}, make(chan []schemas.Issue))
	assert.Error(t, err)
}

// --- Integration Tests (Feed Tailing and Batching) ---

type testHarness struct {
	Watcher   *Watcher
	FeedFile  string
	BatchChan chan []schemas.Issue
	feedMutex sync.Mutex
}

func setupWatcherIntegration(t *testing.T, debounce time.Duration) *testHarness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	feedFile := filepath.Join(t.TempDir(), "issues.jsonl")

	// The tail configuration requires the feed file to exist.
	f, err := os.Create(feedFile)
	require.NoError(t, err)
	f.Close()

	batchChan := make(chan []schemas.Issue, 10)
	watcher, err := NewWatcher(logger, config.WatchConfig{
		FeedPath: feedFile,
		Debounce: debounce,
	}, batchChan)
	require.NoError(t, err)

	return &testHarness{
		Watcher:   watcher,
		FeedFile:  feedFile,
		BatchChan: batchChan,
	}
}

func (h *testHarness) writeToFeed(t *testing.T, content string) {
	t.Helper()
	h.feedMutex.Lock()
	defer h.feedMutex.Unlock()

	f, err := os.OpenFile(h.FeedFile, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString(content)
	require.NoError(t, err)
	// Small sleep helps ensure the OS notifies the tailer promptly.
	time.Sleep(10 * time.Millisecond)
}

func TestWatcher_BatchesBurstsTogether(t *testing.T) {
	harness := setupWatcherIntegration(t, 200*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	require.NoError(t, harness.Watcher.Start(ctx))
	time.Sleep(100 * time.Millisecond) // Allow tailer to initialize

	const issueCount = 4
	for i := 0; i < issueCount; i++ {
		harness.writeToFeed(t, fmt.Sprintf(
			`{"id":"issue-%d","kind":"error","label":"Placeholder","fix":{"pattern":"TBD","requires_generation":true}}`+"\n", i))
	}

	select {
	case batch := <-harness.BatchChan:
		require.Len(t, batch, issueCount)
		got := make(map[string]bool, len(batch))
		for _, issue := range batch {
			got[issue.ID] = true
		}
		for i := 0; i < issueCount; i++ {
			assert.True(t, got[fmt.Sprintf("issue-%d", i)], "missing issue-%d", i)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for issue batch")
	}
}

func TestWatcher_SeparateBatchesAfterQuietPeriod(t *testing.T) {
	harness := setupWatcherIntegration(t, 100*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	require.NoError(t, harness.Watcher.Start(ctx))
	time.Sleep(100 * time.Millisecond)

	harness.writeToFeed(t, `{"id":"first","kind":"error"}`+"\n")

	select {
	case batch := <-harness.BatchChan:
		require.Len(t, batch, 1)
		assert.Equal(t, "first", batch[0].ID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for first batch")
	}

	harness.writeToFeed(t, `{"id":"second","kind":"warning"}`+"\n")

	select {
	case batch := <-harness.BatchChan:
		require.Len(t, batch, 1)
		assert.Equal(t, "second", batch[0].ID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for second batch")
	}
}

func TestWatcher_SkipsMalformedLines(t *testing.T) {
	harness := setupWatcherIntegration(t, 100*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	require.NoError(t, harness.Watcher.Start(ctx))
	time.Sleep(100 * time.Millisecond)

	harness.writeToFeed(t, "{not json}\n")
	harness.writeToFeed(t, `{"id":"good","kind":"error"}`+"\n")

	select {
	case batch := <-harness.BatchChan:
		require.Len(t, batch, 1)
		assert.Equal(t, "good", batch[0].ID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for batch")
	}
}
