package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/docmend/api/schemas"
	"github.com/xkilldash9x/docmend/internal/document"
	"github.com/xkilldash9x/docmend/internal/observability"
	"github.com/xkilldash9x/docmend/internal/watcher"
)

// newWatchCmd creates and configures the `watch` command.
func newWatchCmd() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch [document]",
		Short: "Tails an issue feed and fixes the document as new issues arrive",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("watch.feed_path", cmd.Flags().Lookup("feed")); err != nil {
				return err
			}
			return viper.BindPFlag("watch.debounce", cmd.Flags().Lookup("debounce"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Watch.FeedPath == "" {
				return fmt.Errorf("an issue feed is required; pass --feed or set watch.feed_path")
			}
			reportDir, _ := cmd.Flags().GetString("report-dir")
			docPath := args[0]

			// Fail fast on an unreadable document before tailing starts.
			if _, err := document.Load(docPath); err != nil {
				return err
			}

			batchChan := make(chan []schemas.Issue, 4)
			w, err := watcher.NewWatcher(logger, cfg.Watch, batchChan)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}

			logger.Info("Watching issue feed",
				zap.String("feed", cfg.Watch.FeedPath),
				zap.String("document", docPath))

			for {
				select {
				case <-ctx.Done():
					logger.Info("Watch stopped.")
					return nil
				case issues := <-batchChan:
					if err := handleWatchBatch(cmd, docPath, reportDir, issues); err != nil {
						// One bad batch must not end the watch; log and keep
						// tailing.
						logger.Error("Fix session for feed batch failed", zap.Error(err))
					}
				}
			}
		},
	}

	watchCmd.Flags().String("feed", "", "JSONL issue feed to tail. (Overrides config/env)")
	watchCmd.Flags().Duration("debounce", 0, "Quiet period before a burst of issues becomes one batch. (Overrides config/env)")
	watchCmd.Flags().String("report-dir", "", "Directory for per-session JSON reports. If unset, no reports are written.")

	return watchCmd
}

// handleWatchBatch runs one fix session for a debounced batch of feed issues
// and writes the merged document back in place.
func handleWatchBatch(cmd *cobra.Command, docPath, reportDir string, issues []schemas.Issue) error {
	ctx := cmd.Context()
	logger := observability.GetLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Reload so this session sees the text produced by the previous one.
	doc, err := document.Load(docPath)
	if err != nil {
		return err
	}

	result, err := runFixSession(ctx, logger, cfg, doc, issues, sessionOptions{
		OnProgress: progressPrinter(cmd),
	})
	if err != nil {
		return err
	}

	if err := document.Write(docPath, result.FinalText); err != nil {
		return err
	}

	if reportDir != "" {
		name := fmt.Sprintf("session-%s-%s.json", time.Now().UTC().Format("20060102T150405Z"), result.Report.SessionID)
		if err := result.Report.Write(filepath.Join(reportDir, name)); err != nil {
			return err
		}
	}

	if err := persistSession(ctx, logger, cfg, result.Report); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Session %s: %d/%d fixes generated, %d applied.\n",
		result.Report.SessionID, result.Report.Succeeded, result.Report.Total, len(result.Report.AppliedIDs))
	return nil
}
