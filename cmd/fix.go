package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/docmend/api/schemas"
	"github.com/xkilldash9x/docmend/internal/config"
	"github.com/xkilldash9x/docmend/internal/document"
	"github.com/xkilldash9x/docmend/internal/fixer"
	"github.com/xkilldash9x/docmend/internal/llmclient"
	"github.com/xkilldash9x/docmend/internal/observability"
	"github.com/xkilldash9x/docmend/internal/reporting"
	"github.com/xkilldash9x/docmend/internal/store"
)

// newFixCmd creates and configures the `fix` command.
func newFixCmd() *cobra.Command {
	fixCmd := &cobra.Command{
		Use:   "fix [document]",
		Short: "Generates fixes for flagged issues and merges the accepted ones into the document",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their corresponding Viper keys so command-line
			// flags correctly override config file and environment values.
			if err := viper.BindPFlag("engine.worker_concurrency", cmd.Flags().Lookup("concurrency")); err != nil {
				return err
			}
			if err := viper.BindPFlag("engine.generation_rate_per_second", cmd.Flags().Lookup("rate")); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use the context passed from main.go (signal-aware).
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			issuesPath, _ := cmd.Flags().GetString("issues")
			outputPath, _ := cmd.Flags().GetString("output")
			reportPath, _ := cmd.Flags().GetString("report")
			selectIDs, _ := cmd.Flags().GetStringSlice("select")
			deselect, _ := cmd.Flags().GetStringSlice("deselect")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			issues, err := reporting.LoadIssues(issuesPath)
			if err != nil {
				return err
			}

			result, err := runFixSession(ctx, logger, cfg, doc, issues, sessionOptions{
				Select:     selectIDs,
				Deselect:   deselect,
				OnProgress: progressPrinter(cmd),
			})
			if err != nil {
				return err
			}

			if !dryRun {
				if outputPath == "" {
					outputPath = doc.Path()
				}
				if err := document.Write(outputPath, result.FinalText); err != nil {
					return err
				}
				logger.Info("Wrote merged document", zap.String("path", outputPath))
			}

			if reportPath != "" {
				if err := result.Report.Write(reportPath); err != nil {
					return err
				}
				logger.Info("Wrote session report", zap.String("path", reportPath))
			}

			if err := persistSession(ctx, logger, cfg, result.Report); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nSession %s: %d/%d fixes generated, %d applied.\n",
				result.Report.SessionID, result.Report.Succeeded, result.Report.Total, len(result.Report.AppliedIDs))
			return nil
		},
	}

	fixCmd.Flags().StringP("issues", "i", "", "Path to the JSON issue list produced by the analysis pass. (Required)")
	fixCmd.Flags().StringP("output", "o", "", "Output path for the merged document. Defaults to overwriting the input.")
	fixCmd.Flags().StringP("report", "r", "", "Output path for the JSON session report. If unset, no report is written.")
	fixCmd.Flags().StringSlice("select", nil, "Apply only the generated fixes for these issue ids. Defaults to all succeeded fixes.")
	fixCmd.Flags().StringSlice("deselect", nil, "Issue ids whose generated fixes should not be applied.")
	fixCmd.Flags().Bool("dry-run", false, "Generate fixes and report without writing the merged document.")
	fixCmd.Flags().IntP("concurrency", "j", 0, "Number of concurrent generation workers. (Overrides config/env)")
	fixCmd.Flags().Float64("rate", 0, "Generation calls per second across all workers. (Overrides config/env)")
	_ = fixCmd.MarkFlagRequired("issues")

	return fixCmd
}

// sessionOptions tunes one runFixSession call.
type sessionOptions struct {
	// Select restricts the merge to these issue ids. Empty means every
	// succeeded fix.
	Select []string
	// Deselect lists issue ids excluded from the merge after generation.
	Deselect []string
	// OnProgress observes the batch's progress stream.
	OnProgress schemas.ProgressFunc
}

// sessionResult carries the merged text and the session report.
type sessionResult struct {
	FinalText string
	Report    reporting.SessionReport
}

// runFixSession drives one complete session: generate fixes for every
// eligible issue, select, merge, and assemble the report. Shared by the fix
// and watch commands.
func runFixSession(
	ctx context.Context,
	logger *zap.Logger,
	cfg *config.Config,
	doc *document.Document,
	issues []schemas.Issue,
	opts sessionOptions,
) (*sessionResult, error) {
	generator, err := llmclient.NewGenerator(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	batch, err := fixer.NewBatch(logger, generator, issues, doc.PlainText(), fixer.BatchConfig{
		Concurrency:   cfg.Engine.WorkerConcurrency,
		RatePerSecond: cfg.Engine.GenerationRatePerSecond,
		OnProgress:    opts.OnProgress,
	})
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()
	startedAt := time.Now()
	logger.Info("Starting fix session",
		zap.String("session_id", sessionID),
		zap.String("document", doc.Path()),
		zap.Int("eligible_jobs", batch.Total()))

	runCtx := ctx
	if cfg.Engine.SessionTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Engine.SessionTimeout)
		defer cancel()
	}

	if err := batch.Run(runCtx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("session aborted by user signal")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("session timed out after %s", cfg.Engine.SessionTimeout)
		}
		return nil, err
	}

	if len(opts.Select) > 0 {
		batch.Tracker().DeselectAll()
		for _, id := range opts.Select {
			if err := batch.Tracker().SetSelected(id, true); err != nil {
				logger.Warn("Cannot select unknown issue", zap.String("issue_id", id))
			}
		}
	} else {
		batch.Tracker().SelectAll()
	}
	for _, id := range opts.Deselect {
		if err := batch.Tracker().SetSelected(id, false); err != nil {
			logger.Warn("Cannot deselect unknown issue", zap.String("issue_id", id))
		}
	}

	applied, finalText := batch.ApplySelected()
	report := reporting.BuildReport(
		sessionID, doc.Path(), startedAt, time.Now(),
		issues, batch.Tracker().Snapshot(), applied,
	)

	return &sessionResult{FinalText: finalText, Report: report}, nil
}

// persistSession writes the session to the audit store when one is
// configured. Store failures are reported but never undo a finished session.
func persistSession(ctx context.Context, logger *zap.Logger, cfg *config.Config, report reporting.SessionReport) error {
	if !cfg.Store.Enabled {
		return nil
	}
	s, err := store.Connect(ctx, cfg.Store.URL, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to audit store: %w", err)
	}
	defer s.Close()

	if err := s.PersistSession(ctx, report); err != nil {
		logger.Error("Failed to persist session audit record", zap.Error(err))
	}
	return nil
}

// progressPrinter emits batch progress on the command's stdout.
func progressPrinter(cmd *cobra.Command) schemas.ProgressFunc {
	return func(p schemas.Progress) {
		fmt.Fprintf(cmd.OutOrStdout(), "Progress: %d/%d\n", p.Completed, p.Total)
	}
}
