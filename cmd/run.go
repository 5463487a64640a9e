package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crestline-vc/termsheet-cli/internal/extract"
	"github.com/crestline-vc/termsheet-cli/internal/model"
	"github.com/crestline-vc/termsheet-cli/internal/outputs"
	"github.com/crestline-vc/termsheet-cli/internal/review"
	"github.com/crestline-vc/termsheet-cli/internal/session"
	"github.com/crestline-vc/termsheet-cli/internal/source"
	"github.com/crestline-vc/termsheet-cli/pkg/anthropic"
)

var (
	runDataDir string
	runOutDir  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract a term sheet from the data directory in one shot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		dataDir := runDataDir
		if dataDir == "" {
			dataDir = cfg.Data.Dir
		}
		outDir := runOutDir
		if outDir == "" {
			outDir = cfg.Output.Dir
		}

		sources, err := source.Load(dataDir)
		if err != nil {
			return eris.Wrap(err, "run: load sources")
		}
		zap.L().Info("sources loaded",
			zap.String("data_dir", dataDir),
			zap.Int("documents", len(sources)),
		)

		client := anthropic.NewClient(cfg.Anthropic.Key)
		extractor := extract.New(client, extract.Options{
			Model:       cfg.Anthropic.Model,
			MaxTokens:   int64(cfg.Anthropic.MaxTokens),
			Pacing:      time.Duration(cfg.Extract.PacingSecs) * time.Second,
			CallTimeout: time.Duration(cfg.Extract.CallTimeoutSecs) * time.Second,
		})

		sess := session.New()
		if err := sess.BeginExtraction(); err != nil {
			return err
		}

		ts, calls, err := extractor.ExtractAll(ctx, sources)
		if err != nil {
			return eris.Wrap(err, "run: extraction")
		}
		ts.ExtractedAt = time.Now()
		if err := sess.CompleteExtraction(ts, calls); err != nil {
			return err
		}

		reportReviewQueue(ts)

		// Finalize only when nothing needs human review. Otherwise the
		// session stays in reviewing and the outputs reflect the draft.
		if ok, blocking := review.CanFinalize(ts); ok {
			if err := sess.Finalize(); err != nil {
				return err
			}
			zap.L().Info("term sheet finalized")
		} else {
			zap.L().Warn("term sheet needs review before finalizing",
				zap.Strings("blocking_fields", blocking),
			)
		}

		written, err := outputs.WriteAll(sess, cfg.Anthropic.Model, outDir)
		if err != nil {
			return eris.Wrap(err, "run: write outputs")
		}
		for name, path := range written {
			zap.L().Info("output written", zap.String("file", name), zap.String("path", path))
		}

		return nil
	},
}

// reportReviewQueue logs the review priority breakdown so an operator can
// see what the interactive review would ask about.
func reportReviewQueue(ts *model.TermSheet) {
	counts := map[model.ReviewPriority]int{}
	var attention []string
	for _, item := range review.Queue(ts) {
		counts[item.Priority]++
		if item.Priority == model.PriorityDecide || item.Priority == model.PriorityMissing {
			attention = append(attention, item.Section+"."+item.Field)
		}
	}

	zap.L().Info("review queue",
		zap.Int("auto", counts[model.PriorityAuto]),
		zap.Int("confirm", counts[model.PriorityConfirm]),
		zap.Int("decide", counts[model.PriorityDecide]),
		zap.Int("missing", counts[model.PriorityMissing]),
	)
	if len(attention) > 0 {
		zap.L().Warn("fields needing attention", zap.Strings("fields", attention))
	}
	if missing := ts.MissingRequired(); len(missing) > 0 {
		for _, ref := range missing {
			zap.L().Warn("required field not found",
				zap.String("section", ref.Section),
				zap.String("field", ref.Field),
			)
		}
	}
}

func init() {
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "data directory (default from config)")
	runCmd.Flags().StringVar(&runOutDir, "out-dir", "", "output directory (default from config)")
	rootCmd.AddCommand(runCmd)
}
