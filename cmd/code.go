package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ese-lab/ragcoder/internal/coder"
	"github.com/ese-lab/ragcoder/internal/config"
	"github.com/ese-lab/ragcoder/internal/fetcher"
	"github.com/ese-lab/ragcoder/internal/flatten"
	"github.com/ese-lab/ragcoder/internal/model"
	"github.com/ese-lab/ragcoder/internal/report"
	"github.com/ese-lab/ragcoder/internal/store"
	"github.com/ese-lab/ragcoder/pkg/gemini"
)

var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Code survey responses against the codebook",
	Long:  "Loads the codebook, exemplars, and responses, codes each response with Gemini, and writes the flattened result table plus the audit, model-output, and error logs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("code"); err != nil {
			return err
		}
		delim := cfg.Delimiter()

		codebook, err := fetcher.LoadCodebook(cfg.Inputs.CodebookFile, delim)
		if err != nil {
			return eris.Wrap(err, "load codebook")
		}
		exemplars, err := fetcher.LoadExemplars(cfg.Inputs.ExampleFiles, delim)
		if err != nil {
			return eris.Wrap(err, "load exemplars")
		}
		responses, err := fetcher.LoadResponses(cfg.Inputs.InputDataFile, delim)
		if err != nil {
			return eris.Wrap(err, "load responses")
		}

		zap.L().Info("inputs loaded",
			zap.Int("codebook_entries", len(codebook)),
			zap.Int("exemplars", len(exemplars)),
			zap.Int("responses", len(responses)),
		)

		client := newGeminiClient(cfg.Gemini)
		delay := time.Duration(cfg.Gemini.CallDelaySecs * float64(time.Second))
		runner := coder.NewRunner(client, delay)

		started := time.Now().UTC()
		result, runErr := runner.Run(ctx, responses, codebook, exemplars)
		finished := time.Now().UTC()

		// Flush whatever was produced, even on an aborted run.
		rows := flatten.Flatten(result.Records)
		if err := report.WriteResults(cfg.Outputs.ResultsFile, rows); err != nil {
			return err
		}
		if err := report.WriteAuditLog(cfg.Outputs.AuditFile, result.AuditLog); err != nil {
			return err
		}
		if err := report.WriteModelOutputLog(cfg.Outputs.ModelLogFile, result.ModelOutputLog); err != nil {
			return err
		}
		if len(result.ErrorLog) > 0 {
			if err := report.WriteErrorLog(cfg.Outputs.ErrorFile, result.ErrorLog); err != nil {
				return err
			}
		}

		run := &model.Run{
			Model:       cfg.Gemini.Model,
			Status:      runStatus(runErr, result),
			Responses:   len(responses),
			Rows:        len(rows),
			Errors:      len(result.ErrorLog),
			ResultsFile: cfg.Outputs.ResultsFile,
			StartedAt:   started,
			FinishedAt:  finished,
		}
		saveRun(ctx, run)

		report.LogRunSummary(cfg.Outputs.ResultsFile, cfg.Outputs.ErrorFile, len(rows), len(result.ErrorLog))

		if runErr != nil {
			return eris.Wrap(runErr, "coding run")
		}
		return nil
	},
}

// newGeminiClient builds the API client from configuration.
func newGeminiClient(gc config.GeminiConfig) gemini.Client {
	opts := []gemini.Option{
		gemini.WithModel(gc.Model),
		gemini.WithGenerationConfig(gemini.GenerationConfig{
			Temperature:     gc.Temperature,
			TopP:            gc.TopP,
			TopK:            gc.TopK,
			MaxOutputTokens: gc.MaxOutputTokens,
		}),
	}
	if gc.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(gc.BaseURL))
	}
	if len(gc.SafetySettings) > 0 {
		settings := make([]gemini.SafetySetting, 0, len(gc.SafetySettings))
		for _, s := range gc.SafetySettings {
			settings = append(settings, gemini.SafetySetting{Category: s.Category, Threshold: s.Threshold})
		}
		opts = append(opts, gemini.WithSafetySettings(settings))
	}
	if gc.TimeoutSecs > 0 {
		opts = append(opts, gemini.WithHTTPClient(&http.Client{
			Timeout: time.Duration(gc.TimeoutSecs) * time.Second,
		}))
	}
	return gemini.NewClient(gc.Key, opts...)
}

// runStatus classifies a finished run for the history store.
func runStatus(runErr error, result *coder.Result) model.RunStatus {
	switch {
	case runErr != nil:
		return model.RunStatusFailed
	case len(result.ErrorLog) > 0:
		return model.RunStatusDegraded
	default:
		return model.RunStatusComplete
	}
}

// saveRun records the run in the history store. Store trouble is a
// warning: the results are already on disk.
func saveRun(ctx context.Context, run *model.Run) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		zap.L().Warn("run history store unavailable", zap.Error(err))
		return
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("run history migrate failed", zap.Error(err))
		return
	}
	if err := st.SaveRun(ctx, run); err != nil {
		zap.L().Warn("run history save failed", zap.Error(err))
		return
	}
	zap.L().Info("run recorded", zap.String("run_id", run.ID))
}
