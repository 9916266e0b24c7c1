// Package coder drives the per-response coding loop: prompt, model
// call, normalization, and the three append-only logs.
package coder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ese-lab/ragcoder/internal/model"
	"github.com/ese-lab/ragcoder/internal/normalize"
	"github.com/ese-lab/ragcoder/internal/prompt"
	"github.com/ese-lab/ragcoder/pkg/gemini"
)

// progressEvery controls how often the loop logs progress.
const progressEvery = 25

// Result bundles the coding records with the run's three logs.
type Result struct {
	Records        []model.CodingRecord
	AuditLog       []model.AuditEntry
	ModelOutputLog []model.ModelOutputEntry
	ErrorLog       []string
}

// Runner executes coding runs against a model client. The limiter
// enforces the constant inter-call courtesy delay; it is not a backoff
// and applies regardless of the previous call's outcome.
type Runner struct {
	client  gemini.Client
	limiter *rate.Limiter
}

// NewRunner creates a Runner with the given inter-call delay. A zero
// delay disables pacing.
func NewRunner(client gemini.Client, callDelay time.Duration) *Runner {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if callDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(callDelay), 1)
	}
	return &Runner{client: client, limiter: limiter}
}

// Run codes every response in input order, one at a time. Failures are
// isolated per item: every response yields exactly one coding record no
// matter how many calls fail. Only context cancellation aborts the run.
func (r *Runner) Run(ctx context.Context, responses []model.Response, codebook []model.CodebookEntry, exemplars []model.Exemplar) (*Result, error) {
	log := zap.L().With(zap.Int("total", len(responses)))
	log.Info("coder: starting run")

	result := &Result{
		Records: make([]model.CodingRecord, 0, len(responses)),
	}

	for i, resp := range responses {
		text := strings.TrimSpace(resp.Text)

		// Empty input short-circuits: no prompt, no audit entry, no call.
		if text == "" {
			result.Records = append(result.Records, model.CodingRecord{
				ResponseID:   resp.ResponseID,
				ResponseText: "",
				Output:       model.NoResponseOutput(),
			})
			continue
		}

		promptText := prompt.Build(codebook, exemplars, text)

		// Audit before the call so the trail captures the prompt even
		// if the call fails.
		result.AuditLog = append(result.AuditLog, model.AuditEntry{
			ResponseID: resp.ResponseID,
			PromptText: promptText,
		})

		if err := r.limiter.Wait(ctx); err != nil {
			return result, eris.Wrap(err, "coder: run cancelled")
		}

		output := r.codeOne(ctx, resp.ResponseID, promptText, result)
		result.Records = append(result.Records, model.CodingRecord{
			ResponseID:   resp.ResponseID,
			ResponseText: text,
			Output:       output,
		})

		if (i+1)%progressEvery == 0 {
			log.Info("coder: progress",
				zap.Int("completed", i+1),
				zap.Int("errors", len(result.ErrorLog)),
			)
		}
	}

	log.Info("coder: run complete",
		zap.Int("records", len(result.Records)),
		zap.Int("errors", len(result.ErrorLog)),
	)
	return result, nil
}

// codeOne performs the model call and normalization for one response,
// degrading failures to error-marker outputs.
func (r *Runner) codeOne(ctx context.Context, responseID, promptText string, result *Result) model.CodedOutput {
	raw, err := r.client.GenerateText(ctx, promptText)
	if err != nil {
		result.ErrorLog = append(result.ErrorLog,
			fmt.Sprintf("ID: %s, API Exception: %s", responseID, err.Error()))
		zap.L().Warn("coder: model call failed",
			zap.String("response_id", responseID),
			zap.Error(err),
		)
		return model.CallErrorOutput(err.Error())
	}

	payload := normalize.ExtractJSON(raw)
	output, err := normalize.ParseCodedOutput(payload)
	if err != nil {
		result.ErrorLog = append(result.ErrorLog,
			fmt.Sprintf("ID: %s, JSON Decode Error, Raw Output: %s", responseID, payload))
		zap.L().Warn("coder: model output did not parse",
			zap.String("response_id", responseID),
		)
		return model.ParseErrorOutput(payload)
	}

	result.ModelOutputLog = append(result.ModelOutputLog, model.ModelOutputEntry{
		ResponseID: responseID,
		Output:     output,
	})
	return output
}
