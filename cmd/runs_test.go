package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ese-lab/ragcoder/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	runs := []model.Run{
		{
			ID:          "run-1",
			Model:       "gemini-1.5-pro",
			Status:      model.RunStatusDegraded,
			Responses:   10,
			Rows:        14,
			Errors:      2,
			ResultsFile: "coded_results.csv",
			StartedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "degraded")
	assert.Contains(t, out, "2026-08-01 12:00:00")
	assert.Contains(t, out, "coded_results.csv")
}
