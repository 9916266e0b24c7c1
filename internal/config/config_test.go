package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-1.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 1.0, cfg.Gemini.CallDelaySecs)
	assert.Equal(t, ";", cfg.Inputs.Delimiter)
	assert.Equal(t, "coded_results.csv", cfg.Outputs.ResultsFile)
	assert.Equal(t, "macro", cfg.Eval.Average)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	fixture := Config{
		Gemini: GeminiConfig{
			Model:         "gemini-2.0-flash",
			CallDelaySecs: 2.5,
			SafetySettings: []SafetySetting{
				{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
			},
		},
		Inputs: InputsConfig{
			CodebookFile:  "codebook.csv",
			ExampleFiles:  []string{"study1.csv", "study2.csv"},
			InputDataFile: "responses.csv",
		},
	}
	data, err := yaml.Marshal(fixture)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, 2.5, cfg.Gemini.CallDelaySecs)
	assert.Equal(t, []string{"study1.csv", "study2.csv"}, cfg.Inputs.ExampleFiles)
	require.Len(t, cfg.Gemini.SafetySettings, 1)
	assert.Equal(t, "BLOCK_NONE", cfg.Gemini.SafetySettings[0].Threshold)
}

func TestLoad_KeyFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOOGLE_API_KEY", "env-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Gemini.Key)
}

func TestValidate_Code(t *testing.T) {
	cfg := &Config{
		Gemini: GeminiConfig{Key: "k"},
		Inputs: InputsConfig{
			CodebookFile:  "codebook.csv",
			ExampleFiles:  []string{"study1.csv"},
			InputDataFile: "responses.csv",
		},
	}
	assert.NoError(t, cfg.Validate("code"))

	cfg.Gemini.Key = ""
	err := cfg.Validate("code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestValidate_MissingInputs(t *testing.T) {
	cfg := &Config{Gemini: GeminiConfig{Key: "k"}}
	err := cfg.Validate("code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "codebook_file")
}

func TestValidate_EvalAverage(t *testing.T) {
	cfg := &Config{Eval: EvalConfig{Average: "harmonic"}}
	err := cfg.Validate("goldeval")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eval.average")

	cfg.Eval.Average = "weighted"
	assert.NoError(t, cfg.Validate("goldeval"))
}

func TestDelimiter(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, ';', cfg.Delimiter())

	cfg.Inputs.Delimiter = ","
	assert.Equal(t, ',', cfg.Delimiter())
}
