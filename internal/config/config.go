// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Gemini  GeminiConfig  `yaml:"gemini" mapstructure:"gemini"`
	Inputs  InputsConfig  `yaml:"inputs" mapstructure:"inputs"`
	Outputs OutputsConfig `yaml:"outputs" mapstructure:"outputs"`
	Eval    EvalConfig    `yaml:"eval" mapstructure:"eval"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// GeminiConfig holds Gemini API settings. SafetySettings are opaque
// category/threshold pairs forwarded to the provider unchanged.
type GeminiConfig struct {
	Key             string          `yaml:"key" mapstructure:"key"`
	BaseURL         string          `yaml:"base_url" mapstructure:"base_url"`
	Model           string          `yaml:"model" mapstructure:"model"`
	Temperature     *float64        `yaml:"temperature" mapstructure:"temperature"`
	TopP            *float64        `yaml:"top_p" mapstructure:"top_p"`
	TopK            *int            `yaml:"top_k" mapstructure:"top_k"`
	MaxOutputTokens int             `yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
	CallDelaySecs   float64         `yaml:"call_delay_secs" mapstructure:"call_delay_secs"`
	TimeoutSecs     int             `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	SafetySettings  []SafetySetting `yaml:"safety_settings" mapstructure:"safety_settings"`
}

// SafetySetting is one content-filter rule.
type SafetySetting struct {
	Category  string `yaml:"category" mapstructure:"category"`
	Threshold string `yaml:"threshold" mapstructure:"threshold"`
}

// InputsConfig names the input files for a coding run.
type InputsConfig struct {
	CodebookFile  string   `yaml:"codebook_file" mapstructure:"codebook_file"`
	ExampleFiles  []string `yaml:"example_files" mapstructure:"example_files"`
	InputDataFile string   `yaml:"input_data_file" mapstructure:"input_data_file"`
	Delimiter     string   `yaml:"delimiter" mapstructure:"delimiter"`
}

// OutputsConfig names the output files for a coding run.
type OutputsConfig struct {
	ResultsFile  string `yaml:"results_file" mapstructure:"results_file"`
	AuditFile    string `yaml:"audit_file" mapstructure:"audit_file"`
	ModelLogFile string `yaml:"model_log_file" mapstructure:"model_log_file"`
	ErrorFile    string `yaml:"error_file" mapstructure:"error_file"`
}

// EvalConfig configures the agreement/evaluation commands.
type EvalConfig struct {
	Average string `yaml:"average" mapstructure:"average"`
	OutDir  string `yaml:"outdir" mapstructure:"outdir"`
}

// StoreConfig configures the optional run-history store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml and the environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RAGCODER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The upstream tool reads its credential from GOOGLE_API_KEY; keep
	// that working alongside RAGCODER_GEMINI_KEY.
	if err := v.BindEnv("gemini.key", "RAGCODER_GEMINI_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, eris.Wrap(err, "config: bind env")
	}

	// Defaults
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.model", "gemini-1.5-pro")
	v.SetDefault("gemini.max_output_tokens", 2048)
	v.SetDefault("gemini.call_delay_secs", 1.0)
	v.SetDefault("gemini.timeout_secs", 120)
	v.SetDefault("inputs.delimiter", ";")
	v.SetDefault("outputs.results_file", "coded_results.csv")
	v.SetDefault("outputs.audit_file", "audit_log.json")
	v.SetDefault("outputs.model_log_file", "model_output_log.json")
	v.SetDefault("outputs.error_file", "error_log.txt")
	v.SetDefault("eval.average", "macro")
	v.SetDefault("eval.outdir", "results")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "ragcoder_runs.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate enforces the fatal preconditions for a command before any
// per-item work starts.
func (c *Config) Validate(command string) error {
	switch command {
	case "code":
		if c.Gemini.Key == "" {
			return eris.New("config: gemini API key not set (RAGCODER_GEMINI_KEY or GOOGLE_API_KEY)")
		}
		if c.Inputs.CodebookFile == "" {
			return eris.New("config: inputs.codebook_file is required")
		}
		if len(c.Inputs.ExampleFiles) == 0 {
			return eris.New("config: inputs.example_files is required")
		}
		if c.Inputs.InputDataFile == "" {
			return eris.New("config: inputs.input_data_file is required")
		}
		if c.Gemini.CallDelaySecs < 0 {
			return eris.Errorf("config: gemini.call_delay_secs must be >= 0 (got %v)", c.Gemini.CallDelaySecs)
		}
	case "goldeval", "agreement":
		switch c.Eval.Average {
		case "macro", "micro", "weighted":
		default:
			return eris.Errorf("config: eval.average must be macro, micro, or weighted (got %q)", c.Eval.Average)
		}
	case "runs":
		if c.Store.Driver == "off" {
			return eris.New("config: store.driver is off; no run history available")
		}
	}
	return nil
}

// Delimiter returns the configured field delimiter as a rune,
// defaulting to ';'.
func (c *Config) Delimiter() rune {
	if c.Inputs.Delimiter == "" {
		return ';'
	}
	return []rune(c.Inputs.Delimiter)[0]
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
