// Package config loads codelens settings from .codelens.yaml, CODELENS_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

// Sentinel validation errors.
var (
	ErrEmptyStyleCommand  = errors.New("style command must not be empty")
	ErrInvalidTimeout     = errors.New("style timeout must be positive")
	ErrInvalidThresholds  = errors.New("complexity thresholds must satisfy 1 <= medium < high")
	ErrInvalidMaxFileSize = errors.New("invalid max file size")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidSampleRatio = errors.New("telemetry sample ratio must be within [0, 1]")
)

// Defaults.
const (
	DefaultStyleCommand     = "pycodestyle"
	DefaultStyleTimeout     = 5 * time.Second
	DefaultStyleInstallHint = "install it with: pip install pycodestyle"
	DefaultMaxFileSize      = "1MB"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = FormatText

	FormatText = "text"
	FormatJSON = "json"

	configName = ".codelens"
	envPrefix  = "CODELENS"
)

// Config holds all codelens settings.
type Config struct {
	Style      StyleConfig      `mapstructure:"style"`
	Complexity ComplexityConfig `mapstructure:"complexity"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// StyleConfig configures the external PEP 8 checker.
type StyleConfig struct {
	Command     string        `mapstructure:"command"`
	InstallHint string        `mapstructure:"install_hint"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ComplexityConfig holds the severity thresholds.
type ComplexityConfig struct {
	MediumThreshold int `mapstructure:"medium_threshold"`
	HighThreshold   int `mapstructure:"high_threshold"`
}

// Thresholds converts the config to report thresholds.
func (c ComplexityConfig) Thresholds() report.Thresholds {
	return report.Thresholds{Medium: c.MediumThreshold, High: c.HighThreshold}
}

// AnalysisConfig holds input limits.
type AnalysisConfig struct {
	// MaxFileSize is a human-readable size such as "1MB" or "512KiB".
	MaxFileSize string `mapstructure:"max_file_size"`
}

// MaxFileSizeBytes parses MaxFileSize.
func (a AnalysisConfig) MaxFileSizeBytes() (uint64, error) {
	n, err := humanize.ParseBytes(a.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMaxFileSize, a.MaxFileSize, err)
	}

	return n, nil
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings. Export is off when
// OTLPEndpoint is empty.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// LoadConfig reads configPath, or searches for .codelens.yaml in the working
// directory and then in the user config directory when configPath is empty.
// Environment variables such as CODELENS_STYLE_COMMAND override the file.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "codelens"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Style: StyleConfig{
			Command:     DefaultStyleCommand,
			InstallHint: DefaultStyleInstallHint,
			Timeout:     DefaultStyleTimeout,
		},
		Complexity: ComplexityConfig{
			MediumThreshold: report.DefaultMediumThreshold,
			HighThreshold:   report.DefaultHighThreshold,
		},
		Analysis:  AnalysisConfig{MaxFileSize: DefaultMaxFileSize},
		Logging:   LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Telemetry: TelemetryConfig{SampleRatio: 1},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("style.command", d.Style.Command)
	v.SetDefault("style.install_hint", d.Style.InstallHint)
	v.SetDefault("style.timeout", d.Style.Timeout.String())

	v.SetDefault("complexity.medium_threshold", d.Complexity.MediumThreshold)
	v.SetDefault("complexity.high_threshold", d.Complexity.HighThreshold)

	v.SetDefault("analysis.max_file_size", d.Analysis.MaxFileSize)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("telemetry.otlp_endpoint", d.Telemetry.OTLPEndpoint)
	v.SetDefault("telemetry.otlp_headers", d.Telemetry.OTLPHeaders)
	v.SetDefault("telemetry.otlp_insecure", d.Telemetry.OTLPInsecure)
	v.SetDefault("telemetry.sample_ratio", d.Telemetry.SampleRatio)
}

// Validate checks the configuration for values the analyzers cannot use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Style.Command) == "" {
		return ErrEmptyStyleCommand
	}

	if c.Style.Timeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Style.Timeout)
	}

	if c.Complexity.MediumThreshold < 1 || c.Complexity.HighThreshold <= c.Complexity.MediumThreshold {
		return fmt.Errorf("%w: medium=%d high=%d", ErrInvalidThresholds,
			c.Complexity.MediumThreshold, c.Complexity.HighThreshold)
	}

	if _, err := c.Analysis.MaxFileSizeBytes(); err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	switch c.Logging.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	return nil
}
