package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codelens/pkg/config"
	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".codelens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, report.DefaultThresholds(), cfg.Complexity.Thresholds())

	size, err := cfg.Analysis.MaxFileSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000*1000), size)
}

func TestLoadConfig_FromFile(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, `
style:
  command: "flake8 --select=E,W"
  timeout: 2s
complexity:
  medium_threshold: 4
  high_threshold: 8
analysis:
  max_file_size: 512KiB
logging:
  level: debug
  format: json
telemetry:
  otlp_endpoint: localhost:4317
  otlp_insecure: true
`))
	require.NoError(t, err)

	assert.Equal(t, "flake8 --select=E,W", cfg.Style.Command)
	assert.Equal(t, 2*time.Second, cfg.Style.Timeout)
	assert.Equal(t, config.DefaultStyleInstallHint, cfg.Style.InstallHint)
	assert.Equal(t, report.Thresholds{Medium: 4, High: 8}, cfg.Complexity.Thresholds())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, config.FormatJSON, cfg.Logging.Format)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.OTLPInsecure)

	size, err := cfg.Analysis.MaxFileSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(512*1024), size)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("CODELENS_STYLE_COMMAND", "pycodestyle --max-line-length=120")
	t.Setenv("CODELENS_COMPLEXITY_HIGH_THRESHOLD", "20")

	cfg, err := config.LoadConfig(writeConfig(t, "style:\n  command: flake8\n"))
	require.NoError(t, err)

	assert.Equal(t, "pycodestyle --max-line-length=120", cfg.Style.Command)
	assert.Equal(t, 20, cfg.Complexity.HighThreshold)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"empty command", "style:\n  command: \"  \"\n", config.ErrEmptyStyleCommand},
		{"zero timeout", "style:\n  timeout: 0s\n", config.ErrInvalidTimeout},
		{"thresholds reversed", "complexity:\n  medium_threshold: 10\n  high_threshold: 5\n", config.ErrInvalidThresholds},
		{"thresholds zero", "complexity:\n  medium_threshold: 0\n", config.ErrInvalidThresholds},
		{"bad size", "analysis:\n  max_file_size: lots\n", config.ErrInvalidMaxFileSize},
		{"bad level", "logging:\n  level: chatty\n", config.ErrInvalidLogLevel},
		{"bad format", "logging:\n  format: xml\n", config.ErrInvalidLogFormat},
		{"bad ratio", "telemetry:\n  sample_ratio: 2\n", config.ErrInvalidSampleRatio},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tc.content))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
