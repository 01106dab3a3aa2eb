// Package observability wires structured logging, tracing and metrics for codelens.
package observability

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// AppMode identifies how the process was started.
type AppMode string

// ModeCLI marks telemetry from the codelens command.
const ModeCLI AppMode = "cli"

const (
	defaultServiceName        = "codelens"
	defaultShutdownTimeoutSec = 5
)

// ErrUnknownLogLevel is returned for log levels slog does not know.
var ErrUnknownLogLevel = errors.New("unknown log level")

// Config controls Init.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	// OTLPEndpoint enables OTLP/gRPC export when non-empty.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool
	SampleRatio  float64

	LogLevel  slog.Level
	LogJSON   bool
	LogWriter io.Writer // os.Stderr when nil

	ShutdownTimeoutSec int
}

// DefaultConfig returns a CLI configuration with no telemetry export.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLogLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLogLevel, s)
	}

	return level, nil
}
