// Package commands implements the codelens CLI subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codelens/pkg/config"
	"github.com/Sumatoshi-tech/codelens/pkg/observability"
	"github.com/Sumatoshi-tech/codelens/pkg/pipeline"
	"github.com/Sumatoshi-tech/codelens/pkg/render"
	"github.com/Sumatoshi-tech/codelens/pkg/report"
	"github.com/Sumatoshi-tech/codelens/pkg/version"
)

const (
	analyzeCmdUse   = "analyze <file>..."
	analyzeCmdShort = "Analyze source files and print one report per file"
	outputFilePerm  = 0o644
)

// ErrUnreadableFiles is returned when at least one input could not be read.
// Reports for the readable inputs are still written.
var ErrUnreadableFiles = errors.New("some files could not be analyzed")

// AnalyzeCommand holds the flags of "codelens analyze".
type AnalyzeCommand struct {
	configPath   string
	format       string
	output       string
	noColor      bool
	forceColor   bool
	styleCommand string
	styleTimeout string
	maxFileSize  string
	medium       int
	high         int
}

// NewAnalyzeCommand creates the analyze subcommand.
func NewAnalyzeCommand() *cobra.Command {
	ac := &AnalyzeCommand{}

	cmd := &cobra.Command{
		Use:   analyzeCmdUse,
		Short: analyzeCmdShort,
		Long: `Analyze reads each file, runs every registered analyzer on it and prints
a report with one entry per analyzer in registration order. Analyzers that do
not support a file's extension report "not applicable"; a failing analyzer
never hides the results of the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: ac.Run,
	}

	cmd.Flags().StringVarP(&ac.configPath, "config", "c", "", "Config file (default: .codelens.yaml in the working or user config directory)")
	cmd.Flags().StringVarP(&ac.format, "format", "f", render.FormatText,
		"Output format: text, table, json, yaml, sarif")
	cmd.Flags().StringVarP(&ac.output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&ac.noColor, "no-color", false, "Disable colored text output")
	cmd.Flags().BoolVar(&ac.forceColor, "color", false, "Force colored text output")
	cmd.Flags().StringVar(&ac.styleCommand, "style-command", "", "Style checker command line (default: pycodestyle)")
	cmd.Flags().StringVar(&ac.styleTimeout, "timeout", "", "Style checker timeout (e.g. '5s', '500ms')")
	cmd.Flags().StringVar(&ac.maxFileSize, "max-file-size", "", "Largest file to analyze (e.g. '1MB', '512KiB')")
	cmd.Flags().IntVar(&ac.medium, "medium-threshold", 0, "Complexity at which a block becomes medium severity")
	cmd.Flags().IntVar(&ac.high, "high-threshold", 0, "Complexity at which a block becomes high severity")

	return cmd
}

// Run executes the analyze command.
func (ac *AnalyzeCommand) Run(cmd *cobra.Command, args []string) error {
	cfg, err := ac.loadConfig(cmd)
	if err != nil {
		return err
	}

	format, err := render.ValidateFormat(ac.format)
	if err != nil {
		return err
	}

	providers, err := ac.initObservability(cmd, cfg)
	if err != nil {
		return err
	}

	defer func() {
		if shutdownErr := providers.Shutdown(context.WithoutCancel(cmd.Context())); shutdownErr != nil {
			providers.Logger.Warn("telemetry shutdown failed", "error", shutdownErr)
		}
	}()

	session, err := newSession(cfg, providers)
	if err != nil {
		return err
	}

	reports, readErr := analyzeAll(cmd.Context(), session, args, cmd.ErrOrStderr())
	if readErr != nil && !errors.Is(readErr, ErrUnreadableFiles) {
		return readErr
	}

	opts := render.Options{
		Format:      format,
		NoColor:     ac.noColor,
		ForceColor:  ac.forceColor,
		ToolVersion: version.Version,
	}

	if err := ac.write(cmd.OutOrStdout(), opts, reports); err != nil {
		return err
	}

	return readErr
}

func (ac *AnalyzeCommand) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(ac.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()

	if flags.Changed("style-command") {
		cfg.Style.Command = ac.styleCommand
	}

	if flags.Changed("timeout") {
		d, parseErr := time.ParseDuration(ac.styleTimeout)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidTimeout, parseErr)
		}

		cfg.Style.Timeout = d
	}

	if flags.Changed("max-file-size") {
		cfg.Analysis.MaxFileSize = ac.maxFileSize
	}

	if flags.Changed("medium-threshold") {
		cfg.Complexity.MediumThreshold = ac.medium
	}

	if flags.Changed("high-threshold") {
		cfg.Complexity.HighThreshold = ac.high
	}

	if boolFlag(cmd, "verbose") {
		cfg.Logging.Level = "debug"
	} else if boolFlag(cmd, "quiet") {
		cfg.Logging.Level = "error"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (ac *AnalyzeCommand) initObservability(cmd *cobra.Command, cfg *config.Config) (observability.Providers, error) {
	level, err := observability.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		return observability.Providers{}, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == config.FormatJSON
	obsCfg.LogWriter = cmd.ErrOrStderr()
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("failed to init observability: %w", err)
	}

	return providers, nil
}

func newSession(cfg *config.Config, providers observability.Providers) (*pipeline.Session, error) {
	maxSize, err := cfg.Analysis.MaxFileSizeBytes()
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	reg, err := pipeline.DefaultRegistry(pipeline.AnalyzerSettings{
		Thresholds:       cfg.Complexity.Thresholds(),
		StyleCommand:     cfg.Style.Command,
		StyleTimeout:     cfg.Style.Timeout,
		StyleInstallHint: cfg.Style.InstallHint,
		Logger:           providers.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build analyzers: %w", err)
	}

	p := pipeline.New(reg,
		pipeline.WithLogger(providers.Logger),
		pipeline.WithTracer(providers.Tracer),
		pipeline.WithMetrics(metrics),
		pipeline.WithMaxFileSize(maxSize),
	)

	return pipeline.NewSession(p), nil
}

// analyzeAll opens each path in turn. Unreadable files are reported on
// errOut and skipped.
func analyzeAll(ctx context.Context, session *pipeline.Session, paths []string, errOut io.Writer) ([]*report.Report, error) {
	reports := make([]*report.Report, 0, len(paths))
	failed := 0

	for _, path := range paths {
		rep, err := session.Open(ctx, path)
		if err != nil {
			var readErr *pipeline.FileReadError
			if !errors.As(err, &readErr) {
				return reports, err
			}

			fmt.Fprintf(errOut, "Error: %v\n", readErr)

			failed++

			continue
		}

		reports = append(reports, rep)
	}

	if failed > 0 {
		return reports, fmt.Errorf("%w: %d of %d", ErrUnreadableFiles, failed, len(paths))
	}

	return reports, nil
}

func (ac *AnalyzeCommand) write(stdout io.Writer, opts render.Options, reports []*report.Report) error {
	if len(reports) == 0 {
		return nil
	}

	if ac.output == "" {
		return render.Write(stdout, opts, reports...)
	}

	f, err := os.OpenFile(ac.output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, outputFilePerm)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	// Files never get escape codes.
	opts.NoColor = true
	opts.ForceColor = false

	writeErr := render.Write(f, opts, reports...)

	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}

	if closeErr != nil {
		return fmt.Errorf("close output file: %w", closeErr)
	}

	return nil
}

func boolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}

	return v
}
