// Package cmd implements the readback command line.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yegors/readback-check/internal/analyzer"
	"github.com/yegors/readback-check/internal/config"
	"github.com/yegors/readback-check/pkg/logger"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readback",
		Short: "ATC readback/hearback validation",
		Long: `readback checks a pilot's readback against the controller instruction
it answers. It reports wrong values, transposed digits, omitted elements
and missing designators with ICAO-aligned severities, and adds flight
phase, multi-part completeness and safety scoring on top.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "path to a TOML config file")
	cmd.PersistentFlags().String("log-level", "", "override logging.level")

	cmd.AddCommand(NewAnalyzeCommand())
	cmd.AddCommand(NewEvaluateCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewTranscriptCommand())
	cmd.AddCommand(NewServeCommand())

	return cmd
}

// loadConfig reads --config, falling back to the defaults
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newLogger writes command logs to stderr so stdout stays parseable
func newLogger(cmd *cobra.Command, cfg *config.Config) (*logger.Logger, error) {
	lc := cfg.LoggerConfig()
	lc.Output = cmd.ErrOrStderr()
	return logger.New(lc)
}

// setup loads the config and builds the logger and analyzer every command uses
func setup(cmd *cobra.Command) (*config.Config, *logger.Logger, *analyzer.Analyzer, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	a, err := analyzer.New(cfg.AnalyzerConfig(), log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, a, nil
}
