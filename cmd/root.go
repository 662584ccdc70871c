// Package cmd wires the cobra command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmorenoc/cronograma/internal/config"
	"github.com/dmorenoc/cronograma/internal/logging"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cronograma",
		Short: "Inspection spreadsheet splitter and image report generator.",
		Long: `cronograma ingests a master inspection workbook, partitions its rows by
coverage category, downloads the images each record references, and emits one
augmented workbook plus one self-contained HTML report per category.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newReportCmd())
	return cmd
}

// setup loads configuration and builds the run logger shared by commands.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// Execute runs the CLI. Any failure that escapes a command is logged and
// the process exits non-zero.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
