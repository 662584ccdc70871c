package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmorenoc/cronograma/internal/run"
)

func newRunCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a master workbook into per-category workbooks and reports.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if inputPath == "" {
				inputPath, err = promptForWorkbook()
				if err != nil {
					return err
				}
			} else if err := validateWorkbookPath(inputPath); err != nil {
				return err
			}

			runner, err := run.New(cfg, logger)
			if err != nil {
				return err
			}
			if err := runner.Run(cmd.Context(), inputPath); err != nil {
				logger.Error("run failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "master .xlsx path (prompted for when omitted)")
	return cmd
}

// promptForWorkbook loops until the user supplies an existing .xlsx path.
func promptForWorkbook() (string, error) {
	prompt := promptui.Prompt{
		Label:    "Ruta completa del archivo Excel",
		Validate: validateWorkbookPath,
	}
	path, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("read workbook path: %w", err)
	}
	return strings.TrimSpace(path), nil
}

func validateWorkbookPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("no path given")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return fmt.Errorf("file must have an .xlsx extension")
	}
	return nil
}
