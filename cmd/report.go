package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmorenoc/cronograma/internal/report"
	"github.com/dmorenoc/cronograma/internal/store"
)

// newReportCmd rebuilds an HTML report from a previously produced workbook
// and the directory of images fetched for it.
func newReportCmd() *cobra.Command {
	var (
		workbook  string
		imagesDir string
		category  string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Regenerate an HTML report from an existing output workbook.",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if category == "" {
				category = strings.TrimSuffix(filepath.Base(workbook), filepath.Ext(workbook))
			}
			if outPath == "" {
				outPath = "informe_" + category + ".html"
			}

			st, err := store.FromDir(imagesDir)
			if err != nil {
				return err
			}
			logger.Info("image store re-derived",
				zap.String("dir", imagesDir),
				zap.Int("images", st.Len()),
			)

			assembler := report.NewAssembler(cfg.Sheet.ExcludedFields, cfg.ColumnLetterMap())
			rep, err := assembler.Assemble(workbook, st)
			if err != nil {
				return err
			}

			renderer, err := report.NewRenderer(cfg.Sheet.FullWidthFields)
			if err != nil {
				return err
			}
			out, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create report %s: %w", outPath, err)
			}
			defer out.Close()
			if err := renderer.Render(rep, category, out); err != nil {
				return err
			}
			logger.Info("report regenerated", zap.String("path", outPath))
			return nil
		},
	}
	cmd.Flags().StringVar(&workbook, "workbook", "", "augmented .xlsx produced by a prior run")
	cmd.Flags().StringVar(&imagesDir, "images", "", "directory of downloaded images named {row}_{col}.{ext}")
	cmd.Flags().StringVar(&category, "category", "", "category title (defaults to the workbook name)")
	cmd.Flags().StringVar(&outPath, "out", "", "output HTML path")
	_ = cmd.MarkFlagRequired("workbook")
	_ = cmd.MarkFlagRequired("images")
	return cmd
}
