// Package run orchestrates the per-category inspection pipeline.
package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmorenoc/cronograma/internal/acquire"
	"github.com/dmorenoc/cronograma/internal/config"
	"github.com/dmorenoc/cronograma/internal/fetch"
	"github.com/dmorenoc/cronograma/internal/findings"
	"github.com/dmorenoc/cronograma/internal/images"
	"github.com/dmorenoc/cronograma/internal/report"
	"github.com/dmorenoc/cronograma/internal/sheet"
	"github.com/dmorenoc/cronograma/internal/store"
)

// defaultResultsFolder anchors the output tree at the user's desktop when
// no results directory is configured.
const defaultResultsFolder = "Resultados Cronograma"

// Runner wires the pipeline stages and drives them category by category.
// Categories run strictly sequentially; the worker pool inside the
// scheduler is the only cross-category shared resource.
type Runner struct {
	cfg       config.Config
	dirs      *store.WorkDirs
	scheduler *acquire.Scheduler
	processor *images.Processor
	embedder  *sheet.Embedder
	assembler *report.Assembler
	renderer  *report.Renderer
	throttle  Throttle
	logger    *zap.Logger
}

// New builds a Runner from configuration. The run gets a uuid-derived
// identity used for logging and the scratch directory name.
func New(cfg config.Config, logger *zap.Logger) (*Runner, error) {
	runID := uuid.NewString()[:8]
	logger = logger.With(zap.String("run_id", runID))

	dirs, err := store.NewWorkDirs(cfg.Output.WorkDir, runID)
	if err != nil {
		return nil, err
	}

	policy := fetch.Policy{
		MaxAttempts: cfg.HTTP.MaxAttempts,
		BaseTimeout: cfg.BaseTimeout(),
		Multiplier:  cfg.HTTP.TimeoutMultiplier,
	}
	fetcher := fetch.New(policy, dirs, cfg.HTTP.UserAgent, logger)

	letters := cfg.ColumnLetterMap()

	renderer, err := report.NewRenderer(cfg.Sheet.FullWidthFields)
	if err != nil {
		return nil, err
	}

	logger.Info("worker pool configured", zap.Int("workers", cfg.Pool.Workers))

	return &Runner{
		cfg:       cfg,
		dirs:      dirs,
		scheduler: acquire.New(fetcher, cfg.Pool.Workers, cfg.ImageColumns(), logger),
		processor: images.NewProcessor(cfg.Images.ResizeWidth, cfg.Images.ResizeHeight, logger),
		embedder:  sheet.NewEmbedder(cfg.Sheet.Name, cfg.Images.ColumnWidth, cfg.Images.RowHeight, letters, logger),
		assembler: report.NewAssembler(cfg.Sheet.ExcludedFields, letters),
		renderer:  renderer,
		throttle: Throttle{
			Base:   time.Duration(cfg.Throttle.BaseSeconds * float64(time.Second)),
			Max:    time.Duration(cfg.Throttle.MaxSeconds * float64(time.Second)),
			Growth: cfg.Throttle.Growth,
			Jitter: cfg.Throttle.Jitter,
		},
		logger: logger,
	}, nil
}

// Run executes the full pipeline for the master workbook at inputPath.
// Per-task failures are absorbed upstream; only file-system and workbook
// structure failures abort the run.
func (r *Runner) Run(ctx context.Context, inputPath string) error {
	defer r.cleanup()

	rows, err := sheet.LoadMaster(inputPath, r.cfg.Sheet.Name)
	if err != nil {
		return err
	}
	r.logger.Info("master workbook loaded", zap.String("path", inputPath), zap.Int("rows", len(rows)))

	categories := sheet.Partition(rows, r.cfg.Sheet.CategoryColumn)
	if len(categories) == 0 {
		r.logger.Warn("no categories found, nothing to do")
		return nil
	}

	excelDir, htmlDir, err := r.ensureResultsDirs()
	if err != nil {
		return err
	}

	st := store.NewImageStore()
	for i, cs := range categories {
		if err := r.processCategory(ctx, cs, st, excelDir, htmlDir); err != nil {
			return err
		}
		if len(categories) > 1 && i < len(categories)-1 {
			n := i + 1
			r.logger.Info("waiting before next category",
				zap.String("category", cs.Category),
				zap.Duration("delay", r.throttle.Delay(n)),
			)
			if err := r.throttle.Wait(ctx, n); err != nil {
				return err
			}
		}
	}

	r.logger.Info("run complete", zap.Int("categories", len(categories)))
	return nil
}

// processCategory runs acquisition, resize, embedding, and report
// generation for one category. The store and working directories are
// emptied first so nothing leaks in from the previous category.
func (r *Runner) processCategory(ctx context.Context, cs findings.CategorySheet, st *store.ImageStore, excelDir, htmlDir string) error {
	r.logger.Info("processing category", zap.String("category", cs.Category), zap.Int("rows", len(cs.Rows)))

	if err := r.dirs.Empty(r.logger); err != nil {
		return fmt.Errorf("empty work dirs: %w", err)
	}
	st.Flush()

	r.scheduler.Acquire(ctx, cs, st)

	if err := r.processor.Process(r.dirs.Download, r.dirs.Processed); err != nil {
		return err
	}

	outPath := filepath.Join(excelDir, cs.Category+".xlsx")
	r.logger.Info("saving workbook", zap.String("path", outPath))
	if err := r.embedder.Write(cs, r.dirs.Processed, outPath); err != nil {
		return err
	}

	rep, err := r.assembler.Assemble(outPath, st)
	if err != nil {
		return err
	}

	htmlPath := filepath.Join(htmlDir, "informe_"+cs.Category+".html")
	out, err := os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("create report %s: %w", htmlPath, err)
	}
	defer out.Close()
	if err := r.renderer.Render(rep, cs.Category, out); err != nil {
		return err
	}
	r.logger.Info("report generated", zap.String("path", htmlPath))
	return nil
}

func (r *Runner) ensureResultsDirs() (string, string, error) {
	root := r.cfg.Output.ResultsDir
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", fmt.Errorf("resolve home dir: %w", err)
		}
		root = filepath.Join(home, "Desktop", defaultResultsFolder)
	}
	excelDir := filepath.Join(root, r.cfg.Output.ExcelSubdir)
	htmlDir := filepath.Join(root, r.cfg.Output.HTMLSubdir)
	for _, dir := range []string{root, excelDir, htmlDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", "", fmt.Errorf("create results dir %s: %w", dir, err)
		}
	}
	return excelDir, htmlDir, nil
}

func (r *Runner) cleanup() {
	if err := r.dirs.Remove(); err != nil {
		r.logger.Error("cleanup scratch tree failed", zap.Error(err))
		return
	}
	r.logger.Info("scratch tree removed", zap.String("root", r.dirs.Root))
}
