// Package acquire discovers download tasks and runs them on a bounded pool.
package acquire

import (
	"context"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dmorenoc/cronograma/internal/findings"
	"github.com/dmorenoc/cronograma/internal/store"
)

// Stats aggregates one category's acquisition outcome.
type Stats struct {
	Total     int
	Succeeded int
}

// Scheduler scans a category's rows for image URLs and dispatches the
// resulting tasks to a fixed-size worker pool. The pool size is decided
// once at process start and shared across categories.
type Scheduler struct {
	fetcher findings.Fetcher
	workers int
	columns []int
	logger  *zap.Logger
}

// New builds a Scheduler scanning the given 0-based cell indexes.
func New(fetcher findings.Fetcher, workers int, columns []int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		fetcher: fetcher,
		workers: workers,
		columns: columns,
		logger:  logger,
	}
}

// Acquire runs every discovered task and records successes in st under
// "{row}_{col}". It blocks until all tasks for the category complete;
// failed tasks leave no entry and never abort their siblings.
func (s *Scheduler) Acquire(ctx context.Context, sheet findings.CategorySheet, st *store.ImageStore) Stats {
	tasks := s.scan(sheet)
	if len(tasks) == 0 {
		s.logger.Warn("no image urls found", zap.String("category", sheet.Category))
		return Stats{}
	}

	var succeeded atomic.Int64
	eg := &errgroup.Group{}
	eg.SetLimit(s.workers)
	for _, task := range tasks {
		task := task
		eg.Go(func() error {
			s.runTask(ctx, task, st, &succeeded)
			return nil
		})
	}
	// Task funcs never return errors; Wait only drains the pool.
	_ = eg.Wait()

	stats := Stats{Total: len(tasks), Succeeded: int(succeeded.Load())}
	s.logger.Info("image acquisition complete",
		zap.String("category", sheet.Category),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("total", stats.Total),
	)
	return stats
}

func (s *Scheduler) runTask(ctx context.Context, task findings.DownloadTask, st *store.ImageStore, succeeded *atomic.Int64) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("download task panicked",
				zap.Int("row", task.Key.Row),
				zap.Int("col", task.Key.Col),
				zap.String("url", task.URL),
				zap.Any("panic", r),
			)
		}
	}()

	result, err := s.fetcher.Fetch(ctx, task)
	if err != nil {
		s.logger.Error("image download failed",
			zap.Int("row", task.Key.Row),
			zap.Int("col", task.Key.Col),
			zap.String("url", task.URL),
			zap.Error(err),
		)
		return
	}
	st.Put(task.Key, result.Base64)
	succeeded.Add(1)
}

func (s *Scheduler) scan(sheet findings.CategorySheet) []findings.DownloadTask {
	var tasks []findings.DownloadTask
	for i, row := range sheet.Rows {
		rowNum := sheet.DataRowNumber(i)
		for _, col := range s.columns {
			if col >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[col])
			if !strings.HasPrefix(value, "http") {
				continue
			}
			tasks = append(tasks, findings.DownloadTask{
				URL: value,
				Key: findings.ImageKey{Row: rowNum, Col: col},
			})
		}
	}
	return tasks
}
