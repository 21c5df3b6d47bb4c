package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image2layout/internal/imaging"
	"github.com/ironsheep/image2layout/internal/layout"
)

// Job is one image to convert into a named cell.
type Job struct {
	Path string `json:"path"`
	Cell string `json:"cell"`
}

// Jobs pairs every path with a cell name. A single image goes into cell when it is
// not empty. Otherwise each image gets a cell named after its file stem, with a
// numeric suffix when the name is already taken.
func Jobs(paths []string, cell string) []Job {
	if len(paths) == 1 && cell != "" {
		return []Job{{Path: paths[0], Cell: cell}}
	}

	jobs := make([]Job, len(paths))
	taken := make(map[string]bool)
	for i, p := range paths {
		stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		name := stem
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", stem, n)
		}
		taken[name] = true
		jobs[i] = Job{Path: p, Cell: name}
	}
	return jobs
}

// BatchResult holds the outcome of every job, indexed like the input.
type BatchResult struct {
	Results []*Result
	Errors  []error
}

// Failed returns the number of jobs that returned an error.
func (b *BatchResult) Failed() int {
	n := 0
	for _, err := range b.Errors {
		if err != nil {
			n++
		}
	}
	return n
}

// Polygons returns the number of polygons produced by all successful jobs.
func (b *BatchResult) Polygons() int {
	n := 0
	for _, r := range b.Results {
		if r != nil {
			n += len(r.Polygons)
		}
	}
	return n
}

// RunBatch converts the jobs concurrently into cells of lib, at most workers at a
// time (zero means one per CPU).
//
// A failing job does not stop the others: its error is stored in BatchResult.Errors
// and no cell is created for it. The returned error is non-nil only when ctx is cancelled.
func RunBatch(ctx context.Context, cache *imaging.ImageCache, lib *layout.Library, jobs []Job, opts Options, workers int) (*BatchResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := opts.logger()

	batch := &BatchResult{
		Results: make([]*Result, len(jobs)),
		Errors:  make([]error, len(jobs)),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result, err := Convert(gctx, cache, job.Path, lib, job.Cell, opts)
			cache.Evict(job.Path)

			mu.Lock()
			batch.Results[i], batch.Errors[i] = result, err
			mu.Unlock()

			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Error("conversion failed", "path", job.Path, "err", err)
				return nil
			}
			logger.Info("converted", "path", job.Path, "cell", job.Cell, "polygons", len(result.Polygons))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return batch, err
	}
	return batch, nil
}
