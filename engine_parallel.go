package docspell

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/extract"
)

// loadParallel extracts files in two phases:
//
//	Phase A (parallel): parse and extract via a worker pool.
//	Phase B (serial):   merge chunks into one Documentation in path order.
func (e *Engine) loadParallel(ctx context.Context, paths []string) (*Documentation, error) {
	numWorkers := min(runtime.NumCPU(), len(paths))
	if numWorkers < 1 {
		numWorkers = 1
	}

	type workItem struct {
		index int
		path  string
	}
	workCh := make(chan workItem, len(paths))
	for i, path := range paths {
		workCh <- workItem{index: i, path: path}
	}
	close(workCh)

	type result struct {
		item   workItem
		chunks []*doc.Chunk
		err    error
	}
	resultCh := make(chan result, len(paths))

	// ---- Phase A: Parallel extraction ----
	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each FromFile call owns its tree-sitter parser.
			for item := range workCh {
				if err := ctx.Err(); err != nil {
					resultCh <- result{item: item, err: err}
					continue
				}
				chunks, err := extract.FromFile(ctx, item.path)
				resultCh <- result{item: item, chunks: chunks, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// ---- Phase B: Serial merge ----
	byIndex := make([][]*doc.Chunk, len(paths))
	errByIndex := make([]error, len(paths))
	for res := range resultCh {
		if res.err != nil {
			errByIndex[res.item.index] = fmt.Errorf("extract %s: %w", res.item.path, res.err)
			continue
		}
		byIndex[res.item.index] = res.chunks
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Errors are reported in path order, whichever worker finished first.
	var errs []error
	for _, err := range errByIndex {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("parallel extraction had %d error(s): %w", len(errs), errs[0])
	}

	docu := doc.NewDocumentation()
	for i, chunks := range byIndex {
		if len(chunks) > 0 {
			docu.Add(doc.Origin(paths[i]), chunks...)
		}
	}
	e.log.Debugf("extracted %d chunk(s) from %d file(s) with %d worker(s)", docu.ChunkCount(), docu.Len(), numWorkers)
	return docu, nil
}
