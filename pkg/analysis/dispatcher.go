package analysis

import (
	"errors"
	"fmt"
	"sync"
)

// ErrWorker wraps a failed column task. A single failure aborts the whole
// image's analysis rather than silently dropping a column.
var ErrWorker = errors.New("analysis: column task failed")

type columnTask struct {
	pos int
	col []float64
}

type columnResult struct {
	pos int
	vec []float64
	err error
}

// dispatchColumns applies the column analyzer to the listed image columns on
// a fixed-size worker pool. The returned slice preserves submission order:
// out[i] belongs to cols[i], whatever order the workers finished in, because
// the aggregator reshapes the flat list positionally.
func dispatchColumns(sp *spectrum, img [][]float64, cols []int, workers int) ([][]float64, error) {
	if workers < 1 {
		workers = 1
	}

	tasks := make(chan columnTask)
	results := make(chan columnResult, len(cols))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				vec, err := sp.analyzeColumn(t.col)
				results <- columnResult{pos: t.pos, vec: vec, err: err}
			}
		}()
	}

	go func() {
		for pos, j := range cols {
			col := make([]float64, len(img))
			for i := range img {
				col[i] = img[i][j]
			}
			tasks <- columnTask{pos: pos, col: col}
		}
		close(tasks)
		wg.Wait()
		close(results)
	}()

	out := make([][]float64, len(cols))
	for res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("%w: column %d: %v", ErrWorker, cols[res.pos], res.err)
		}
		out[res.pos] = res.vec
	}
	return out, nil
}
