package model

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// PredictBatch runs inference over inputs on up to threads workers.
// Result rows keep the order of inputs.
func PredictBatch(ctx context.Context, n *Network, inputs [][]float64, threads int) ([][]float64, error) {
	var result = make([][]float64, len(inputs))
	var index int32 = -1
	g, ctx := errgroup.WithContext(ctx)
	var workers = max(1, min(threads, len(inputs)))
	for w := 0; w < workers; w++ {
		var worker = n
		if w > 0 {
			worker = n.ThreadCopy(nil)
		}
		g.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				var i = int(atomic.AddInt32(&index, 1))
				if i >= len(inputs) {
					return nil
				}
				var output, err = worker.Predict(inputs[i])
				if err != nil {
					return fmt.Errorf("sample %v: %w", i, err)
				}
				result[i] = output
			}
		})
	}
	var err = g.Wait()
	if err != nil {
		return nil, err
	}
	return result, nil
}
