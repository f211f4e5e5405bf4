package evo

import (
	"context"
	"fmt"
	"sync"

	"genenet/internal/model"
	"genenet/internal/nn"
)

// Train scores every member against inputSets, keeps the best one and then
// produces the next generation. The returned network is detached from the
// new member list. A panic raised by fn is re-raised on the caller's goroutine.
func (p *Population) Train(ctx context.Context, inputSets [][]float64, fn nn.FitnessFunc) (*nn.Network, model.GenerationDiagnostics, error) {
	if fn == nil {
		return nil, model.GenerationDiagnostics{}, fmt.Errorf("%w: fitness function is required", nn.ErrConfiguration)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.evaluate(ctx, inputSets, fn); err != nil {
		return nil, model.GenerationDiagnostics{}, err
	}
	top := best(p.members)
	diagnostics := Summarize(p.generation, p.members)
	if err := p.offspring(); err != nil {
		return nil, model.GenerationDiagnostics{}, err
	}
	return top, diagnostics, nil
}

func (p *Population) evaluate(ctx context.Context, inputSets [][]float64, fn nn.FitnessFunc) error {
	type result struct {
		idx       int
		err       error
		panicked  bool
		recovered any
	}

	members := p.members
	jobs := make(chan int)
	results := make(chan result, len(members))

	workerCount := p.workers
	if workerCount > len(members) {
		workerCount = len(members)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res := result{idx: idx}
				func() {
					defer func() {
						if r := recover(); r != nil {
							res.panicked = true
							res.recovered = r
						}
					}()
					res.err = members[idx].UpdateFitness(inputSets, fn)
				}()
				results <- res
			}
		}()
	}

dispatch:
	for i := range members {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)

	wg.Wait()
	close(results)

	var failed *result
	for res := range results {
		if res.panicked {
			panic(res.recovered)
		}
		if res.err != nil && (failed == nil || res.idx < failed.idx) {
			res := res
			failed = &res
		}
	}
	if failed != nil {
		return failed.err
	}
	return ctx.Err()
}
