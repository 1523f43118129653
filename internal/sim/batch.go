package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Job is one independent run of a batch. Each job needs its own Simulator
// since metrics are stateful.
type Job struct {
	Name   string
	Sim    *Simulator
	Config Config
}

// RunBatch executes independent jobs concurrently, at most limit at a time
// (GOMAXPROCS when limit <= 0). Results are returned in job order. The
// first failure cancels the remaining jobs.
func RunBatch(ctx context.Context, jobs []Job, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, job := range jobs {
		g.Go(func() error {
			res, err := job.Sim.Run(ctx, job.Config)
			if err != nil {
				return fmt.Errorf("%s: %w", job.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
