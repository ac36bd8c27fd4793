package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

type Options struct {
	SimCount     int
	PlayoffSlots int
	// Workers defaults to the number of CPUs.
	Workers int
	// Seed makes a run reproducible. A nil seed is drawn at random and
	// reported in the Result.
	Seed   *uint64
	Logger *slog.Logger
}

type Result struct {
	Plan         *Plan
	Tally        *Tally
	Seed         uint64
	SimCount     int
	PlayoffSlots int
	Duration     time.Duration
}

// Run simulates opts.SimCount independent seasons across a pool of
// workers. Trials are split into contiguous chunks, each worker keeps its
// own tally and the tallies are merged in chunk order. Rank counts are
// identical for any worker count under the same seed.
func Run(ctx context.Context, plan *Plan, opts Options) (*Result, error) {
	if opts.SimCount <= 0 {
		return nil, fmt.Errorf("sim count must be positive, got %d", opts.SimCount)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, opts.SimCount)

	var seed uint64
	if opts.Seed != nil {
		seed = *opts.Seed
	} else {
		seed = rand.Uint64()
	}

	logger.Info("Starting simulation",
		"trials", opts.SimCount,
		"workers", workers,
		"seed", seed,
		"teams", len(plan.Teams),
		"weeks", plan.Weeks())
	start := time.Now()

	pool := newTrialPool(len(plan.Teams), plan.Weeks())
	tallies := make([]*Tally, workers)
	chunk := opts.SimCount / workers
	extra := opts.SimCount % workers

	g, ctx := errgroup.WithContext(ctx)
	first := 0
	for w := range workers {
		size := chunk
		if w < extra {
			size++
		}
		from, to := first, first+size
		first = to

		g.Go(func() error {
			local := NewTally(len(plan.Teams))
			t := pool.get()
			defer pool.put(t)
			for n := from; n < to; n++ {
				if (n-from)%256 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				local.Record(t.run(plan, seed, n))
			}
			tallies[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := NewTally(len(plan.Teams))
	for _, local := range tallies {
		if err := total.Merge(local); err != nil {
			return nil, err
		}
	}

	duration := time.Since(start)
	logger.Info("Simulation finished", "trials", total.Trials(), "duration", duration)

	return &Result{
		Plan:         plan,
		Tally:        total,
		Seed:         seed,
		SimCount:     opts.SimCount,
		PlayoffSlots: min(max(opts.PlayoffSlots, 0), len(plan.Teams)),
		Duration:     duration,
	}, nil
}
