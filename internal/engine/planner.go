package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"tradewind/internal/logger"
	"tradewind/internal/market"
)

// User-actionable empty-result conditions, distinct from backend failures:
// the filters excluded everything, not the store misbehaving.
var (
	// ErrNoStations means no station survived eligibility and pad filtering.
	ErrNoStations = errors.New("no eligible stations matched the filters")
	// ErrNoSources means a fixed-source constraint matched no station.
	ErrNoSources = errors.New("no stations matched the source constraint")
	// ErrNoMarkets means every resolved market was empty after the recency cutoff.
	ErrNoMarkets = errors.New("no commodities found for the sampled stations")
)

// progressEvery controls how often the solving phase logs progress.
const progressEvery = 5000

// Planner runs the route search end to end: sample, resolve, enumerate,
// solve, rank. The two concurrency regimes stay strictly separated — all
// I/O-bound market resolution completes before CPU-bound solving starts.
type Planner struct {
	Repo    MarketRepository
	Sampler *Sampler
}

// ComputeSingle finds the top-K single-hop routes for the given parameters.
// The cache is returned alongside so the reporting layer can render listing
// details without refetching.
func (p *Planner) ComputeSingle(ctx context.Context, params Params) ([]market.TradeSolution, *MarketCache, error) {
	logger.Info("GALAXY", "Fetching stations")
	stations, err := p.Repo.Stations(ctx, params.Pads)
	if err != nil {
		return nil, nil, err
	}
	eligible := p.Sampler.Eligible(stations)
	if len(eligible) == 0 {
		return nil, nil, ErrNoStations
	}
	logger.Info("GALAXY", fmt.Sprintf("%d stations, %d eligible", len(stations), len(eligible)))

	sample, err := p.Sampler.Sample(eligible, params.SampleFraction)
	if err != nil {
		return nil, nil, err
	}

	// Fixed sources come from the full eligible population and are appended
	// to the random sample, so they are evaluated against the whole random
	// background.
	var sources []market.Station
	if params.SourceSystem != "" {
		sources, err = SelectSources(ctx, p.Repo, eligible, params.SourceSystem, params.RadiusLY)
		if err != nil {
			return nil, nil, err
		}
		if len(sources) == 0 {
			return nil, nil, fmt.Errorf("%w: system %q, radius %.1f ly", ErrNoSources, params.SourceSystem, params.RadiusLY)
		}
		sample = AppendFixed(sample, sources)
	}
	logger.Info("SAMPLE", fmt.Sprintf("Resolving %d station markets (fraction %.3f)", len(sample), params.SampleFraction))

	cache, err := ResolveMarkets(ctx, p.Repo, sample, params.Cutoff, func(done, total int) {
		if done%100 == 0 || done == total {
			logger.Debug("MARKET", fmt.Sprintf("Resolved %d/%d", done, total))
		}
	})
	if err != nil {
		return nil, nil, err
	}
	if cache.NonEmpty() == 0 {
		return nil, nil, ErrNoMarkets
	}
	logger.Success("MARKET", fmt.Sprintf("%d markets resolved, %d with commodities", cache.Len(), cache.NonEmpty()))

	pairs := EnumeratePairs(sample, sources, params.MaxDestLY)
	logger.Info("ROUTE", fmt.Sprintf("Evaluating %d candidate pairs", len(pairs)))

	agg := &Aggregator{}
	p.solveAll(pairs, cache, params, agg)

	logger.Success("ROUTE", fmt.Sprintf("%d profitable routes found", agg.Len()))
	return agg.Top(params.TopK), cache, nil
}

// solveAll evaluates every pair on a worker pool sized to the available CPU
// parallelism. Solver failures are logged and skipped, never fatal.
func (p *Planner) solveAll(pairs []Pair, cache *MarketCache, params Params, agg *Aggregator) {
	workers := runtime.GOMAXPROCS(0)
	work := make(chan Pair)
	var wg sync.WaitGroup
	var done atomic.Int64

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pair := range work {
				src, ok := cache.Get(pair.Source.ID)
				if !ok {
					continue
				}
				dst, ok := cache.Get(pair.Destination.ID)
				if !ok {
					continue
				}
				sol, err := Solve(src, dst, params.Capacity, params.Capital)
				if err != nil {
					logger.Warn("SOLVE", fmt.Sprintf("%s -> %s unsolved: %v", pair.Source.Name, pair.Destination.Name, err))
				} else if sol != nil {
					agg.Push(*sol)
				}
				if d := done.Add(1); d%progressEvery == 0 {
					logger.Debug("SOLVE", fmt.Sprintf("Evaluated %d/%d pairs", d, len(pairs)))
				}
			}
		}()
	}

	for _, pair := range pairs {
		work <- pair
	}
	close(work)
	wg.Wait()
}
