package engine

import (
	"context"
	"fmt"
	"strings"

	"tradewind/internal/market"
)

// Pair is an ordered (source, destination) candidate.
type Pair struct {
	Source      market.Station
	Destination market.Station
}

// SelectSources resolves the fixed-source station set: stations whose system
// name matches systemName exactly (case-insensitive) when radius is zero,
// otherwise stations within radius light-years of the named system. The
// population should be the full eligible station list, pre-sampling.
func SelectSources(ctx context.Context, repo MarketRepository, population []market.Station, systemName string, radius float64) ([]market.Station, error) {
	center, err := repo.SystemByName(ctx, systemName)
	if err != nil {
		return nil, err
	}

	if radius <= 0 {
		var sources []market.Station
		for _, st := range population {
			if strings.EqualFold(st.SystemName, center.Name) {
				sources = append(sources, st)
			}
		}
		return sources, nil
	}

	systems, err := repo.SystemsWithinRadius(ctx, center, radius)
	if err != nil {
		return nil, fmt.Errorf("sources within %.1f ly of %s: %w", radius, center.Name, err)
	}
	within := make(map[int64]bool, len(systems))
	for _, sys := range systems {
		within[sys.ID] = true
	}
	var sources []market.Station
	for _, st := range population {
		if within[st.SystemID] {
			sources = append(sources, st)
		}
	}
	return sources, nil
}

// EnumeratePairs produces the candidate pairs to evaluate. With no fixed
// sources every ordered pair (A, B), A ≠ B, from the sample is a candidate.
// With fixed sources, candidates are each source against every other station
// in the sample, optionally dropping pairs whose systems are further apart
// than maxDestLY.
func EnumeratePairs(sample []market.Station, sources []market.Station, maxDestLY float64) []Pair {
	if sources == nil {
		pairs := make([]Pair, 0, len(sample)*(len(sample)-1))
		for _, a := range sample {
			for _, b := range sample {
				if a.ID == b.ID {
					continue
				}
				pairs = append(pairs, Pair{Source: a, Destination: b})
			}
		}
		return pairs
	}

	var pairs []Pair
	for _, src := range sources {
		for _, dst := range sample {
			if src.ID == dst.ID {
				continue
			}
			if maxDestLY > 0 && src.DistanceTo(dst) > maxDestLY {
				continue
			}
			pairs = append(pairs, Pair{Source: src, Destination: dst})
		}
	}
	return pairs
}
