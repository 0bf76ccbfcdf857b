package engine

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"time"

	"tradewind/internal/config"
	"tradewind/internal/market"
)

// Sampler selects the working subset of stations for one run. The fleet
// carrier pattern is injected at construction; the sampler holds no global
// state.
type Sampler struct {
	carrier *regexp.Regexp
	pads    map[string]bool
	rng     *rand.Rand
}

// NewSampler creates a sampler excluding stations whose name matches the
// carrier pattern and, when pads is non-empty, stations outside the pad set.
func NewSampler(carrier *regexp.Regexp, pads []string) *Sampler {
	return NewSeededSampler(carrier, pads, time.Now().UnixNano())
}

// NewSeededSampler is NewSampler with a fixed seed, for reproducible runs
// and tests.
func NewSeededSampler(carrier *regexp.Regexp, pads []string, seed int64) *Sampler {
	padSet := make(map[string]bool, len(pads))
	for _, p := range pads {
		padSet[p] = true
	}
	return &Sampler{
		carrier: carrier,
		pads:    padSet,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Eligible filters the population down to stations that can anchor a trade:
// market and system identities present, not a fleet carrier, pad accepted.
func (s *Sampler) Eligible(stations []market.Station) []market.Station {
	eligible := make([]market.Station, 0, len(stations))
	for _, st := range stations {
		if !st.Tradeable() {
			continue
		}
		if s.carrier != nil && s.carrier.MatchString(st.Name) {
			continue
		}
		if len(s.pads) > 0 && !s.pads[st.LandingPad] {
			continue
		}
		eligible = append(eligible, st)
	}
	return eligible
}

// Sample draws a uniform without-replacement sample of
// floor(fraction × population) stations from the already-filtered
// population. When the population is smaller than the requested size the
// whole population is returned.
func (s *Sampler) Sample(population []market.Station, fraction float64) ([]market.Station, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("%w: sample fraction must be in (0, 1], got %v", config.ErrConfig, fraction)
	}
	size := int(math.Floor(fraction * float64(len(population))))
	if size >= len(population) {
		out := make([]market.Station, len(population))
		copy(out, population)
		return out, nil
	}
	sample := make([]market.Station, 0, size)
	for _, i := range s.rng.Perm(len(population))[:size] {
		sample = append(sample, population[i])
	}
	return sample, nil
}

// AppendFixed appends fixed-source stations to a random sample, skipping any
// already present, so fixed sources are evaluated against the full random
// background and no station is resolved twice.
func AppendFixed(sample, fixed []market.Station) []market.Station {
	seen := make(map[int64]bool, len(sample))
	for _, st := range sample {
		seen[st.ID] = true
	}
	out := sample
	for _, st := range fixed {
		if seen[st.ID] {
			continue
		}
		seen[st.ID] = true
		out = append(out, st)
	}
	return out
}
