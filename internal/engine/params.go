// Package engine finds profitable single-hop trade routes: it samples
// stations, resolves their markets concurrently, enumerates candidate
// source/destination pairs and solves a bounded allocation problem per pair.
package engine

import (
	"context"
	"time"

	"tradewind/internal/market"
)

// MarketRepository is the read-only boundary to the backing market store.
// Implementations must tolerate concurrent calls up to ConnBudget.
type MarketRepository interface {
	// Stations returns trade-eligible stations (market and system present),
	// optionally restricted to the given landing-pad codes.
	Stations(ctx context.Context, pads []string) ([]market.Station, error)
	// SystemByName resolves a system by case-insensitive name.
	SystemByName(ctx context.Context, name string) (market.System, error)
	// SystemsWithinRadius returns systems within radius light-years of center.
	SystemsWithinRadius(ctx context.Context, center market.System, radius float64) ([]market.System, error)
	// Listings returns listings for a market at/after the cutoff. No rows is
	// an empty market, not an error.
	Listings(ctx context.Context, marketID int64, cutoff time.Time) ([]market.Commodity, error)
	// CheapestListings returns current listings selling a commodity,
	// cheapest first.
	CheapestListings(ctx context.Context, name string, cutoff time.Time, minQuantity int, pads []string) ([]market.CheapestListing, error)
	// ConnBudget is the number of simultaneous retrievals the store accepts.
	ConnBudget() int
}

// Params configures a single route computation run. Consistency checks
// (fraction range, radius requiring a source) happen in the config layer
// before the engine is invoked.
type Params struct {
	Capital        uint64
	Capacity       uint
	SampleFraction float64
	Pads           []string // allowed landing-pad codes, empty = no filter
	SourceSystem   string   // empty = whole-galaxy random sample
	RadiusLY       float64
	MaxDestLY      float64
	Cutoff         time.Time
	TopK           int
}
