package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tradewind/internal/market"

	"golang.org/x/sync/errgroup"
)

// MarketCache maps station ids to their resolved market snapshots. Entries
// are write-once: after ResolveMarkets returns, the cache is read-only and
// safe to share across every concurrent pair evaluation.
type MarketCache struct {
	mu      sync.Mutex
	markets map[int64]*market.StationMarket
}

// Get returns the resolved market for a station id.
func (c *MarketCache) Get(stationID int64) (*market.StationMarket, bool) {
	m, ok := c.markets[stationID]
	return m, ok
}

// Len returns the number of resolved stations.
func (c *MarketCache) Len() int {
	return len(c.markets)
}

// NonEmpty returns how many resolved markets carry at least one commodity.
func (c *MarketCache) NonEmpty() int {
	n := 0
	for _, m := range c.markets {
		if m.Len() > 0 {
			n++
		}
	}
	return n
}

func (c *MarketCache) put(stationID int64, m *market.StationMarket) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.markets[stationID]; exists {
		return fmt.Errorf("market cache: station %d resolved twice", stationID)
	}
	c.markets[stationID] = m
	return nil
}

// ResolveMarkets fans out listing retrieval over the sampled stations, one
// task per station, bounded by the repository's connection budget. It does
// not return until every station has resolved. A repository error aborts the
// whole phase; a station with no listings simply gets an empty market.
//
// progress, when non-nil, is called once per completed station.
func ResolveMarkets(ctx context.Context, repo MarketRepository, stations []market.Station, cutoff time.Time, progress func(done, total int)) (*MarketCache, error) {
	cache := &MarketCache{markets: make(map[int64]*market.StationMarket, len(stations))}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(repo.ConnBudget())

	var mu sync.Mutex
	done := 0
	total := len(stations)

	for _, st := range stations {
		st := st
		g.Go(func() error {
			listings, err := repo.Listings(ctx, st.MarketID, cutoff)
			if err != nil {
				return fmt.Errorf("resolve market for %s: %w", st.Name, err)
			}
			if err := cache.put(st.ID, market.NewStationMarket(st, listings)); err != nil {
				return err
			}
			if progress != nil {
				mu.Lock()
				done++
				d := done
				mu.Unlock()
				progress(d, total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cache, nil
}
