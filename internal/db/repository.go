package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradewind/internal/market"
)

// ErrSystemNotFound is returned when a named system does not exist in the
// backing store. Callers surface it as a user-correctable condition.
var ErrSystemNotFound = errors.New("system not found")

// Stations returns every station eligible for trading: market and system
// identities present, system name and coordinates resolved. When pads is
// non-empty the result is restricted to stations with a matching pad code.
func (s *Store) Stations(ctx context.Context, pads []string) ([]market.Station, error) {
	query := `
		SELECT st.id, st.name, st.distance_to_arrival, st.market_id, st.system_id,
		       st.landing_pad, sy.name, sy.x, sy.y, sy.z
		FROM stations st
		JOIN systems sy ON sy.id = st.system_id
		WHERE st.market_id IS NOT NULL AND st.system_id IS NOT NULL`
	args := make([]interface{}, 0, len(pads))
	if len(pads) > 0 {
		query += fmt.Sprintf(" AND st.landing_pad IN (%s)", placeholders(len(pads)))
		for _, p := range pads {
			args = append(args, p)
		}
	}

	rows, err := s.sql.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer rows.Close()

	var stations []market.Station
	for rows.Next() {
		var st market.Station
		var dist sql.NullFloat64
		var pad sql.NullString
		if err := rows.Scan(&st.ID, &st.Name, &dist, &st.MarketID, &st.SystemID,
			&pad, &st.SystemName, &st.X, &st.Y, &st.Z); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		st.DistanceToArrival = dist.Float64
		st.LandingPad = pad.String
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stations: %w", err)
	}
	return stations, nil
}

// SystemByName looks a system up by case-insensitive name. Concurrent
// lookups for the same name are collapsed into one query.
func (s *Store) SystemByName(ctx context.Context, name string) (market.System, error) {
	v, err, _ := s.flight.Do(strings.ToLower(name), func() (interface{}, error) {
		var sys market.System
		row := s.sql.QueryRowContext(ctx, s.rebind(`
			SELECT id, name, x, y, z, date
			FROM systems
			WHERE LOWER(name) = LOWER(?)`), name)
		if err := row.Scan(&sys.ID, &sys.Name, &sys.X, &sys.Y, &sys.Z, &sys.Updated); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return market.System{}, fmt.Errorf("%w: %q", ErrSystemNotFound, name)
			}
			return market.System{}, fmt.Errorf("query system %q: %w", name, err)
		}
		return sys, nil
	})
	if err != nil {
		return market.System{}, err
	}
	return v.(market.System), nil
}

// SystemsWithinRadius returns every system within radius light-years of the
// center, center included. The distance predicate runs in SQL.
func (s *Store) SystemsWithinRadius(ctx context.Context, center market.System, radius float64) ([]market.System, error) {
	rows, err := s.sql.QueryContext(ctx, s.rebind(`
		SELECT id, name, x, y, z, date
		FROM systems
		WHERE (x-?)*(x-?) + (y-?)*(y-?) + (z-?)*(z-?) <= ?`),
		center.X, center.X, center.Y, center.Y, center.Z, center.Z, radius*radius)
	if err != nil {
		return nil, fmt.Errorf("query systems within %.1f ly: %w", radius, err)
	}
	defer rows.Close()

	var systems []market.System
	for rows.Next() {
		var sys market.System
		if err := rows.Scan(&sys.ID, &sys.Name, &sys.X, &sys.Y, &sys.Z, &sys.Updated); err != nil {
			return nil, fmt.Errorf("scan system: %w", err)
		}
		systems = append(systems, sys)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate systems: %w", err)
	}
	return systems, nil
}

// Listings returns the raw commodity listings for a market at or after the
// cutoff. Zero rows is a valid result (an empty market, not an error); the
// caller reduces duplicates per name most-recent-wins.
func (s *Store) Listings(ctx context.Context, marketID int64, cutoff time.Time) ([]market.Commodity, error) {
	rows, err := s.sql.QueryContext(ctx, s.rebind(`
		SELECT market_id, name, mean_price, buy_price, sell_price,
		       demand, demand_bracket, stock, stock_bracket, listed_at
		FROM listings
		WHERE market_id = ? AND listed_at >= ?`), marketID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query listings for market %d: %w", marketID, err)
	}
	defer rows.Close()

	var listings []market.Commodity
	for rows.Next() {
		var c market.Commodity
		if err := rows.Scan(&c.MarketID, &c.Name, &c.MeanPrice, &c.BuyPrice, &c.SellPrice,
			&c.Demand, &c.DemandBracket, &c.Stock, &c.StockBracket, &c.ListedAt); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}

// CheapestListings returns, cheapest first, the current (most recent per
// market) listings selling a commodity with at least minQuantity in stock.
// Name matching is case-insensitive. Pad filtering matches Stations.
func (s *Store) CheapestListings(ctx context.Context, name string, cutoff time.Time, minQuantity int, pads []string) ([]market.CheapestListing, error) {
	query := `
		SELECT st.name, sy.name, st.landing_pad, l.buy_price, l.stock, l.listed_at
		FROM listings l
		JOIN stations st ON st.market_id = l.market_id
		JOIN systems sy ON sy.id = st.system_id
		WHERE LOWER(l.name) = LOWER(?)
		  AND l.listed_at >= ?
		  AND l.stock >= ?
		  AND l.buy_price > 0
		  AND l.listed_at = (
			SELECT MAX(l2.listed_at) FROM listings l2
			WHERE l2.market_id = l.market_id AND l2.name = l.name
		  )`
	args := []interface{}{name, cutoff, minQuantity}
	if len(pads) > 0 {
		query += fmt.Sprintf(" AND st.landing_pad IN (%s)", placeholders(len(pads)))
		for _, p := range pads {
			args = append(args, p)
		}
	}
	query += " ORDER BY l.buy_price ASC, st.name ASC"

	rows, err := s.sql.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query cheapest %q: %w", name, err)
	}
	defer rows.Close()

	var listings []market.CheapestListing
	for rows.Next() {
		var cl market.CheapestListing
		var pad sql.NullString
		if err := rows.Scan(&cl.StationName, &cl.SystemName, &pad, &cl.BuyPrice, &cl.Stock, &cl.ListedAt); err != nil {
			return nil, fmt.Errorf("scan cheapest listing: %w", err)
		}
		cl.LandingPad = pad.String
		listings = append(listings, cl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cheapest listings: %w", err)
	}
	return listings, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
