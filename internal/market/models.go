package market

import (
	"math"
	"sort"
	"time"
)

// Station is a trade location inside a system. Stations are loaded once per
// run and never mutated afterwards; every concurrent pair evaluation shares
// them read-only.
type Station struct {
	ID                int64
	Name              string
	DistanceToArrival float64 // light-seconds from the main star, 0 when unrecorded
	MarketID          int64   // 0 when the station has no market
	SystemID          int64   // 0 when the station is orphaned
	SystemName        string
	LandingPad        string // "S", "M" or "L"; empty when unrecorded

	// Owning system coordinates (light-years), carried from the system join
	// so pair distance checks don't need a second lookup.
	X, Y, Z float64
}

// Tradeable reports whether the station can take part in a trade route.
// A station without a market or without a resolved system cannot.
func (s Station) Tradeable() bool {
	return s.MarketID != 0 && s.SystemID != 0
}

// DistanceTo returns the straight-line distance in light-years between the
// systems of two stations.
func (s Station) DistanceTo(o Station) float64 {
	dx := s.X - o.X
	dy := s.Y - o.Y
	dz := s.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// System is a point in 3-D space containing zero or more stations.
type System struct {
	ID      int64
	Name    string
	X, Y, Z float64
	Updated time.Time
}

// DistanceTo returns the straight-line distance in light-years to another system.
func (s System) DistanceTo(o System) float64 {
	dx := s.X - o.X
	dy := s.Y - o.Y
	dz := s.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Commodity is a timestamped price/stock listing for one good at one market.
type Commodity struct {
	MarketID      int64
	Name          string
	MeanPrice     int
	BuyPrice      int
	SellPrice     int
	Demand        int
	DemandBracket int
	Stock         int
	StockBracket  int
	ListedAt      time.Time
}

// StationMarket is a station paired with its current commodity snapshot,
// one entry per distinct commodity name (most recent listing wins). Built
// once per station per run and read-only afterwards.
type StationMarket struct {
	Station     Station
	commodities map[string]Commodity
}

// NewStationMarket reduces raw listings into a snapshot. When several
// listings share a name, the one with the latest ListedAt is kept.
func NewStationMarket(station Station, listings []Commodity) *StationMarket {
	byName := make(map[string]Commodity, len(listings))
	for _, c := range listings {
		cur, ok := byName[c.Name]
		if !ok || c.ListedAt.After(cur.ListedAt) {
			byName[c.Name] = c
		}
	}
	return &StationMarket{Station: station, commodities: byName}
}

// Commodity looks up the current listing for a commodity name.
func (m *StationMarket) Commodity(name string) (Commodity, bool) {
	c, ok := m.commodities[name]
	return c, ok
}

// Names returns the commodity names in the snapshot, sorted.
func (m *StationMarket) Names() []string {
	names := make([]string, 0, len(m.commodities))
	for name := range m.commodities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of distinct commodities in the snapshot.
func (m *StationMarket) Len() int {
	return len(m.commodities)
}

// Order is a commodity and the quantity to buy at the source station.
// Zero-quantity orders are valid; reporting skips them.
type Order struct {
	CommodityName string
	Count         int
}

// TradeSolution is the profit-maximizing cargo manifest for one
// (source, destination) pair. Profit and Cost keep the solver's fractional
// values; callers needing exact reconciliation must recompute from the
// floored order counts.
type TradeSolution struct {
	Source      Station
	Destination Station
	Buy         []Order
	Profit      float64
	Cost        float64
}

// CheapestListing is one row of a cheapest-seller search: where a commodity
// can currently be bought, and at what price.
type CheapestListing struct {
	StationName string
	SystemName  string
	LandingPad  string
	BuyPrice    int
	Stock       int
	ListedAt    time.Time
}
