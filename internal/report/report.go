// Package report renders ranked trade solutions as human-readable,
// colorized itineraries. It formats only; all selection and ranking happens
// in the engine.
package report

import (
	"fmt"
	"io"
	"math"

	"tradewind/internal/engine"
	"tradewind/internal/market"

	"github.com/dustin/go-humanize"
)

const (
	reset  = "\x1b[0m"
	bold   = "\x1b[1m"
	green  = "\x1b[32m"
	red    = "\x1b[31m"
	orange = "\x1b[33m"
	dim    = "\x1b[2m"
)

// Itinerary writes the ranked solutions, best first. Zero-quantity orders
// are skipped. The cache supplies listing freshness for each order; cache
// may be nil, in which case freshness is omitted.
func Itinerary(w io.Writer, solutions []market.TradeSolution, cache *engine.MarketCache) {
	if len(solutions) == 0 {
		fmt.Fprintln(w, "No profitable routes found. Try a larger sample or looser filters.")
		return
	}

	for i, sol := range solutions {
		fmt.Fprintf(w, "\n#%d  For %s%s CR%s profit:\n", i+1,
			green, humanize.Comma(int64(math.Round(sol.Profit))), reset)
		// The cost often carries solver noise like .000006, so round it away.
		fmt.Fprintf(w, "    Travel to %s%s%s in %s%s%s and buy (for %s%s CR%s):\n",
			orange, sol.Source.Name, reset,
			orange, sol.Source.SystemName, reset,
			red, humanize.Comma(int64(math.Round(sol.Cost))), reset)

		for _, order := range sol.Buy {
			if order.Count == 0 {
				continue
			}
			fmt.Fprintf(w, "        %5dx  %-32s%s\n", order.Count, order.CommodityName,
				freshness(cache, sol.Source.ID, order.CommodityName))
		}

		fmt.Fprintf(w, "    Then, travel to %s%s%s in %s%s%s and sell.\n",
			orange, sol.Destination.Name, reset,
			orange, sol.Destination.SystemName, reset)
	}
}

func freshness(cache *engine.MarketCache, stationID int64, commodity string) string {
	if cache == nil {
		return ""
	}
	m, ok := cache.Get(stationID)
	if !ok {
		return ""
	}
	c, ok := m.Commodity(commodity)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s(updated %s)%s", dim, humanize.Time(c.ListedAt), reset)
}

// Cheapest writes a cheapest-seller table for one commodity.
func Cheapest(w io.Writer, name string, listings []market.CheapestListing) {
	if len(listings) == 0 {
		fmt.Fprintf(w, "No stations currently selling %q. Try a longer max age.\n", name)
		return
	}

	fmt.Fprintf(w, "\n%sCheapest sellers of %s%s\n", bold, name, reset)
	for i, l := range listings {
		fmt.Fprintf(w, "%3d. %s%-10s CR%s  %-32s %-24s pad %-2s stock %-8s %s(updated %s)%s\n",
			i+1,
			green, humanize.Comma(int64(l.BuyPrice)), reset,
			l.StationName, l.SystemName, l.LandingPad,
			humanize.Comma(int64(l.Stock)),
			dim, humanize.Time(l.ListedAt), reset)
	}
}
