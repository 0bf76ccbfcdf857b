package engine

import (
	"context"
	"time"

	"tradewind/internal/market"
)

// CheapestParams configures a cheapest-seller search.
type CheapestParams struct {
	Name        string
	Cutoff      time.Time
	MinQuantity int
	Pads        []string
	Limit       int
}

// FindCheapest returns up to Limit stations currently selling the commodity,
// cheapest first. Fleet carriers are excluded from the search.
func (p *Planner) FindCheapest(ctx context.Context, params CheapestParams) ([]market.CheapestListing, error) {
	listings, err := p.Repo.CheapestListings(ctx, params.Name, params.Cutoff, params.MinQuantity, params.Pads)
	if err != nil {
		return nil, err
	}

	kept := make([]market.CheapestListing, 0, params.Limit)
	for _, l := range listings {
		if p.Sampler.carrier != nil && p.Sampler.carrier.MatchString(l.StationName) {
			continue
		}
		kept = append(kept, l)
		if len(kept) == params.Limit {
			break
		}
	}
	return kept, nil
}
