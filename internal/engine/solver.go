package engine

import (
	"math"

	"tradewind/internal/market"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// profitEpsilon guards against reporting all-zero manifests produced by
// solver round-off as profitable routes.
const profitEpsilon = 1e-6

// Solve computes the profit-maximizing cargo manifest for one pair: integer
// quantities of each commodity present in both markets, maximizing
// Σ profitᵢ·xᵢ subject to Σ xᵢ ≤ capacity and Σ buyᵢ·xᵢ ≤ capital, with
// 0 ≤ xᵢ ≤ source stockᵢ.
//
// The continuous relaxation is solved and quantities are floored; Profit and
// Cost keep the solver's fractional values. Negative-profit commodities are
// left to the optimizer, which drives their allocation to zero.
//
// Returns (nil, nil) when the markets share no commodity or no allocation is
// profitable, and (nil, err) on solver failure; neither aborts the run.
func Solve(source, destination *market.StationMarket, capacity uint, capital uint64) (*market.TradeSolution, error) {
	// Overlap by name, sorted (market.Names is) so the formulation and any
	// tie-broken optimum are deterministic.
	var names []string
	var buys, profits, stocks []float64
	for _, name := range source.Names() {
		src, _ := source.Commodity(name)
		dst, ok := destination.Commodity(name)
		if !ok {
			continue
		}
		names = append(names, name)
		buys = append(buys, float64(src.BuyPrice))
		profits = append(profits, float64(dst.SellPrice-src.BuyPrice))
		stocks = append(stocks, math.Max(0, float64(src.Stock)))
	}
	n := len(names)
	if n == 0 {
		return nil, nil
	}

	opt, quantities, err := maximize(profits, buys, stocks, float64(capacity), float64(capital))
	if err != nil {
		return nil, err
	}
	if opt <= profitEpsilon {
		return nil, nil
	}

	orders := make([]market.Order, n)
	cost := 0.0
	for i, x := range quantities {
		count := int(math.Floor(x + 1e-9))
		if count < 0 {
			count = 0
		}
		orders[i] = market.Order{CommodityName: names[i], Count: count}
		cost += buys[i] * x
	}

	return &market.TradeSolution{
		Source:      source.Station,
		Destination: destination.Station,
		Buy:         orders,
		Profit:      opt,
		Cost:        cost,
	}, nil
}

// maximize solves max Σ profitᵢ·xᵢ s.t. Σxᵢ ≤ capacity, Σbuyᵢ·xᵢ ≤ capital,
// 0 ≤ xᵢ ≤ stockᵢ as a standard-form LP: one slack variable per inequality,
// x ≥ 0 enforced by the standard form itself.
func maximize(profits, buys, stocks []float64, capacity, capital float64) (float64, []float64, error) {
	n := len(profits)
	rows := 2 + n  // capacity, capital, one stock bound per commodity
	cols := n + rows

	c := make([]float64, cols)
	for i, p := range profits {
		c[i] = -p // Simplex minimizes
	}

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	for i := 0; i < n; i++ {
		a.Set(0, i, 1)
		a.Set(1, i, buys[i])
		a.Set(2+i, i, 1)
		b[2+i] = stocks[i]
	}
	b[0] = capacity
	b[1] = capital
	for r := 0; r < rows; r++ {
		a.Set(r, n+r, 1) // slack
	}

	opt, x, err := lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		return 0, nil, err
	}
	return -opt, x[:n], nil
}
