package market

import (
	"testing"
	"time"
)

func listing(name string, buy, sell, stock int, listedAt time.Time) Commodity {
	return Commodity{
		MarketID:  1,
		Name:      name,
		MeanPrice: (buy + sell) / 2,
		BuyPrice:  buy,
		SellPrice: sell,
		Stock:     stock,
		ListedAt:  listedAt,
	}
}

func TestNewStationMarket_MostRecentWins(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewStationMarket(Station{ID: 1}, []Commodity{
		listing("Gold", 100, 120, 5, t0),
		listing("Gold", 110, 130, 7, t0.Add(48*time.Hour)),
		listing("Gold", 105, 125, 6, t0.Add(24*time.Hour)),
		listing("Silver", 50, 60, 3, t0),
	})

	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	gold, ok := m.Commodity("Gold")
	if !ok {
		t.Fatal("Gold not found")
	}
	if gold.BuyPrice != 110 || gold.Stock != 7 {
		t.Errorf("Gold = buy %d stock %d, want buy 110 stock 7", gold.BuyPrice, gold.Stock)
	}
	if !gold.ListedAt.Equal(t0.Add(48 * time.Hour)) {
		t.Errorf("Gold.ListedAt = %v, want most recent", gold.ListedAt)
	}
}

func TestStationMarket_NamesSorted(t *testing.T) {
	now := time.Now()
	m := NewStationMarket(Station{}, []Commodity{
		listing("Silver", 1, 2, 1, now),
		listing("Gold", 1, 2, 1, now),
		listing("Tritium", 1, 2, 1, now),
	})
	names := m.Names()
	want := []string{"Gold", "Silver", "Tritium"}
	if len(names) != len(want) {
		t.Fatalf("Names len = %d, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestStationMarket_MissingCommodity(t *testing.T) {
	m := NewStationMarket(Station{}, nil)
	if _, ok := m.Commodity("Gold"); ok {
		t.Error("Commodity on empty market returned ok")
	}
}

func TestStation_Tradeable(t *testing.T) {
	cases := []struct {
		name     string
		marketID int64
		systemID int64
		want     bool
	}{
		{"both present", 10, 20, true},
		{"no market", 0, 20, false},
		{"no system", 10, 0, false},
		{"neither", 0, 0, false},
	}
	for _, c := range cases {
		st := Station{MarketID: c.marketID, SystemID: c.systemID}
		if got := st.Tradeable(); got != c.want {
			t.Errorf("%s: Tradeable = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSystem_DistanceTo(t *testing.T) {
	a := System{X: 0, Y: 0, Z: 0}
	b := System{X: 3, Y: 4, Z: 12}
	if d := a.DistanceTo(b); d != 13 {
		t.Errorf("DistanceTo = %v, want 13", d)
	}
	if d := b.DistanceTo(a); d != 13 {
		t.Errorf("DistanceTo (reversed) = %v, want 13", d)
	}
}

func TestStation_DistanceTo(t *testing.T) {
	a := Station{X: 1, Y: 1, Z: 1}
	b := Station{X: 1, Y: 1, Z: 1}
	if d := a.DistanceTo(b); d != 0 {
		t.Errorf("DistanceTo same coords = %v, want 0", d)
	}
}
