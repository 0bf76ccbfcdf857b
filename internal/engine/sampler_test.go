package engine

import (
	"errors"
	"fmt"
	"testing"

	"tradewind/internal/config"
	"tradewind/internal/market"
)

func population(n int) []market.Station {
	stations := make([]market.Station, n)
	for i := range stations {
		stations[i] = testStation(int64(i+1), fmt.Sprintf("Station %d", i+1), "Sol", 0)
	}
	return stations
}

func TestSampler_Eligible(t *testing.T) {
	s := NewSeededSampler(carrierRe, []string{"M", "L"}, 1)
	stations := []market.Station{
		testStation(1, "Galileo", "Sol", 0),                           // kept
		{ID: 2, Name: "No Market Hub", SystemID: 20, LandingPad: "L"}, // no market
		{ID: 3, Name: "Orphan Port", MarketID: 300, LandingPad: "L"},  // no system
		testStation(4, "K7Q-B1L", "Sol", 0),                           // carrier
		{ID: 5, Name: "Tiny Pad", MarketID: 500, SystemID: 50, LandingPad: "S"},
		{ID: 6, Name: "No Pad", MarketID: 600, SystemID: 60},
	}

	eligible := s.Eligible(stations)
	if len(eligible) != 1 || eligible[0].ID != 1 {
		t.Errorf("Eligible = %+v, want only Galileo", eligible)
	}
}

func TestSampler_Eligible_NoPadFilter(t *testing.T) {
	s := NewSeededSampler(carrierRe, nil, 1)
	stations := []market.Station{
		{ID: 5, Name: "Tiny Pad", MarketID: 500, SystemID: 50, LandingPad: "S"},
		{ID: 6, Name: "No Pad", MarketID: 600, SystemID: 60},
	}
	if got := s.Eligible(stations); len(got) != 2 {
		t.Errorf("Eligible without pad filter = %d stations, want 2", len(got))
	}
}

func TestSampler_SampleSizeIsFloor(t *testing.T) {
	s := NewSeededSampler(carrierRe, nil, 1)
	pop := population(10)

	cases := []struct {
		fraction float64
		want     int
	}{
		{0.25, 2},
		{0.5, 5},
		{0.99, 9},
		{1.0, 10},
		{0.05, 0},
	}
	for _, c := range cases {
		sample, err := s.Sample(pop, c.fraction)
		if err != nil {
			t.Fatalf("Sample(%v): %v", c.fraction, err)
		}
		if len(sample) != c.want {
			t.Errorf("Sample(%v) size = %d, want %d", c.fraction, len(sample), c.want)
		}
	}
}

func TestSampler_SampleRejectsBadFraction(t *testing.T) {
	s := NewSeededSampler(carrierRe, nil, 1)
	pop := population(4)
	for _, f := range []float64{0, -0.1, 1.5} {
		if _, err := s.Sample(pop, f); !errors.Is(err, config.ErrConfig) {
			t.Errorf("Sample(%v) err = %v, want ErrConfig", f, err)
		}
	}
}

func TestSampler_SampleWithoutReplacement(t *testing.T) {
	s := NewSeededSampler(carrierRe, nil, 42)
	pop := population(50)
	sample, err := s.Sample(pop, 0.5)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	seen := make(map[int64]bool)
	for _, st := range sample {
		if seen[st.ID] {
			t.Fatalf("station %d sampled twice", st.ID)
		}
		seen[st.ID] = true
	}
}

func TestSampler_SampleWholePopulationCopy(t *testing.T) {
	s := NewSeededSampler(carrierRe, nil, 1)
	pop := population(3)
	sample, err := s.Sample(pop, 1.0)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(sample) != 3 {
		t.Fatalf("size = %d, want 3", len(sample))
	}
	sample[0].Name = "mutated"
	if pop[0].Name == "mutated" {
		t.Error("Sample aliases the population slice")
	}
}

func TestAppendFixed_Dedupes(t *testing.T) {
	sample := population(3)
	fixed := []market.Station{
		sample[1],
		testStation(9, "New Source", "Sol", 0),
		testStation(9, "New Source", "Sol", 0), // duplicate within fixed
	}
	got := AppendFixed(sample, fixed)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[3].ID != 9 {
		t.Errorf("appended station = %+v, want id 9", got[3])
	}
}
