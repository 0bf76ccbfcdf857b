package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"tradewind/internal/market"

	_ "modernc.org/sqlite"
)

// openTestStore opens an in-memory SQLite store with the external snapshot
// schema (for testing only).
func openTestStore(t *testing.T) *Store {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	if _, err := sqlDB.Exec(`
		CREATE TABLE systems (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			x REAL NOT NULL, y REAL NOT NULL, z REAL NOT NULL,
			date TIMESTAMP NOT NULL
		);
		CREATE TABLE stations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			distance_to_arrival REAL,
			market_id INTEGER,
			system_id INTEGER,
			landing_pad TEXT
		);
		CREATE TABLE listings (
			market_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			mean_price INTEGER NOT NULL,
			buy_price INTEGER NOT NULL,
			sell_price INTEGER NOT NULL,
			demand INTEGER NOT NULL,
			demand_bracket INTEGER NOT NULL,
			stock INTEGER NOT NULL,
			stock_bracket INTEGER NOT NULL,
			listed_at TIMESTAMP NOT NULL
		);
	`); err != nil {
		sqlDB.Close()
		t.Fatalf("create schema: %v", err)
	}
	s := &Store{sql: sqlDB, driver: driverSQLite}
	t.Cleanup(func() { s.Close() })
	return s
}

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func seedGalaxy(t *testing.T, s *Store) {
	t.Helper()
	exec := func(query string, args ...interface{}) {
		t.Helper()
		if _, err := s.sql.Exec(query, args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	exec(`INSERT INTO systems (id, name, x, y, z, date) VALUES
		(1, 'Sol', 0, 0, 0, ?),
		(2, 'Barnard''s Star', 6, 0, 0, ?),
		(3, 'Achenar', 100, 100, 100, ?)`, testEpoch, testEpoch, testEpoch)
	exec(`INSERT INTO stations (id, name, distance_to_arrival, market_id, system_id, landing_pad) VALUES
		(10, 'Abraham Lincoln', 496.5, 100, 1, 'L'),
		(11, 'Galileo', 505.0, 101, 1, 'M'),
		(12, 'Miller Depot', 36.2, 102, 2, 'S'),
		(13, 'No Market Hub', 10.0, NULL, 1, 'L'),
		(14, 'Orphan Port', 10.0, 103, NULL, 'L')`)
}

func TestDialect(t *testing.T) {
	if d, _ := dialect("postgres://u:p@localhost/galaxy"); d != driverPostgres {
		t.Errorf("postgres url → %s, want %s", d, driverPostgres)
	}
	if d, _ := dialect("postgresql://localhost/galaxy"); d != driverPostgres {
		t.Errorf("postgresql url → %s, want %s", d, driverPostgres)
	}
	d, dsn := dialect("sqlite://galaxy.db")
	if d != driverSQLite || dsn != "galaxy.db?_pragma=busy_timeout(5000)" {
		t.Errorf("sqlite url → %s %q", d, dsn)
	}
	if _, dsn := dialect("galaxy.db?mode=ro"); dsn != "galaxy.db?mode=ro" {
		t.Errorf("existing query string rewritten: %q", dsn)
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: driverPostgres}
	got := pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?")
	want := "SELECT * FROM t WHERE a = $1 AND b = $2"
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}

	lite := &Store{driver: driverSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
}

func TestStations_EligibilityAndJoin(t *testing.T) {
	s := openTestStore(t)
	seedGalaxy(t, s)

	stations, err := s.Stations(context.Background(), nil)
	if err != nil {
		t.Fatalf("Stations: %v", err)
	}
	if len(stations) != 3 {
		t.Fatalf("len = %d, want 3 (null market/system rows dropped)", len(stations))
	}
	for _, st := range stations {
		if !st.Tradeable() {
			t.Errorf("station %q not tradeable", st.Name)
		}
		if st.SystemName == "" {
			t.Errorf("station %q missing system name", st.Name)
		}
	}
	byID := make(map[int64]market.Station)
	for _, st := range stations {
		byID[st.ID] = st
	}
	if st := byID[12]; st.SystemName != "Barnard's Star" || st.X != 6 {
		t.Errorf("station 12 join = %q x=%v, want Barnard's Star x=6", st.SystemName, st.X)
	}
}

func TestStations_PadFilter(t *testing.T) {
	s := openTestStore(t)
	seedGalaxy(t, s)

	stations, err := s.Stations(context.Background(), []string{"M", "L"})
	if err != nil {
		t.Fatalf("Stations: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("len = %d, want 2", len(stations))
	}
	for _, st := range stations {
		if st.LandingPad != "M" && st.LandingPad != "L" {
			t.Errorf("pad %q leaked through filter", st.LandingPad)
		}
	}
}

func TestSystemByName_CaseInsensitive(t *testing.T) {
	s := openTestStore(t)
	seedGalaxy(t, s)

	for _, name := range []string{"Sol", "sol", "SOL"} {
		sys, err := s.SystemByName(context.Background(), name)
		if err != nil {
			t.Fatalf("SystemByName(%q): %v", name, err)
		}
		if sys.ID != 1 || sys.Name != "Sol" {
			t.Errorf("SystemByName(%q) = %+v, want Sol", name, sys)
		}
	}
}

func TestSystemByName_NotFound(t *testing.T) {
	s := openTestStore(t)
	seedGalaxy(t, s)

	_, err := s.SystemByName(context.Background(), "Raxxla")
	if !errors.Is(err, ErrSystemNotFound) {
		t.Errorf("err = %v, want ErrSystemNotFound", err)
	}
}

func TestSystemsWithinRadius(t *testing.T) {
	s := openTestStore(t)
	seedGalaxy(t, s)

	center, err := s.SystemByName(context.Background(), "Sol")
	if err != nil {
		t.Fatalf("SystemByName: %v", err)
	}
	systems, err := s.SystemsWithinRadius(context.Background(), center, 10)
	if err != nil {
		t.Fatalf("SystemsWithinRadius: %v", err)
	}
	if len(systems) != 2 {
		t.Fatalf("len = %d, want 2 (Sol and Barnard's Star)", len(systems))
	}
	names := map[string]bool{}
	for _, sys := range systems {
		names[sys.Name] = true
	}
	if !names["Sol"] || !names["Barnard's Star"] {
		t.Errorf("systems = %v, want Sol + Barnard's Star", names)
	}
}

func TestListings_CutoffAndScan(t *testing.T) {
	s := openTestStore(t)
	seedGalaxy(t, s)

	old := testEpoch.Add(-48 * time.Hour)
	fresh := testEpoch.Add(24 * time.Hour)
	if _, err := s.sql.Exec(`INSERT INTO listings VALUES
		(100, 'Gold', 110, 100, 120, 50, 2, 10, 2, ?),
		(100, 'Gold', 110, 90, 115, 50, 2, 12, 2, ?),
		(100, 'Silver', 55, 50, 60, 20, 1, 5, 1, ?)`, fresh, old, fresh); err != nil {
		t.Fatalf("seed listings: %v", err)
	}

	listings, err := s.Listings(context.Background(), 100, testEpoch)
	if err != nil {
		t.Fatalf("Listings: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("len = %d, want 2 (stale Gold row excluded)", len(listings))
	}
	for _, c := range listings {
		if c.ListedAt.Before(testEpoch) {
			t.Errorf("listing %q at %v precedes cutoff", c.Name, c.ListedAt)
		}
		if c.MarketID != 100 {
			t.Errorf("listing %q market = %d, want 100", c.Name, c.MarketID)
		}
	}
}

func TestListings_EmptyMarketNotAnError(t *testing.T) {
	s := openTestStore(t)
	seedGalaxy(t, s)

	listings, err := s.Listings(context.Background(), 102, testEpoch)
	if err != nil {
		t.Fatalf("Listings on empty market: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("len = %d, want 0", len(listings))
	}
}

func TestCheapestListings(t *testing.T) {
	s := openTestStore(t)
	seedGalaxy(t, s)

	old := testEpoch.Add(-24 * time.Hour)
	if _, err := s.sql.Exec(`INSERT INTO listings VALUES
		(100, 'Steel', 100, 95, 110, 0, 0, 500, 3, ?),
		(101, 'Steel', 100, 80, 108, 0, 0, 900, 3, ?),
		(101, 'Steel', 100, 60, 108, 0, 0, 900, 3, ?),
		(102, 'Steel', 100, 70, 105, 0, 0, 20, 1, ?),
		(100, 'Gold',  110, 50, 120, 0, 0, 999, 3, ?)`,
		testEpoch, testEpoch, old, testEpoch, testEpoch); err != nil {
		t.Fatalf("seed listings: %v", err)
	}

	// min quantity 100 drops market 102; the stale cheaper row on 101 is
	// superseded by its most recent listing.
	listings, err := s.CheapestListings(context.Background(), "steel", old, 100, nil)
	if err != nil {
		t.Fatalf("CheapestListings: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("len = %d, want 2", len(listings))
	}
	if listings[0].BuyPrice != 80 || listings[0].StationName != "Galileo" {
		t.Errorf("cheapest = %q at %d, want Galileo at 80", listings[0].StationName, listings[0].BuyPrice)
	}
	if listings[1].BuyPrice != 95 {
		t.Errorf("second = %d, want 95", listings[1].BuyPrice)
	}
}

func TestCheapestListings_PadFilter(t *testing.T) {
	s := openTestStore(t)
	seedGalaxy(t, s)

	if _, err := s.sql.Exec(`INSERT INTO listings VALUES
		(100, 'Steel', 100, 95, 110, 0, 0, 500, 3, ?),
		(102, 'Steel', 100, 70, 105, 0, 0, 500, 3, ?)`, testEpoch, testEpoch); err != nil {
		t.Fatalf("seed listings: %v", err)
	}

	listings, err := s.CheapestListings(context.Background(), "Steel", testEpoch, 1, []string{"L"})
	if err != nil {
		t.Fatalf("CheapestListings: %v", err)
	}
	if len(listings) != 1 || listings[0].StationName != "Abraham Lincoln" {
		t.Fatalf("pad filter result = %+v, want only Abraham Lincoln", listings)
	}
}
