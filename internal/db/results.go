package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tradewind/internal/market"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ResultsStore persists ranked route results locally so past runs can be
// compared. Always SQLite, independent of the market backend.
type ResultsStore struct {
	sql *sql.DB
}

// RunRecord summarizes one saved run.
type RunRecord struct {
	RunID     string
	Timestamp time.Time
	Source    string // fixed-source system, empty for whole-galaxy runs
	Capital   uint64
	Capacity  uint
	Count     int
	TopProfit float64
}

// OpenResults opens (or creates) the local results database.
func OpenResults(path string) (*ResultsStore, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	r := &ResultsStore{sql: sqlDB}
	if err := r.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate results db: %w", err)
	}
	return r, nil
}

// Close closes the results database.
func (r *ResultsStore) Close() error {
	return r.sql.Close()
}

func (r *ResultsStore) migrate() error {
	_, err := r.sql.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id     TEXT PRIMARY KEY,
			timestamp  TEXT NOT NULL,
			source     TEXT NOT NULL,
			capital    INTEGER NOT NULL,
			capacity   INTEGER NOT NULL,
			count      INTEGER NOT NULL,
			top_profit REAL NOT NULL
		);

		CREATE TABLE IF NOT EXISTS route_results (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL REFERENCES runs(run_id),
			rank           INTEGER NOT NULL,
			source_station TEXT NOT NULL,
			source_system  TEXT NOT NULL,
			dest_station   TEXT NOT NULL,
			dest_system    TEXT NOT NULL,
			profit         REAL NOT NULL,
			cost           REAL NOT NULL,
			orders         TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_route_results_run ON route_results(run_id);
	`)
	return err
}

// SaveRun stores a completed run and its ranked solutions, returning the
// generated run id.
func (r *ResultsStore) SaveRun(source string, capital uint64, capacity uint, solutions []market.TradeSolution) (string, error) {
	runID := uuid.NewString()
	topProfit := 0.0
	if len(solutions) > 0 {
		topProfit = solutions[0].Profit
	}

	tx, err := r.sql.Begin()
	if err != nil {
		return "", fmt.Errorf("begin save run: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, timestamp, source, capital, capacity, count, top_profit)
		 VALUES (?,?,?,?,?,?,?)`,
		runID, time.Now().UTC().Format(time.RFC3339), source, capital, capacity, len(solutions), topProfit,
	); err != nil {
		tx.Rollback()
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO route_results (run_id, rank, source_station, source_system,
		 dest_station, dest_system, profit, cost, orders) VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("prepare results insert: %w", err)
	}
	defer stmt.Close()

	for i, sol := range solutions {
		orders, err := json.Marshal(nonZeroOrders(sol.Buy))
		if err != nil {
			tx.Rollback()
			return "", fmt.Errorf("marshal orders: %w", err)
		}
		if _, err := stmt.Exec(runID, i+1,
			sol.Source.Name, sol.Source.SystemName,
			sol.Destination.Name, sol.Destination.SystemName,
			sol.Profit, sol.Cost, string(orders)); err != nil {
			tx.Rollback()
			return "", fmt.Errorf("insert result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save run: %w", err)
	}
	return runID, nil
}

// Runs returns the most recent saved runs, newest first.
func (r *ResultsStore) Runs(limit int) ([]RunRecord, error) {
	rows, err := r.sql.Query(
		`SELECT run_id, timestamp, source, capital, capacity, count, top_profit
		 FROM runs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var ts string
		if err := rows.Scan(&rec.RunID, &ts, &rec.Source, &rec.Capital, &rec.Capacity, &rec.Count, &rec.TopProfit); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339, ts)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RouteResults returns the saved solutions of one run in rank order.
// Station identity is reduced to names; saved results are for reading, not
// for re-running.
func (r *ResultsStore) RouteResults(runID string) ([]market.TradeSolution, error) {
	rows, err := r.sql.Query(
		`SELECT source_station, source_system, dest_station, dest_system, profit, cost, orders
		 FROM route_results WHERE run_id = ? ORDER BY rank ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query route results: %w", err)
	}
	defer rows.Close()

	var solutions []market.TradeSolution
	for rows.Next() {
		var sol market.TradeSolution
		var orders string
		if err := rows.Scan(&sol.Source.Name, &sol.Source.SystemName,
			&sol.Destination.Name, &sol.Destination.SystemName,
			&sol.Profit, &sol.Cost, &orders); err != nil {
			return nil, fmt.Errorf("scan route result: %w", err)
		}
		if err := json.Unmarshal([]byte(orders), &sol.Buy); err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		solutions = append(solutions, sol)
	}
	return solutions, rows.Err()
}

func nonZeroOrders(orders []market.Order) []market.Order {
	kept := make([]market.Order, 0, len(orders))
	for _, o := range orders {
		if o.Count > 0 {
			kept = append(kept, o)
		}
	}
	return kept
}
