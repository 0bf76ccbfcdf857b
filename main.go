package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"tradewind/internal/config"
	"tradewind/internal/db"
	"tradewind/internal/engine"
	"tradewind/internal/logger"
	"tradewind/internal/market"
	"tradewind/internal/report"
)

var version = "dev"

const usage = `tradewind: high-performance trade route calculator

Usage:
  tradewind compute-single [flags]   Compute an optimal single-hop trade route
  tradewind find-cheapest  [flags]   Find the cheapest sellers of a commodity
  tradewind version                  Print version information

A single-hop route only considers A->B for any stations A, B. Round trips
and multi-hop routes are out of scope. Run a subcommand with -h for flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "compute-single":
		runComputeSingle(os.Args[2:])
	case "find-cheapest":
		runFindCheapest(os.Args[2:])
	case "version":
		logger.Banner(version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}
}

func runComputeSingle(args []string) {
	env := config.LoadEnv()

	fs := flag.NewFlagSet("compute-single", flag.ExitOnError)
	url := fs.String("url", env.URL, "market database URL (postgres:// or a SQLite path)")
	capital := fs.Uint64("capital", 0, "initial capital to purchase items")
	capacity := fs.Uint("capacity", 0, "ship cargo capacity")
	sample := fs.Float64("sample", 0.01, "fraction (0,1] of stations to randomly sample")
	pad := fs.String("pad", "large", "landing pad size: small, medium or large")
	src := fs.String("src", "", "source system name; if unset the whole galaxy is considered")
	radius := fs.Float64("radius", 0, "also take sources within this many ly of --src")
	maxDist := fs.Float64("max-dist", 0, "max destination distance in ly (requires --src)")
	expiry := fs.Int("expiry", 0, "max listing age in days; 0 considers all listings")
	top := fs.Int("top", 10, "number of routes to report")
	save := fs.Bool("save", false, "save results to the local results store")
	fs.Parse(args)

	padSize, err := config.ParsePad(*pad)
	if err != nil {
		fatal(err)
	}
	cfg := config.Compute{
		URL:            *url,
		Capital:        *capital,
		Capacity:       *capacity,
		SampleFraction: *sample,
		Pad:            padSize,
		SourceSystem:   *src,
		RadiusLY:       *radius,
		MaxDestLY:      *maxDist,
		ExpiryDays:     *expiry,
		TopK:           *top,
		SaveResults:    *save,
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	logger.Banner(version)
	ctx := context.Background()

	store, err := db.Open(ctx, cfg.URL)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	planner := &engine.Planner{
		Repo:    store,
		Sampler: engine.NewSampler(regexp.MustCompile(config.CarrierNamePattern), cfg.Pad.Fits()),
	}
	solutions, cache, err := planner.ComputeSingle(ctx, engine.Params{
		Capital:        cfg.Capital,
		Capacity:       cfg.Capacity,
		SampleFraction: cfg.SampleFraction,
		Pads:           cfg.Pad.Fits(),
		SourceSystem:   cfg.SourceSystem,
		RadiusLY:       cfg.RadiusLY,
		MaxDestLY:      cfg.MaxDestLY,
		Cutoff:         cfg.Cutoff(timeNow()),
		TopK:           cfg.TopK,
	})
	if err != nil {
		if isEmptyResult(err) {
			logger.Error("RUN", fmt.Sprintf("%v — adjust your filters", err))
			os.Exit(1)
		}
		fatal(err)
	}

	report.Itinerary(os.Stdout, solutions, cache)

	logger.Section("Run summary")
	logger.Stats("Markets resolved", cache.Len())
	logger.Stats("Routes reported", len(solutions))

	if cfg.SaveResults {
		saveRun(cfg, solutions)
	}
}

func runFindCheapest(args []string) {
	env := config.LoadEnv()

	fs := flag.NewFlagSet("find-cheapest", flag.ExitOnError)
	url := fs.String("url", env.URL, "market database URL (postgres:// or a SQLite path)")
	name := fs.String("name", "", `commodity to search for, e.g. "steel"`)
	pad := fs.String("pad", "large", "landing pad size: small, medium or large")
	maxAge := fs.Int("max-age", 30, "max listing age in days")
	minQty := fs.Int("min-quantity", 1, "minimum available quantity")
	top := fs.Int("top", 15, "number of sellers to report")
	fs.Parse(args)

	padSize, err := config.ParsePad(*pad)
	if err != nil {
		fatal(err)
	}
	cfg := config.Cheapest{
		URL:         *url,
		Name:        *name,
		Pad:         padSize,
		MaxAgeDays:  *maxAge,
		MinQuantity: *minQty,
		TopK:        *top,
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	logger.Banner(version)
	ctx := context.Background()

	store, err := db.Open(ctx, cfg.URL)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	planner := &engine.Planner{
		Repo:    store,
		Sampler: engine.NewSampler(regexp.MustCompile(config.CarrierNamePattern), cfg.Pad.Fits()),
	}
	listings, err := planner.FindCheapest(ctx, engine.CheapestParams{
		Name:        cfg.Name,
		Cutoff:      timeNow().AddDate(0, 0, -cfg.MaxAgeDays),
		MinQuantity: cfg.MinQuantity,
		Pads:        cfg.Pad.Fits(),
		Limit:       cfg.TopK,
	})
	if err != nil {
		fatal(err)
	}
	report.Cheapest(os.Stdout, cfg.Name, listings)
}

// resultsPath keeps the local results store next to the working directory,
// falling back to the executable directory for deployed builds.
func resultsPath() string {
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "tradewind.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "tradewind.db")
}

func saveRun(cfg config.Compute, solutions []market.TradeSolution) {
	results, err := db.OpenResults(resultsPath())
	if err != nil {
		logger.Warn("RESULTS", fmt.Sprintf("Results store unavailable: %v", err))
		return
	}
	defer results.Close()

	runID, err := results.SaveRun(cfg.SourceSystem, cfg.Capital, cfg.Capacity, solutions)
	if err != nil {
		logger.Warn("RESULTS", fmt.Sprintf("Save failed: %v", err))
		return
	}
	logger.Success("RESULTS", fmt.Sprintf("Saved run %s (%d routes)", runID, len(solutions)))
}

func timeNow() time.Time {
	return time.Now().UTC()
}

func isEmptyResult(err error) bool {
	return errors.Is(err, engine.ErrNoStations) ||
		errors.Is(err, engine.ErrNoSources) ||
		errors.Is(err, engine.ErrNoMarkets) ||
		errors.Is(err, db.ErrSystemNotFound)
}

func fatal(err error) {
	logger.Error("RUN", err.Error())
	os.Exit(1)
}
