// Package config holds the run configuration supplied by the CLI layer and
// validates it before any I/O happens.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfig marks user-correctable configuration errors. They are rejected
// before the engine touches the backing store.
var ErrConfig = errors.New("invalid configuration")

// CarrierNamePattern matches fleet-carrier callsigns (three alphanumerics,
// hyphen, three alphanumerics). Carriers are mobile and excluded from routes.
const CarrierNamePattern = `^[A-Za-z0-9]{3}-[A-Za-z0-9]{3}$`

// PadSize is a ship landing-pad class.
type PadSize string

const (
	PadSmall  PadSize = "small"
	PadMedium PadSize = "medium"
	PadLarge  PadSize = "large"
)

// ParsePad parses a landing-pad class from its CLI spelling.
func ParsePad(s string) (PadSize, error) {
	switch PadSize(s) {
	case PadSmall, PadMedium, PadLarge:
		return PadSize(s), nil
	}
	return "", fmt.Errorf("%w: landing pad must be small, medium or large, got %q", ErrConfig, s)
}

// Fits returns the station pad codes that accommodate the class. A ship
// fits its own pad size or larger.
func (p PadSize) Fits() []string {
	switch p {
	case PadSmall:
		return []string{"S", "M", "L"}
	case PadMedium:
		return []string{"M", "L"}
	case PadLarge:
		return []string{"L"}
	}
	return nil
}

// Compute is the configuration for a compute-single run.
type Compute struct {
	URL            string
	Capital        uint64
	Capacity       uint
	SampleFraction float64
	Pad            PadSize
	SourceSystem   string  // empty = whole-galaxy random sample
	RadiusLY       float64 // >0 requires SourceSystem
	MaxDestLY      float64 // >0 requires SourceSystem
	ExpiryDays     int     // 0 = no recency cutoff
	TopK           int
	SaveResults    bool
}

// Validate rejects inconsistent configuration before any I/O.
func (c *Compute) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: database URL is required (--url or TRADEWIND_URL)", ErrConfig)
	}
	if c.SampleFraction <= 0 || c.SampleFraction > 1 {
		return fmt.Errorf("%w: sample fraction must be in (0, 1], got %v", ErrConfig, c.SampleFraction)
	}
	if c.Capacity == 0 {
		return fmt.Errorf("%w: cargo capacity must be positive", ErrConfig)
	}
	if c.Capital == 0 {
		return fmt.Errorf("%w: starting capital must be positive", ErrConfig)
	}
	if c.RadiusLY < 0 {
		return fmt.Errorf("%w: radius must not be negative", ErrConfig)
	}
	if c.RadiusLY > 0 && c.SourceSystem == "" {
		return fmt.Errorf("%w: --radius requires --src", ErrConfig)
	}
	if c.MaxDestLY < 0 {
		return fmt.Errorf("%w: max destination distance must not be negative", ErrConfig)
	}
	if c.MaxDestLY > 0 && c.SourceSystem == "" {
		return fmt.Errorf("%w: --max-dist requires --src", ErrConfig)
	}
	if c.ExpiryDays < 0 {
		return fmt.Errorf("%w: expiry days must not be negative", ErrConfig)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top-k must be positive", ErrConfig)
	}
	return nil
}

// Cutoff converts the expiry window into an absolute listing-recency cutoff.
// Zero expiry means no cutoff (the epoch).
func (c *Compute) Cutoff(now time.Time) time.Time {
	if c.ExpiryDays <= 0 {
		return time.Unix(0, 0).UTC()
	}
	return now.AddDate(0, 0, -c.ExpiryDays)
}

// Cheapest is the configuration for a find-cheapest run.
type Cheapest struct {
	URL         string
	Name        string
	Pad         PadSize
	MaxAgeDays  int
	MinQuantity int
	TopK        int
}

// Validate rejects inconsistent configuration before any I/O.
func (c *Cheapest) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: database URL is required (--url or TRADEWIND_URL)", ErrConfig)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: commodity name is required", ErrConfig)
	}
	if c.MaxAgeDays <= 0 {
		return fmt.Errorf("%w: max age must be positive", ErrConfig)
	}
	if c.MinQuantity < 0 {
		return fmt.Errorf("%w: min quantity must not be negative", ErrConfig)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top-k must be positive", ErrConfig)
	}
	return nil
}

// Env holds environment-supplied defaults, overridable by flags.
type Env struct {
	URL string
}

// LoadEnv reads environment defaults. A local .env file is honored when
// present, then TRADEWIND_-prefixed variables.
func LoadEnv() Env {
	_ = godotenv.Load()
	v := viper.New()
	v.SetEnvPrefix("tradewind")
	v.AutomaticEnv()
	v.SetDefault("url", "")
	return Env{URL: v.GetString("url")}
}
