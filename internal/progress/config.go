package progress

import (
	"fmt"
	"os"
	"strconv"

	"github.com/eddge/learnengine/internal/learnpath"
)

// Config holds service settings.
type Config struct {
	Scoring learnpath.ScoringConfig
	// SeedConcurrency bounds how many topics Seed materializes at once.
	SeedConcurrency int
}

// DefaultConfig returns the standard thresholds and a seed width of 4.
func DefaultConfig() Config {
	return Config{
		Scoring:         learnpath.DefaultScoringConfig(),
		SeedConcurrency: 4,
	}
}

// ConfigFromEnv overlays EDDGE_PARTIAL_THRESHOLD, EDDGE_SUPPORT_THRESHOLD
// and EDDGE_SEED_CONCURRENCY on the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	for env, dst := range map[string]*float64{
		"EDDGE_PARTIAL_THRESHOLD": &cfg.Scoring.PartialThreshold,
		"EDDGE_SUPPORT_THRESHOLD": &cfg.Scoring.SupportThreshold,
	} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", env, err)
		}
		*dst = f
	}
	if v := os.Getenv("EDDGE_SEED_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("EDDGE_SEED_CONCURRENCY: %w", err)
		}
		cfg.SeedConcurrency = n
	}
	return cfg, cfg.Validate()
}

// Validate checks the thresholds and seed width.
func (c Config) Validate() error {
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	if c.SeedConcurrency < 1 {
		return fmt.Errorf("seed concurrency must be at least 1, got %d", c.SeedConcurrency)
	}
	return nil
}
