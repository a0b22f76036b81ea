package scenario

import (
	"math"
	"time"
)

// IssuedCache remembers scenarios handed out to guessers so a later
// validation call can be compared against what was actually issued.
// Validation never depends on it.
type IssuedCache interface {
	// Put stores an issued scenario
	Put(s *Scenario)

	// Get returns the issued scenario, false if unknown or expired
	Get(id string) (*Scenario, bool)

	// Delete forgets a scenario
	Delete(id string)

	// Len reports how many live entries are held
	Len() int
}

// CacheConfig holds configuration for the issued-scenario cache
type CacheConfig struct {
	// TTL is how long an issued scenario is kept.
	// Set to 0 for no expiration.
	TTL time.Duration

	// MaxEntries bounds the cache. The oldest entry is evicted on overflow.
	// Set to 0 for no bound.
	MaxEntries int
}

// DefaultCacheConfig returns the defaults used by the server
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        30 * time.Minute,
		MaxEntries: 10000,
	}
}

// Audit lists the payload fields that differ from the issued scenario.
func Audit(issued *Scenario, basePBO, internalPctChange float64) []string {
	var diverged []string
	if float64(issued.BasePBO) != basePBO {
		diverged = append(diverged, "base_pbo")
	}
	if math.Abs(issued.InternalPctChange-internalPctChange) > 1e-9 {
		diverged = append(diverged, "internal_pct_change")
	}
	return diverged
}
