// Package membudget bounds the memory a mining run may reserve for its
// candidate working set.
//
// The miner estimates the footprint of each level's candidates and reserves
// it before counting; a level that does not fit fails the run instead of
// exhausting the host.
package membudget

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/Hafizh1187/apriory/pkg/sysmem"
)

// EnvVar overrides the budget when no CLI value is given.
const EnvVar = "APRIORI_MEM_BUDGET"

// BudgetSource indicates how the memory budget was determined.
type BudgetSource string

const (
	// BudgetSourceAuto50Pct indicates the budget was set to 50% of detected RAM.
	BudgetSourceAuto50Pct BudgetSource = "auto-50pct"
	// BudgetSourceDefault indicates RAM detection failed and the fallback was used.
	BudgetSourceDefault BudgetSource = "default"
	// BudgetSourceCLI indicates the budget was set via CLI flag.
	BudgetSourceCLI BudgetSource = "cli"
	// BudgetSourceEnv indicates the budget was set via environment variable.
	BudgetSourceEnv BudgetSource = "env"
)

// Budget tracks reserved bytes against a fixed total.
// Budget is safe for concurrent use.
type Budget struct {
	total  uint64
	inUse  atomic.Uint64
	source BudgetSource
}

// Config holds configuration for creating a Budget.
type Config struct {
	TotalBytes uint64
	Source     BudgetSource
}

// New creates a new Budget with the given configuration.
func New(cfg Config) *Budget {
	return &Budget{
		total:  cfg.TotalBytes,
		source: cfg.Source,
	}
}

// NewFromSystemRAM creates a Budget set to 50% of system RAM, or half of
// sysmem.DefaultMemoryBytes when RAM cannot be detected.
func NewFromSystemRAM() *Budget {
	result := sysmem.Total()
	source := BudgetSourceAuto50Pct
	if !result.Reliable {
		source = BudgetSourceDefault
	}
	return New(Config{TotalBytes: result.TotalBytes / 2, Source: source})
}

// Resolve picks the budget from the CLI value, then EnvVar, then system RAM.
func Resolve(cliValue string) (*Budget, error) {
	if cliValue != "" {
		n, err := ParseHumanSize(cliValue)
		if err != nil {
			return nil, fmt.Errorf("invalid --mem-budget %q: %w", cliValue, err)
		}
		return New(Config{TotalBytes: n, Source: BudgetSourceCLI}), nil
	}
	if envValue := os.Getenv(EnvVar); envValue != "" {
		n, err := ParseHumanSize(envValue)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvVar, envValue, err)
		}
		return New(Config{TotalBytes: n, Source: BudgetSourceEnv}), nil
	}
	return NewFromSystemRAM(), nil
}

// Total returns the total budget in bytes.
func (b *Budget) Total() uint64 {
	return b.total
}

// InUse returns the currently reserved bytes.
func (b *Budget) InUse() uint64 {
	return b.inUse.Load()
}

// Source returns how the budget was determined.
func (b *Budget) Source() BudgetSource {
	return b.source
}

// TryReserve attempts to reserve n bytes without blocking.
func (b *Budget) TryReserve(n uint64) bool {
	for {
		current := b.inUse.Load()
		if n > b.total || current > b.total-n {
			return false
		}
		if b.inUse.CompareAndSwap(current, current+n) {
			return true
		}
	}
}

// Release returns n bytes to the budget.
func (b *Budget) Release(n uint64) {
	for {
		current := b.inUse.Load()
		next := uint64(0)
		if n < current {
			next = current - n
		}
		if b.inUse.CompareAndSwap(current, next) {
			return
		}
	}
}

// ParseHumanSize parses a human-readable size string (e.g., "4GiB", "512MB").
// Supported suffixes: B, KB, KiB, K, MB, MiB, M, GB, GiB, G, TB, TiB, T.
func ParseHumanSize(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("empty size string")
	}

	numEnd := len(s)
	for i, c := range s {
		if (c < '0' || c > '9') && c != '.' {
			numEnd = i
			break
		}
	}

	numStr := s[:numEnd]
	suffix := s[numEnd:]

	var num float64
	if _, err := fmt.Sscanf(numStr, "%f", &num); err != nil {
		return 0, fmt.Errorf("invalid number: %q", numStr)
	}

	var multiplier float64
	switch suffix {
	case "", "B":
		multiplier = 1
	case "KB":
		multiplier = 1000
	case "KiB", "K":
		multiplier = 1024
	case "MB":
		multiplier = 1000 * 1000
	case "MiB", "M":
		multiplier = 1024 * 1024
	case "GB":
		multiplier = 1000 * 1000 * 1000
	case "GiB", "G":
		multiplier = 1024 * 1024 * 1024
	case "TB":
		multiplier = 1000 * 1000 * 1000 * 1000
	case "TiB", "T":
		multiplier = 1024 * 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size suffix: %q", suffix)
	}

	return uint64(num * multiplier), nil
}
