package apriori

import (
	"fmt"
	"runtime"

	"github.com/Hafizh1187/apriory/pkg/membudget"
)

// MaxItemsetLength is the largest itemset the miner builds. Rule generation
// enumerates antecedents as bit masks over a uint64.
const MaxItemsetLength = 63

// Options holds the thresholds and execution settings for one mining run.
type Options struct {
	// MinSupport is the minimum support fraction, in (0, 1].
	MinSupport float64

	// MinConfidence is the minimum rule confidence, in (0, 1].
	MinConfidence float64

	// MinLift is the minimum rule lift, >= 0.
	MinLift float64

	// MaxLength caps the itemset size, at most MaxItemsetLength.
	// 0 means MaxItemsetLength.
	MaxLength int

	// Workers is the number of goroutines counting support within a level.
	// Default: runtime.NumCPU()
	Workers int

	// Budget, if set, bounds the memory reserved for one level's candidates.
	Budget *membudget.Budget
}

// DefaultOptions returns the thresholds the interactive tool starts with.
func DefaultOptions() Options {
	return Options{
		MinSupport:    0.05,
		MinConfidence: 0.5,
		MinLift:       1.5,
		Workers:       runtime.NumCPU(),
	}
}

// Validate checks every threshold and fills defaults for zero-valued
// execution settings. Errors wrap ErrInvalidParameter.
func (o *Options) Validate() error {
	if !(o.MinSupport > 0 && o.MinSupport <= 1) {
		return fmt.Errorf("%w: min_support %v must be in (0, 1]", ErrInvalidParameter, o.MinSupport)
	}
	if !(o.MinConfidence > 0 && o.MinConfidence <= 1) {
		return fmt.Errorf("%w: min_confidence %v must be in (0, 1]", ErrInvalidParameter, o.MinConfidence)
	}
	if !(o.MinLift >= 0) {
		return fmt.Errorf("%w: min_lift %v must be >= 0", ErrInvalidParameter, o.MinLift)
	}
	if o.MaxLength < 0 || o.MaxLength > MaxItemsetLength {
		return fmt.Errorf("%w: max_length %d must be in [0, %d]", ErrInvalidParameter, o.MaxLength, MaxItemsetLength)
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return nil
}

// WithMinSupport sets the minimum support.
func (o Options) WithMinSupport(v float64) Options {
	o.MinSupport = v
	return o
}

// WithMinConfidence sets the minimum confidence.
func (o Options) WithMinConfidence(v float64) Options {
	o.MinConfidence = v
	return o
}

// WithMinLift sets the minimum lift.
func (o Options) WithMinLift(v float64) Options {
	o.MinLift = v
	return o
}

// WithMaxLength sets the itemset size cap.
func (o Options) WithMaxLength(n int) Options {
	o.MaxLength = n
	return o
}

// WithWorkers sets the counting concurrency.
func (o Options) WithWorkers(n int) Options {
	o.Workers = n
	return o
}

// WithBudget sets the candidate memory budget.
func (o Options) WithBudget(b *membudget.Budget) Options {
	o.Budget = b
	return o
}
