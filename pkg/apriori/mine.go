// Package apriori mines frequent itemsets from a transaction set and derives
// association rules with support, confidence and lift.
//
// The search is level-wise: candidates of size k are joined from frequent
// itemsets of size k-1 and pruned when any (k-1)-subset is infrequent, so no
// itemset is counted unless all of its subsets are frequent. Support within
// a level is counted in parallel; levels are strictly sequential.
package apriori

import (
	"context"
	"fmt"
	"time"

	"github.com/Hafizh1187/apriory/internal/logctx"
	"github.com/Hafizh1187/apriory/pkg/logging"
	"github.com/Hafizh1187/apriory/pkg/txset"
)

// Result is the outcome of one mining run.
type Result struct {
	// Rules that passed every threshold, in generation order.
	Rules []Rule
	// Itemsets holds every frequent itemset, by size then canonical order.
	Itemsets []FrequentItemset
	Levels   []LevelStats

	Transactions int
	Skipped      int
	Options      Options
	Duration     time.Duration
}

// Empty reports whether no rule qualified.
func (r *Result) Empty() bool {
	return len(r.Rules) == 0
}

// Mine ingests raw transactions and runs the full pipeline.
//
// Invalid thresholds fail with ErrInvalidParameter before any work. Empty
// input, no frequent itemsets and no qualifying rules all yield an empty
// Result and a nil error.
func Mine(ctx context.Context, transactions [][]string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	set, err := txset.New(ctx, transactions)
	if err != nil {
		return nil, fmt.Errorf("build transaction set: %w", err)
	}
	return MineSet(ctx, set, opts)
}

// MineSet runs the pipeline over an already ingested transaction set.
// The set is only read, so concurrent runs with different options may share
// it.
func MineSet(ctx context.Context, set *txset.Set, opts Options) (*Result, error) {
	miner, err := NewMiner(set, opts)
	if err != nil {
		return nil, err
	}
	opts = miner.opts

	ctx = logctx.WithFloat(ctx, "min_support", opts.MinSupport)
	log := logctx.FromContext(ctx)
	start := time.Now()

	log.Info().
		Int("transactions", set.Len()).
		Int("items", set.NumItems()).
		Int("max_transaction_len", set.MaxLen()).
		Float64("min_confidence", opts.MinConfidence).
		Float64("min_lift", opts.MinLift).
		Int("workers", opts.Workers).
		Msg("starting mining run")

	freq, err := miner.Mine(ctx)
	if err != nil {
		return nil, fmt.Errorf("mine frequent itemsets: %w", err)
	}

	rulesStart := time.Now()
	rules := GenerateRules(freq, opts.MinConfidence, opts.MinLift)
	logging.PhaseComplete(log, "rules", time.Since(rulesStart)).
		Count("rules", int64(len(rules))).
		Log("rules generated")

	result := &Result{
		Rules:        rules,
		Itemsets:     freq.Itemsets,
		Levels:       freq.Levels,
		Transactions: set.Len(),
		Skipped:      set.Skipped(),
		Options:      opts,
		Duration:     time.Since(start),
	}

	logging.PhaseComplete(log, "mine", result.Duration).
		Count("frequent_itemsets", int64(len(result.Itemsets))).
		Count("rules", int64(len(rules))).
		Int("levels", len(result.Levels)).
		Log("mining run complete")

	return result, nil
}
