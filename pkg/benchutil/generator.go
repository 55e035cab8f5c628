// Package benchutil provides synthetic basket generation for benchmarks,
// tests and the generate command.
package benchutil

import (
	"fmt"
	"math/rand"
)

// GeneratorConfig configures synthetic basket generation.
//
// Items are drawn from a skewed popularity distribution, and a number of
// fixed patterns are planted so that frequent itemsets beyond size two exist.
type GeneratorConfig struct {
	// NumTransactions is the number of baskets to generate.
	NumTransactions int
	// NumItems is the catalogue size.
	NumItems int
	// MeanBasketSize is the average number of random items per basket.
	MeanBasketSize int
	// NumPatterns is the number of planted itemsets.
	NumPatterns int
	// PatternSize is the size of each planted itemset.
	PatternSize int
	// PatternRate is the probability that a basket contains one pattern.
	PatternRate float64
	// Seed for reproducible generation. 0 = use BenchmarkSeed.
	Seed int64
}

// DefaultConfig returns a grocery-like configuration.
func DefaultConfig(numTransactions int) GeneratorConfig {
	return GeneratorConfig{
		NumTransactions: numTransactions,
		NumItems:        200,
		MeanBasketSize:  4,
		NumPatterns:     10,
		PatternSize:     3,
		PatternRate:     0.3,
		Seed:            BenchmarkSeed,
	}
}

// Validate checks the configuration.
func (c GeneratorConfig) Validate() error {
	switch {
	case c.NumTransactions < 0:
		return fmt.Errorf("NumTransactions must be non-negative, got %d", c.NumTransactions)
	case c.NumItems <= 0:
		return fmt.Errorf("NumItems must be positive, got %d", c.NumItems)
	case c.MeanBasketSize <= 0:
		return fmt.Errorf("MeanBasketSize must be positive, got %d", c.MeanBasketSize)
	case c.PatternSize > c.NumItems:
		return fmt.Errorf("PatternSize %d exceeds NumItems %d", c.PatternSize, c.NumItems)
	case c.PatternRate < 0 || c.PatternRate > 1:
		return fmt.Errorf("PatternRate must be in [0, 1], got %v", c.PatternRate)
	}
	return nil
}

// Generator generates synthetic baskets.
type Generator struct {
	cfg      GeneratorConfig
	rng      *rand.Rand
	items    []string
	zipf     *rand.Zipf
	patterns [][]string
}

// NewGenerator creates a new basket generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = BenchmarkSeed
	}
	rng := rand.New(rand.NewSource(seed))

	items := make([]string, cfg.NumItems)
	for i := range items {
		items[i] = ItemName(i)
	}

	g := &Generator{
		cfg:   cfg,
		rng:   rng,
		items: items,
		zipf:  rand.NewZipf(rng, 1.1, 4, uint64(cfg.NumItems-1)),
	}
	if cfg.PatternSize > 0 {
		for range cfg.NumPatterns {
			perm := rng.Perm(cfg.NumItems)[:cfg.PatternSize]
			p := make([]string, len(perm))
			for i, idx := range perm {
				p[i] = items[idx]
			}
			g.patterns = append(g.patterns, p)
		}
	}
	return g, nil
}

// ItemName returns the catalogue name of item i.
func ItemName(i int) string {
	return fmt.Sprintf("item%04d", i)
}

// Patterns returns the planted itemsets.
func (g *Generator) Patterns() [][]string {
	return g.patterns
}

// Generate returns NumTransactions baskets.
func (g *Generator) Generate() [][]string {
	out := make([][]string, g.cfg.NumTransactions)
	for i := range out {
		out[i] = g.basket()
	}
	return out
}

// GenerateChannel returns baskets via a channel for streaming processing.
func (g *Generator) GenerateChannel() <-chan []string {
	ch := make(chan []string, 1000)
	go func() {
		defer close(ch)
		for i := 0; i < g.cfg.NumTransactions; i++ {
			ch <- g.basket()
		}
	}()
	return ch
}

func (g *Generator) basket() []string {
	size := 1 + g.rng.Intn(2*g.cfg.MeanBasketSize)
	b := make([]string, 0, size+g.cfg.PatternSize)
	for range size {
		b = append(b, g.items[g.zipf.Uint64()])
	}
	if len(g.patterns) > 0 && g.rng.Float64() < g.cfg.PatternRate {
		b = append(b, g.patterns[g.rng.Intn(len(g.patterns))]...)
	}
	// Duplicates are left in; ingestion removes them.
	return b
}
