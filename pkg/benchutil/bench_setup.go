package benchutil

import (
	"os"
	"testing"
)

// BenchmarkSeed is the default seed for reproducible benchmark data generation.
const BenchmarkSeed = 42

// BenchmarkSizes are transaction counts for quick runs.
var BenchmarkSizes = []int{1000, 10000}

// ScalingSizes are larger transaction counts, used with APRIORI_LONG_BENCH=1.
var ScalingSizes = []int{50000, 100000, 250000}

// SkipIfNoLongBench skips the benchmark if APRIORI_LONG_BENCH is not set.
func SkipIfNoLongBench(b *testing.B) {
	if os.Getenv("APRIORI_LONG_BENCH") == "" {
		b.Skip("set APRIORI_LONG_BENCH=1 to run scaling benchmark")
	}
}

// Baskets generates n baskets with DefaultConfig, failing b on error.
func Baskets(b testing.TB, n int) [][]string {
	b.Helper()
	g, err := NewGenerator(DefaultConfig(n))
	if err != nil {
		b.Fatalf("NewGenerator failed: %v", err)
	}
	return g.Generate()
}
