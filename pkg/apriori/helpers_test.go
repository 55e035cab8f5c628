package apriori

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/Hafizh1187/apriory/pkg/itemset"
	"github.com/Hafizh1187/apriory/pkg/txset"
)

// knownAnswer is the four-transaction example used across tests.
var knownAnswer = [][]string{
	{"A", "B"},
	{"A", "B", "C"},
	{"A"},
	{"B", "C"},
}

func testSet(t testing.TB, raw [][]string) *txset.Set {
	t.Helper()
	s, err := txset.New(context.Background(), raw)
	if err != nil {
		t.Fatalf("txset.New failed: %v", err)
	}
	return s
}

func testOptions(minSupport, minConfidence, minLift float64) Options {
	return Options{
		MinSupport:    minSupport,
		MinConfidence: minConfidence,
		MinLift:       minLift,
		Workers:       2,
	}
}

// randomBaskets generates n transactions over numItems items with a few
// correlated pairs so that levels beyond two are populated.
func randomBaskets(seed int64, n, numItems int) [][]string {
	rng := rand.New(rand.NewSource(seed))
	raw := make([][]string, n)
	for i := range raw {
		size := 1 + rng.Intn(6)
		for j := 0; j < size; j++ {
			item := rng.Intn(numItems)
			raw[i] = append(raw[i], fmt.Sprintf("item%02d", item))
			if item%3 == 0 {
				raw[i] = append(raw[i], fmt.Sprintf("item%02d", (item+1)%numItems))
			}
		}
	}
	return raw
}

func findRule(rules []Rule, ante, cons itemset.Itemset) (Rule, bool) {
	for _, r := range rules {
		if r.Antecedent.Equal(ante) && r.Consequent.Equal(cons) {
			return r, true
		}
	}
	return Rule{}, false
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
