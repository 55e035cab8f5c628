package apriori

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Hafizh1187/apriory/pkg/benchutil"
	"github.com/Hafizh1187/apriory/pkg/itemset"
	"github.com/Hafizh1187/apriory/pkg/membudget"
)

func mineFrequent(t *testing.T, raw [][]string, opts Options) *Frequent {
	t.Helper()
	m, err := NewMiner(testSet(t, raw), opts)
	if err != nil {
		t.Fatalf("NewMiner failed: %v", err)
	}
	freq, err := m.Mine(context.Background())
	if err != nil {
		t.Fatalf("Mine failed: %v", err)
	}
	return freq
}

func TestMinerKnownAnswer(t *testing.T) {
	freq := mineFrequent(t, knownAnswer, testOptions(0.5, 0.5, 0))

	want := []FrequentItemset{
		{Items: itemset.New("A"), Count: 3, Support: 0.75},
		{Items: itemset.New("B"), Count: 3, Support: 0.75},
		{Items: itemset.New("C"), Count: 2, Support: 0.5},
		{Items: itemset.New("A", "B"), Count: 2, Support: 0.5},
		{Items: itemset.New("B", "C"), Count: 2, Support: 0.5},
	}
	if !reflect.DeepEqual(freq.Itemsets, want) {
		t.Errorf("Itemsets = %+v\nwant %+v", freq.Itemsets, want)
	}

	if _, ok := freq.Lookup(itemset.New("C", "A")); ok {
		t.Error("{A, C} has support 0.25 and must not be frequent")
	}
	if fi, ok := freq.Lookup(itemset.New("B", "A")); !ok || fi.Count != 2 {
		t.Errorf("Lookup({A, B}) = %+v, %v", fi, ok)
	}
}

// Every level-wise result must equal brute-force enumeration of all itemsets.
func TestMinerMatchesBruteForce(t *testing.T) {
	raw := randomBaskets(11, 200, 8)
	set := testSet(t, raw)
	const minSupport = 0.08

	items := make([]string, set.NumItems())
	for i := range items {
		items[i] = set.Item(uint32(i))
	}

	want := map[string]int{}
	for mask := 1; mask < 1<<len(items); mask++ {
		var sub []string
		for i := range items {
			if mask&(1<<i) != 0 {
				sub = append(sub, items[i])
			}
		}
		s := itemset.New(sub...)
		count := 0
		for i := 0; i < set.Len(); i++ {
			if s.IsSubsetOf(set.Transaction(i)) {
				count++
			}
		}
		if float64(count)/float64(set.Len()) >= minSupport {
			want[s.Key()] = count
		}
	}

	freq := mineFrequent(t, raw, testOptions(minSupport, 0.5, 0))
	if freq.Len() != len(want) {
		t.Fatalf("found %d frequent itemsets, brute force found %d", freq.Len(), len(want))
	}
	for _, fi := range freq.Itemsets {
		if want[fi.Items.Key()] != fi.Count {
			t.Errorf("%v: count %d, brute force %d", fi.Items, fi.Count, want[fi.Items.Key()])
		}
	}
}

func TestMinerAntiMonotonicity(t *testing.T) {
	freq := mineFrequent(t, randomBaskets(5, 400, 15), testOptions(0.03, 0.5, 0))

	for _, fi := range freq.Itemsets {
		for _, split := range splits(fi.Items) {
			sub := split[0]
			got, ok := freq.Lookup(sub)
			if !ok {
				t.Fatalf("subset %v of frequent %v is missing", sub, fi.Items)
			}
			if got.Count < fi.Count {
				t.Errorf("subset %v count %d < superset %v count %d", sub, got.Count, fi.Items, fi.Count)
			}
		}
	}
}

func TestMinerOrdering(t *testing.T) {
	freq := mineFrequent(t, randomBaskets(9, 300, 12), testOptions(0.02, 0.5, 0))
	for i := 1; i < len(freq.Itemsets); i++ {
		if itemset.Compare(freq.Itemsets[i-1].Items, freq.Itemsets[i].Items) >= 0 {
			t.Fatalf("itemsets out of order at %d: %v then %v",
				i, freq.Itemsets[i-1].Items, freq.Itemsets[i].Items)
		}
	}
}

func TestMinerWorkersAgree(t *testing.T) {
	raw := randomBaskets(13, 500, 15)
	serial := mineFrequent(t, raw, testOptions(0.02, 0.5, 0).WithWorkers(1))
	parallel := mineFrequent(t, raw, testOptions(0.02, 0.5, 0).WithWorkers(8))

	if !reflect.DeepEqual(serial.Itemsets, parallel.Itemsets) {
		t.Error("parallel counting changed the result")
	}
}

func TestMinerMaxLength(t *testing.T) {
	raw := randomBaskets(17, 300, 10)
	freq := mineFrequent(t, raw, testOptions(0.02, 0.5, 0).WithMaxLength(2))
	for _, fi := range freq.Itemsets {
		if fi.Items.Len() > 2 {
			t.Fatalf("itemset %v exceeds max length 2", fi.Items)
		}
	}
	if last := freq.Levels[len(freq.Levels)-1]; last.Level > 2 {
		t.Errorf("ran level %d with max length 2", last.Level)
	}
}

func TestMinerStopsAtLongestTransaction(t *testing.T) {
	freq := mineFrequent(t, [][]string{{"a", "b"}, {"a", "b"}}, testOptions(0.5, 0.5, 0))
	if len(freq.Levels) != 2 {
		t.Errorf("ran %d levels, want 2", len(freq.Levels))
	}
	if freq.Len() != 3 {
		t.Errorf("found %d itemsets, want 3", freq.Len())
	}
}

func TestMinerDegenerateSupport(t *testing.T) {
	freq := mineFrequent(t, knownAnswer, testOptions(1.0, 0.5, 0))
	if freq.Len() != 0 {
		t.Errorf("expected no frequent itemsets, got %+v", freq.Itemsets)
	}

	universal := [][]string{{"x", "a"}, {"x", "b"}, {"x"}}
	freq = mineFrequent(t, universal, testOptions(1.0, 0.5, 0))
	if freq.Len() != 1 || !freq.Itemsets[0].Items.Equal(itemset.New("x")) {
		t.Errorf("expected only {x}, got %+v", freq.Itemsets)
	}
}

func TestMinerInvalidSupport(t *testing.T) {
	for _, v := range []float64{0, -0.1, 1.01} {
		_, err := NewMiner(testSet(t, knownAnswer), testOptions(v, 0.5, 0))
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("min_support %v: expected ErrInvalidParameter, got %v", v, err)
		}
	}
}

func TestMinerCancelled(t *testing.T) {
	m, err := NewMiner(testSet(t, knownAnswer), testOptions(0.5, 0.5, 0))
	if err != nil {
		t.Fatalf("NewMiner failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	freq, err := m.Mine(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if freq != nil {
		t.Error("expected partial result to be discarded")
	}
}

func TestMinerBudgetExceeded(t *testing.T) {
	budget := membudget.New(membudget.Config{TotalBytes: 100})
	opts := testOptions(0.02, 0.5, 0).WithBudget(budget)

	m, err := NewMiner(testSet(t, randomBaskets(21, 300, 12)), opts)
	if err != nil {
		t.Fatalf("NewMiner failed: %v", err)
	}
	_, err = m.Mine(context.Background())
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("expected ErrBudgetExceeded, got %v", err)
	}
	if budget.InUse() != 0 {
		t.Errorf("budget not released: %d bytes in use", budget.InUse())
	}
}

func TestMinerBudgetReleasedAfterRun(t *testing.T) {
	budget := membudget.New(membudget.Config{TotalBytes: 64 * 1024 * 1024})
	mineFrequent(t, randomBaskets(23, 300, 12), testOptions(0.02, 0.5, 0).WithBudget(budget))
	if budget.InUse() != 0 {
		t.Errorf("budget not released: %d bytes in use", budget.InUse())
	}
}

func TestGenerateCandidatesPrunes(t *testing.T) {
	// {0,1}, {0,2}, {1,3}: joining {0,1} and {0,2} gives {0,1,2}, whose
	// subset {1,2} is not frequent.
	prev := [][]uint32{{0, 1}, {0, 2}, {1, 3}}
	cands, err := generateCandidates(prev, 3, func(int) bool { return true })
	if err != nil {
		t.Fatalf("generateCandidates failed: %v", err)
	}
	if len(cands) != 0 {
		t.Errorf("expected all candidates pruned, got %v", cands)
	}

	prev = [][]uint32{{0, 1}, {0, 2}, {1, 2}}
	cands, err = generateCandidates(prev, 3, func(int) bool { return true })
	if err != nil {
		t.Fatalf("generateCandidates failed: %v", err)
	}
	if !reflect.DeepEqual(cands, [][]uint32{{0, 1, 2}}) {
		t.Errorf("cands = %v, want [[0 1 2]]", cands)
	}
}

// Planted patterns must surface as frequent itemsets.
func TestMinerFindsPlantedPatterns(t *testing.T) {
	g, err := benchutil.NewGenerator(benchutil.DefaultConfig(2000))
	if err != nil {
		t.Fatal(err)
	}
	freq := mineFrequent(t, g.Generate(), testOptions(0.01, 0.5, 0))
	for _, p := range g.Patterns() {
		if _, ok := freq.Lookup(itemset.New(p...)); !ok {
			t.Errorf("planted pattern %v not found", p)
		}
	}
}
