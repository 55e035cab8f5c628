package txset

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/Hafizh1187/apriory/internal/logctx"
	"github.com/Hafizh1187/apriory/pkg/itemset"
	"github.com/rs/zerolog"
)

func mustNew(t *testing.T, raw [][]string) *Set {
	t.Helper()
	s, err := New(context.Background(), raw)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestNewNormalizes(t *testing.T) {
	s := mustNew(t, [][]string{
		{"milk", " bread", "milk"},
		{"eggs"},
	})

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if got := s.Transaction(0); !got.Equal(itemset.Itemset{"bread", "milk"}) {
		t.Errorf("Transaction(0) = %v", got)
	}
	if s.MaxLen() != 2 {
		t.Errorf("MaxLen = %d, want 2", s.MaxLen())
	}
	if s.NumItems() != 3 {
		t.Errorf("NumItems = %d, want 3", s.NumItems())
	}
}

func TestEmptyTransactionsSkippedWithWarning(t *testing.T) {
	var buf bytes.Buffer
	ctx := logctx.WithLogger(context.Background(), zerolog.New(&buf))

	s, err := New(ctx, [][]string{{"a"}, {}, {" ", ""}, {"b"}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if s.Skipped() != 2 {
		t.Errorf("Skipped = %d, want 2", s.Skipped())
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("expected warning log, got: %s", buf.String())
	}
}

func TestEmptyInput(t *testing.T) {
	s := mustNew(t, nil)
	if s.Len() != 0 || s.MaxLen() != 0 || s.NumItems() != 0 {
		t.Errorf("unexpected non-empty set: len=%d max=%d items=%d", s.Len(), s.MaxLen(), s.NumItems())
	}
	if got := s.Count(itemset.New("a")); got != 0 {
		t.Errorf("Count = %d, want 0", got)
	}
}

func TestCount(t *testing.T) {
	s := mustNew(t, [][]string{
		{"A", "B"},
		{"A", "B", "C"},
		{"A"},
		{"B", "C"},
	})

	tests := []struct {
		items itemset.Itemset
		want  int
	}{
		{itemset.New("A"), 3},
		{itemset.New("B"), 3},
		{itemset.New("C"), 2},
		{itemset.New("A", "B"), 2},
		{itemset.New("B", "C"), 2},
		{itemset.New("A", "C"), 1},
		{itemset.New("A", "B", "C"), 1},
		{itemset.New("D"), 0},
		{itemset.New("A", "D"), 0},
		{itemset.New(), 4},
	}

	for _, tt := range tests {
		if got := s.Count(tt.items); got != tt.want {
			t.Errorf("Count(%v) = %d, want %d", tt.items, got, tt.want)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := mustNew(t, [][]string{{"x", "y"}, {"z"}})
	ids, ok := s.Encode(itemset.New("z", "x"))
	if !ok {
		t.Fatal("Encode failed")
	}
	if ids[0] >= ids[1] {
		t.Errorf("expected ascending IDs, got %v", ids)
	}
	if got := s.Decode(ids); !got.Equal(itemset.Itemset{"x", "z"}) {
		t.Errorf("Decode = %v", got)
	}
	if _, ok := s.Encode(itemset.New("missing")); ok {
		t.Error("expected Encode to fail for unknown item")
	}
}

// The inverted index must agree with a plain scan of every transaction.
func TestCountMatchesScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	raw := make([][]string, 300)
	for i := range raw {
		n := 1 + rng.Intn(6)
		for j := 0; j < n; j++ {
			raw[i] = append(raw[i], fmt.Sprintf("i%d", rng.Intn(12)))
		}
	}
	s := mustNew(t, raw)

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(3)
		var items []string
		for j := 0; j < n; j++ {
			items = append(items, fmt.Sprintf("i%d", rng.Intn(12)))
		}
		query := itemset.New(items...)

		want := 0
		for i := 0; i < s.Len(); i++ {
			if query.IsSubsetOf(s.Transaction(i)) {
				want++
			}
		}
		if got := s.Count(query); got != want {
			t.Fatalf("Count(%v) = %d, scan = %d", query, got, want)
		}
	}
}
