package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Hafizh1187/apriory/pkg/apriori"
	"github.com/Hafizh1187/apriory/pkg/itemset"
)

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, knownResult(t).Rules); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected header, rule and 4 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "Rule") || !strings.Contains(lines[0], "Confidence") {
		t.Errorf("unexpected header %q", lines[0])
	}

	last := lines[5]
	for _, want := range []string{"{C} -> {B}", "50.00%", "100.00%", "1.33"} {
		if !strings.Contains(last, want) {
			t.Errorf("row %q missing %q", last, want)
		}
	}
	if !strings.Contains(lines[2], "66.67%") || !strings.Contains(lines[2], "0.89") {
		t.Errorf("row %q missing confidence or lift", lines[2])
	}
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, nil); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != NoRulesMessage {
		t.Errorf("got %q, want %q", got, NoRulesMessage)
	}
}

func TestWriteTableTruncatesLongRules(t *testing.T) {
	long := strings.Repeat("x", 100)
	rules := []apriori.Rule{{
		Antecedent: itemset.New(long),
		Consequent: itemset.New("y"),
		Support:    0.1,
		Confidence: 0.5,
		Lift:       2,
	}}
	var buf bytes.Buffer
	if err := WriteTable(&buf, rules); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	if strings.Contains(buf.String(), long) {
		t.Error("long rule was not truncated")
	}
	if !strings.Contains(buf.String(), "...") {
		t.Error("truncated rule has no ellipsis")
	}
}

func TestWriteItemsets(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteItemsets(&buf, knownResult(t).Itemsets); err != nil {
		t.Fatalf("WriteItemsets failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"{A}", "{A, B}", "{B, C}", "75.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer text", 10, "much lo..."},
		{"abcdef", 2, "ab"},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
