package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/Hafizh1187/apriory/pkg/apriori"
	"github.com/Hafizh1187/apriory/pkg/humanfmt"
)

// NoRulesMessage is printed instead of an empty rule table.
const NoRulesMessage = "No association rules found. Try lowering the thresholds."

// maxRuleWidth caps the rule column; longer rules are truncated.
const maxRuleWidth = 60

// WriteTable renders rules as an aligned table with percentage support and
// confidence and two-decimal lift.
func WriteTable(w io.Writer, rules []apriori.Rule) error {
	if len(rules) == 0 {
		_, err := fmt.Fprintln(w, NoRulesMessage)
		return err
	}

	width := len("Rule")
	for _, r := range rules {
		width = max(width, len([]rune(r.String())))
	}
	width = min(width, maxRuleWidth)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-*s %10s %11s %7s\n", width, "Rule", "Support", "Confidence", "Lift"))
	sb.WriteString(strings.Repeat("─", width+31))
	sb.WriteString("\n")
	for _, r := range rules {
		sb.WriteString(fmt.Sprintf("%-*s %10s %11s %7s\n",
			width, truncate(r.String(), width),
			humanfmt.Percent(r.Support),
			humanfmt.Percent(r.Confidence),
			humanfmt.Ratio(r.Lift)))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteItemsets lists frequent itemsets with their support.
func WriteItemsets(w io.Writer, itemsets []apriori.FrequentItemset) error {
	if len(itemsets) == 0 {
		_, err := fmt.Fprintln(w, "No frequent itemsets found.")
		return err
	}

	width := len("Itemset")
	for _, fi := range itemsets {
		width = max(width, len([]rune(fi.Items.String())))
	}
	width = min(width, maxRuleWidth)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-*s %10s %10s\n", width, "Itemset", "Count", "Support"))
	sb.WriteString(strings.Repeat("─", width+22))
	sb.WriteString("\n")
	for _, fi := range itemsets {
		sb.WriteString(fmt.Sprintf("%-*s %10d %10s\n",
			width, truncate(fi.Items.String(), width),
			fi.Count,
			humanfmt.Percent(fi.Support)))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// truncate shortens s to n runes, ending in "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
