package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/Hafizh1187/apriory/pkg/apriori"
	"github.com/Hafizh1187/apriory/pkg/humanfmt"
)

// chartWidth is the bar length for a value of 1.0.
const chartWidth = 40

// WriteCharts renders the support and confidence of every rule as
// horizontal bars, one section per measure.
func WriteCharts(w io.Writer, rules []apriori.Rule) error {
	if len(rules) == 0 {
		return nil
	}
	if err := writeChart(w, "Support", rules, func(r apriori.Rule) float64 { return r.Support }); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return writeChart(w, "Confidence", rules, func(r apriori.Rule) float64 { return r.Confidence })
}

func writeChart(w io.Writer, title string, rules []apriori.Rule, value func(apriori.Rule) float64) error {
	width := 0
	for _, r := range rules {
		width = max(width, len([]rune(r.String())))
	}
	width = min(width, maxRuleWidth)

	var sb strings.Builder
	sb.WriteString(title + "\n")
	for _, r := range rules {
		v := value(r)
		sb.WriteString(fmt.Sprintf("%-*s %s %s\n",
			width, truncate(r.String(), width), bar(v, chartWidth), humanfmt.Percent(v)))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// bar draws a fraction in [0, 1] as a fixed-width bar.
func bar(fraction float64, width int) string {
	filled := int(fraction*float64(width) + 0.5)
	filled = max(0, min(filled, width))
	return "|" + strings.Repeat("█", filled) + strings.Repeat(" ", width-filled) + "|"
}

// WritePreview prints the first n transactions in input order with their
// tokens trimmed.
func WritePreview(w io.Writer, txs [][]string, n int) error {
	n = min(n, len(txs))
	if n <= 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("First %d of %d transactions\n", n, len(txs)))
	for i, tx := range txs[:n] {
		items := make([]string, 0, len(tx))
		for _, it := range tx {
			if it = strings.TrimSpace(it); it != "" {
				items = append(items, it)
			}
		}
		row := "(empty)"
		if len(items) > 0 {
			row = strings.Join(items, ", ")
		}
		sb.WriteString(fmt.Sprintf("%6d  %s\n", i+1, row))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
