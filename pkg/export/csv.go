package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Hafizh1187/apriory/pkg/apriori"
)

// csvHeader is the column layout of WriteCSV.
var csvHeader = []string{"antecedent", "consequent", "count", "support", "confidence", "lift"}

// ItemSeparator joins the items of one side of a rule in text outputs.
const ItemSeparator = ", "

// WriteCSV writes one row per rule. Values are unformatted so the file can
// be re-read losslessly.
func WriteCSV(w io.Writer, rules []apriori.Rule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	record := make([]string, len(csvHeader))
	for _, r := range rules {
		record[0] = strings.Join(r.Antecedent, ItemSeparator)
		record[1] = strings.Join(r.Consequent, ItemSeparator)
		record[2] = strconv.Itoa(r.Count)
		record[3] = formatFloat(r.Support)
		record[4] = formatFloat(r.Confidence)
		record[5] = formatFloat(r.Lift)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
