package export

import (
	"fmt"
	"io"

	"github.com/Hafizh1187/apriory/pkg/apriori"
	"github.com/parquet-go/parquet-go"
)

// ruleRow is the Parquet schema of an exported rule.
type ruleRow struct {
	Antecedent []string `parquet:"antecedent,list"`
	Consequent []string `parquet:"consequent,list"`
	Count      int64    `parquet:"count"`
	Support    float64  `parquet:"support"`
	Confidence float64  `parquet:"confidence"`
	Lift       float64  `parquet:"lift"`
}

// parquetBatchSize is the number of rows handed to the writer at once.
const parquetBatchSize = 4096

// WriteParquet writes one row per rule.
func WriteParquet(w io.Writer, rules []apriori.Rule) error {
	pw := parquet.NewGenericWriter[ruleRow](w)

	batch := make([]ruleRow, 0, min(len(rules), parquetBatchSize))
	flush := func() error {
		if _, err := pw.Write(batch); err != nil {
			return fmt.Errorf("write parquet rows: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for _, r := range rules {
		batch = append(batch, ruleRow{
			Antecedent: r.Antecedent,
			Consequent: r.Consequent,
			Count:      int64(r.Count),
			Support:    r.Support,
			Confidence: r.Confidence,
			Lift:       r.Lift,
		})
		if len(batch) == parquetBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return err
		}
	}

	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
