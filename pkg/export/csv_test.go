package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, knownResult(t).Rules); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-read CSV: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected header and 4 rows, got %d", len(records))
	}
	if records[0][0] != "antecedent" || records[0][5] != "lift" {
		t.Errorf("unexpected header %v", records[0])
	}

	last := records[4]
	if last[0] != "C" || last[1] != "B" || last[2] != "2" {
		t.Errorf("unexpected row %v", last)
	}
	conf, err := strconv.ParseFloat(last[4], 64)
	if err != nil || conf != 1 {
		t.Errorf("confidence = %q, %v", last[4], err)
	}
	lift, err := strconv.ParseFloat(last[5], 64)
	if err != nil || lift != 1/0.75 {
		t.Errorf("lift = %q, %v", last[5], err)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if got := buf.String(); got != "antecedent,consequent,count,support,confidence,lift\n" {
		t.Errorf("got %q", got)
	}
}
