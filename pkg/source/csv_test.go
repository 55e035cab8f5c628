package source

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func readAllRows(t *testing.T, r Reader) [][]string {
	t.Helper()
	var rows [][]string
	for {
		items, err := r.Next()
		if errors.Is(err, io.EOF) {
			return rows
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		rows = append(rows, slices.Clone(items))
	}
}

func TestCSVReaderItemsColumn(t *testing.T) {
	data := "ID,Items\n1,\"milk, bread\"\n2,eggs\n3,\n4\n"
	r, err := NewCSVReader(strings.NewReader(data), DefaultConfig())
	if err != nil {
		t.Fatalf("NewCSVReader failed: %v", err)
	}
	defer r.Close()

	got := readAllRows(t, r)
	want := [][]string{
		{"milk", " bread"},
		{"eggs"},
		{},
		{},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestCSVReaderBlankLines(t *testing.T) {
	data := "Items\nmilk\n\n\nbread\n\"\"\n"
	r, err := NewCSVReader(strings.NewReader(data), DefaultConfig())
	if err != nil {
		t.Fatalf("NewCSVReader failed: %v", err)
	}
	defer r.Close()

	got := readAllRows(t, r)
	want := [][]string{{"milk"}, {"bread"}, {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestCSVReaderHeaderMatching(t *testing.T) {
	tests := []struct {
		name   string
		header string
		column string
	}{
		{"exact", "Items", "Items"},
		{"case", "ITEMS", "items"},
		{"whitespace", " Items ", "Items"},
		{"bom", "\ufeffItems", "Items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.header + "\na;b\n"
			cfg := DefaultConfig().WithColumn(tt.column).WithDelimiter(";")
			r, err := NewCSVReader(strings.NewReader(data), cfg)
			if err != nil {
				t.Fatalf("NewCSVReader failed: %v", err)
			}
			got := readAllRows(t, r)
			if !reflect.DeepEqual(got, [][]string{{"a", "b"}}) {
				t.Errorf("rows = %q", got)
			}
		})
	}
}

func TestCSVReaderMissingColumn(t *testing.T) {
	_, err := NewCSVReader(strings.NewReader("ID,Products\n1,a\n"), DefaultConfig())
	if !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("expected ErrColumnNotFound, got %v", err)
	}

	_, err = NewCSVReader(strings.NewReader(""), DefaultConfig())
	if !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("empty input: expected ErrColumnNotFound, got %v", err)
	}
}

func TestCSVReaderBasket(t *testing.T) {
	data := "milk,bread,,\neggs\n,,\n"
	r, err := NewCSVReader(strings.NewReader(data), DefaultConfig().WithBasket(true))
	if err != nil {
		t.Fatalf("NewCSVReader failed: %v", err)
	}
	got := readAllRows(t, r)
	want := [][]string{{"milk", "bread"}, {"eggs"}, {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestCSVReaderFromStreamGzip(t *testing.T) {
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	_, _ = gzw.Write([]byte("Items\n\"a,b\"\n"))
	gzw.Close()

	r, err := NewCSVReaderFromStream(io.NopCloser(&buf), "baskets.csv.gz", DefaultConfig())
	if err != nil {
		t.Fatalf("NewCSVReaderFromStream failed: %v", err)
	}
	defer r.Close()

	got := readAllRows(t, r)
	if !reflect.DeepEqual(got, [][]string{{"a", "b"}}) {
		t.Errorf("rows = %q", got)
	}
}

func TestCSVReaderFromStreamBadGzip(t *testing.T) {
	_, err := NewCSVReaderFromStream(io.NopCloser(strings.NewReader("not gzip")), "x.csv.gz", DefaultConfig())
	if err == nil {
		t.Error("expected error for invalid gzip stream")
	}
}
