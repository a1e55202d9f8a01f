package google

import (
	"testing"

	"tiempos/internal/core"
)

func TestRecordRow(t *testing.T) {
	rec := core.Record{
		Category: core.Emergency, Date: "01/02/2025", Number: "42",
		Entered: "08:00", Digitized: "08:05", Collated: "08:10", Reviewed: "09:30",
		Owner: "ana@example.com",
	}
	row := recordRow("E01", rec)
	if len(row) != len(Header) {
		t.Fatalf("row has %d columns, header %d", len(row), len(Header))
	}
	if row[0] != "E01" || row[1] != "EMERGENCIAS" || row[3] != "42" || row[8] != "01:30" || row[9] != "ana@example.com" {
		t.Fatalf("unexpected row: %v", row)
	}

	rec.Reviewed = ""
	if got := recordRow("E01", rec)[8]; got != "N/A" {
		t.Fatalf("elapsed without review: %v", got)
	}
}

func TestFindRecordRow(t *testing.T) {
	values := [][]interface{}{
		{"Centro", "Tipo", "Fecha", "Número"},
		{"E01", "CONSULTA", "01/02/2025", "1"},
		{"E02", "CONSULTA", "01/02/2025", "1"},
		{},
		{"E01", "COPIAS", "02/02/2025", 2},
	}
	cases := []struct {
		clinic, number string
		want           int
	}{
		{"E01", "1", 2},
		{"E02", "1", 3},
		{"E01", "2", 5},
		{"E03", "1", 0},
	}
	for _, tc := range cases {
		if got := findRecordRow(values, tc.clinic, tc.number); got != tc.want {
			t.Fatalf("findRecordRow(%s,%s) = %d, want %d", tc.clinic, tc.number, got, tc.want)
		}
	}
	if findRecordRow(nil, "E01", "1") != 0 {
		t.Fatal("empty sheet")
	}
}

func TestRowRange(t *testing.T) {
	if got := rowRange("Recetas", 7); got != "Recetas!A7:J7" {
		t.Fatalf("got %q", got)
	}
}
