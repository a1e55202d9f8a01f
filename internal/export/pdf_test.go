package export

import (
	"bytes"
	"testing"
	"time"

	"tiempos/internal/core"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"E01", "reporte-trimestral-E01.pdf"},
		{"e_01-b", "reporte-trimestral-e_01-b.pdf"},
		{`E0"1`, "reporte-trimestral-E0_1.pdf"},
		{"../E01", "reporte-trimestral-___E01.pdf"},
		{"E 01;x", "reporte-trimestral-E_01_x.pdf"},
	}
	for _, tt := range tests {
		if got := FileName(tt.code); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestExportWritesPDF(t *testing.T) {
	records := []core.Record{
		{Category: core.Consult, Date: "03/02/2025", Entered: "08:00", Reviewed: "08:20"},
		{Category: core.Emergency, Date: "10/01/2025", Entered: "10:00", Reviewed: "10:45"},
		{Category: core.Copy, Date: "20/12/2024", Entered: "11:00", Reviewed: "11:05"},
	}
	today := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
	rep := core.BuildRollingReport(records, today, core.ScopeWindow)

	var buf bytes.Buffer
	err := PDFExporter{Author: "ana@example.com"}.Export(&buf, core.Clinic{Code: "E01", Name: "EBAIS Atención Centro"}, rep)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
	if buf.Len() < 500 {
		t.Fatalf("suspiciously small document: %d bytes", buf.Len())
	}
}

func TestExportEmptyReport(t *testing.T) {
	rep := core.BuildRollingReport(nil, time.Now(), core.ScopeAllRecords)
	var buf bytes.Buffer
	if err := (PDFExporter{}).Export(&buf, core.Clinic{Code: "E02"}, rep); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}
