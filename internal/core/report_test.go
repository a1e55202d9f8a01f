package core

import (
	"testing"
	"time"
)

func TestReportBucketsWrapYear(t *testing.T) {
	today := time.Date(2025, time.February, 10, 12, 0, 0, 0, time.UTC)
	b := ReportBuckets(today)
	want := []MonthBucket{
		{Month: 1, Year: 2025, Label: "FEBRERO"},
		{Month: 0, Year: 2025, Label: "ENERO"},
		{Month: 11, Year: 2024, Label: "DICIEMBRE"},
	}
	if len(b) != len(want) {
		t.Fatalf("len: %d", len(b))
	}
	for i := range want {
		if b[i] != want[i] {
			t.Fatalf("bucket %d: want %+v, got %+v", i, want[i], b[i])
		}
	}
}

func reportRecords() []Record {
	return []Record{
		rec(Consult, "03/02/2025", "08:00", "08:20"),
		rec(Consult, "04/02/2025", "08:00", "08:40"),
		rec(Consult, "10/01/2025", "08:00", "07:00"), // counted, not averaged
		rec(Consult, "24/12/2024", "08:00", "09:00"),
		rec(Consult, "01/06/2024", "08:00", "10:00"), // outside the window
		rec(Emergency, "05/02/2025", "10:00", "10:05"),
		rec(Copy, "", "10:00", "10:30"), // undated
	}
}

func TestBuildRollingReportWindow(t *testing.T) {
	today := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
	rep := BuildRollingReport(reportRecords(), today, ScopeWindow)

	c, ok := rep.Category(Consult)
	if !ok {
		t.Fatalf("missing consult section")
	}
	counts := []int{c.Buckets[0].Count, c.Buckets[1].Count, c.Buckets[2].Count}
	if counts[0] != 2 || counts[1] != 1 || counts[2] != 1 {
		t.Fatalf("bucket counts: %v", counts)
	}
	if c.Buckets[0].Average != 30 || c.Buckets[1].Average != 0 || c.Buckets[2].Average != 60 {
		t.Fatalf("bucket averages: %+v", c.Buckets)
	}
	if c.TotalCount != 4 {
		t.Fatalf("total count: %d", c.TotalCount)
	}
	// (20 + 40 + 60) / 3
	if c.TotalAverage != 40 {
		t.Fatalf("total average: %d", c.TotalAverage)
	}

	cp, _ := rep.Category(Copy)
	if cp.TotalCount != 0 {
		t.Fatalf("undated copy should be outside the window")
	}
	if rep.GrandCount != 5 {
		t.Fatalf("grand count: %d", rep.GrandCount)
	}
	// (20 + 40 + 60 + 5) / 4 = 31.25
	if rep.GrandAverage != 31 {
		t.Fatalf("grand average: %d", rep.GrandAverage)
	}
}

func TestBuildRollingReportAllRecords(t *testing.T) {
	today := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
	rep := BuildRollingReport(reportRecords(), today, ScopeAllRecords)

	c, _ := rep.Category(Consult)
	if c.TotalCount != 5 {
		t.Fatalf("total count: %d", c.TotalCount)
	}
	// (20 + 40 + 60 + 120) / 4
	if c.TotalAverage != 60 {
		t.Fatalf("total average: %d", c.TotalAverage)
	}
	cp, _ := rep.Category(Copy)
	if cp.TotalCount != 1 || cp.TotalAverage != 30 {
		t.Fatalf("copy totals: %+v", cp)
	}
	if rep.GrandCount != 7 {
		t.Fatalf("grand count: %d", rep.GrandCount)
	}
	if c.Buckets[0].Count != 2 {
		t.Fatalf("buckets must not depend on scope")
	}
}

func TestParseTotalScope(t *testing.T) {
	for in, want := range map[string]TotalScope{"": ScopeWindow, "window": ScopeWindow, "ALL": ScopeAllRecords} {
		got, err := ParseTotalScope(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v err=%v", in, got, err)
		}
	}
	if _, err := ParseTotalScope("quarter"); err == nil {
		t.Fatalf("expected error")
	}
}
