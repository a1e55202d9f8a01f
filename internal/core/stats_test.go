package core

import "testing"

func rec(c Category, date, entered, reviewed string) Record {
	return Record{Category: c, Date: date, Entered: entered, Reviewed: reviewed}
}

func TestSummarizeScenario(t *testing.T) {
	records := []Record{
		rec(Consult, "01/03/2025", "08:00", "08:30"),
		rec(Consult, "02/03/2025", "09:00", "09:45"),
	}
	s := Summarize(records, Consult)
	if s.Count != 2 {
		t.Fatalf("count: %d", s.Count)
	}
	if s.AverageText() != "00:38" {
		t.Fatalf("average: %s", s.AverageText())
	}
	if s.Min.String() != "00:30" || s.Max.String() != "00:45" {
		t.Fatalf("min/max: %s/%s", s.Min, s.Max)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	records := []Record{
		rec(Emergency, "01/03/2025", "08:00", "08:30"),
		rec(Consult, "01/03/2025", "09:00", "08:00"), // negative, excluded
		rec(Consult, "01/03/2025", "", "08:00"),      // missing start
	}
	s := Summarize(records, Consult)
	if s.Count != 0 || s.Average != 0 {
		t.Fatalf("want empty stats, got %+v", s)
	}
	if s.AverageText() != "00:00" {
		t.Fatalf("average text: %s", s.AverageText())
	}
	if s.Min.Valid || s.Max.Valid || s.Min.String() != "N/A" || s.Max.String() != "N/A" {
		t.Fatalf("min/max should be absent, got %+v %+v", s.Min, s.Max)
	}
	all := SummarizeAll(records)
	if all[Emergency].Count != 1 || all[Copy].Count != 0 {
		t.Fatalf("summarize all: %+v", all)
	}
}

func TestZeroDurationIsNotAbsent(t *testing.T) {
	s := Summarize([]Record{rec(Copy, "", "10:00", "10:00")}, Copy)
	if !s.Min.Valid || s.Min.String() != "00:00" {
		t.Fatalf("zero span should be present, got %+v", s.Min)
	}
}

func TestPreviousMonth(t *testing.T) {
	cases := []struct{ m, y, wm, wy int }{
		{0, 2025, 11, 2024},
		{5, 2025, 4, 2025},
		{11, 2025, 10, 2025},
	}
	for _, tc := range cases {
		m, y := PreviousMonth(tc.m, tc.y)
		if m != tc.wm || y != tc.wy {
			t.Fatalf("PreviousMonth(%d,%d) = %d,%d", tc.m, tc.y, m, y)
		}
	}
}

func TestPreviousMonthStatsUsesUnfilteredPool(t *testing.T) {
	all := []Record{
		rec(Consult, "15/12/2024", "08:00", "09:00"),
		rec(Consult, "15/01/2025", "08:00", "08:10"),
		rec(Consult, "15/12/2023", "08:00", "08:20"),
	}
	prev := PreviousMonthStats(all, 0, 2025)
	if prev[Consult].Count != 1 || prev[Consult].Average != 60 {
		t.Fatalf("previous month: %+v", prev[Consult])
	}
}

func TestOverallStats(t *testing.T) {
	records := []Record{
		rec(Consult, "", "08:00", "08:30"),
		rec(Copy, "", "09:00", "08:50"),
		rec(Emergency, "", "", ""),
	}
	o := OverallStats(records)
	if o.Count != 3 {
		t.Fatalf("count: %d", o.Count)
	}
	// (30 + -10) / 2
	if o.Average != 10 {
		t.Fatalf("average: %d", o.Average)
	}
}
