package core

import (
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, ok, err := ParseDate("05/03/2025")
	if err != nil || !ok {
		t.Fatalf("unexpected: ok=%v err=%v", ok, err)
	}
	if d.Day() != 5 || d.Month0() != 2 || d.Year() != 2025 {
		t.Fatalf("wrong date %v", d)
	}

	if _, ok, err := ParseDate(""); ok || err != nil {
		t.Fatalf("empty: want ok=false err=nil, got ok=%v err=%v", ok, err)
	}

	for _, in := range []string{"05-03-2025", "aa/03/2025", "05/03"} {
		if _, _, err := ParseDate(in); !errors.Is(err, ErrMalformedDate) {
			t.Fatalf("%q: want ErrMalformedDate, got %v", in, err)
		}
	}
}

func TestParseDateNormalises(t *testing.T) {
	d, ok, err := ParseDate("31/02/2025")
	if err != nil || !ok {
		t.Fatalf("unexpected: ok=%v err=%v", ok, err)
	}
	if got := FormatDate(d); got != "03/03/2025" {
		t.Fatalf("want 03/03/2025, got %s", got)
	}
}

func TestDateRoundTrip(t *testing.T) {
	dates := []Date{
		NewDate(2025, 1, 1),
		NewDate(2024, 2, 29),
		NewDate(1999, 12, 31),
		NewDate(2025, 7, 9),
	}
	for _, d := range dates {
		got, ok, err := ParseDate(FormatDate(d))
		if err != nil || !ok {
			t.Fatalf("%v: ok=%v err=%v", d, ok, err)
		}
		if !got.Equal(d.Time) {
			t.Fatalf("round trip: want %v, got %v", d, got)
		}
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" consulta ")
	if err != nil || c != Consult {
		t.Fatalf("want CONSULTA, got %q err=%v", c, err)
	}
	if _, err := ParseCategory("URGENCIAS"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("want ErrUnknownCategory, got %v", err)
	}
	if got := Emergency.Color().Hex(); got != "#1697f6" {
		t.Fatalf("emergency color: %s", got)
	}
}

func TestClinicLabel(t *testing.T) {
	c := Clinic{Code: "E12", Name: "EBAIS Centro"}
	if c.Label() != "E12 - EBAIS Centro" {
		t.Fatalf("label: %q", c.Label())
	}
	if ClinicCodeFromLabel(c.Label()) != "E12" {
		t.Fatalf("code from label")
	}
	if ClinicCodeFromLabel("E12") != "E12" {
		t.Fatalf("bare code")
	}
}

func TestSortNewestFirst(t *testing.T) {
	recs := []Record{
		{Number: "a", CreatedAt: 10},
		{Number: "b"},
		{Number: "c", CreatedAt: 30},
		{Number: "d"},
		{Number: "e", CreatedAt: 20},
	}
	SortNewestFirst(recs)
	want := []string{"c", "e", "a", "b", "d"}
	for i, r := range recs {
		if r.Number != want[i] {
			t.Fatalf("position %d: want %s, got %s", i, want[i], r.Number)
		}
	}
}
