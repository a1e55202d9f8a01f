package core

import (
	"fmt"
	"strings"
	"time"
)

// ReportMonths is the number of month buckets in the rolling report.
const ReportMonths = 3

// TotalScope selects which records feed a category's grand total.
type TotalScope int

const (
	// ScopeWindow totals only the records inside the report buckets.
	ScopeWindow TotalScope = iota
	// ScopeAllRecords totals every record of the category regardless of date.
	ScopeAllRecords
)

var monthNames = [12]string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

type (
	// MonthBucket is one calendar month of the report.
	MonthBucket struct {
		Month int // 0-indexed
		Year  int
		Label string
	}

	// BucketStats is a category's figures for one bucket.
	BucketStats struct {
		Bucket  MonthBucket
		Count   int
		Average int
	}

	// CategoryReport holds the buckets of one category, newest first, and
	// the category total.
	CategoryReport struct {
		Category     Category
		Buckets      []BucketStats
		TotalCount   int
		TotalAverage int
	}

	// RollingReport covers the last ReportMonths calendar months.
	RollingReport struct {
		Generated    time.Time
		Scope        TotalScope
		Buckets      []MonthBucket
		Categories   []CategoryReport
		GrandCount   int
		GrandAverage int
	}
)

// ParseTotalScope accepts "window" and "all". Empty means window.
func ParseTotalScope(s string) (TotalScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "window":
		return ScopeWindow, nil
	case "all":
		return ScopeAllRecords, nil
	default:
		return ScopeWindow, fmt.Errorf("unknown report total scope %q", s)
	}
}

func (s TotalScope) String() string {
	if s == ScopeAllRecords {
		return "all"
	}
	return "window"
}

// MonthName returns the upper-case Spanish name of a 0-indexed month.
func MonthName(month0 int) string {
	return monthNames[((month0%12)+12)%12]
}

// ReportBuckets returns the months ending at today's month, newest first.
func ReportBuckets(today time.Time) []MonthBucket {
	month, year := int(today.Month())-1, today.Year()
	out := make([]MonthBucket, 0, ReportMonths)
	for range ReportMonths {
		out = append(out, MonthBucket{Month: month, Year: year, Label: MonthName(month)})
		month, year = PreviousMonth(month, year)
	}
	return out
}

func (b MonthBucket) contains(r Record) bool {
	return Filter{Month: intPtr(b.Month), Year: intPtr(b.Year)}.Matches(r)
}

// BuildRollingReport buckets records into the months ending at today. A
// bucket's count is every record of the category dated in it; averages use
// only records with both boundary times and a non-negative span.
func BuildRollingReport(records []Record, today time.Time, scope TotalScope) RollingReport {
	rep := RollingReport{
		Generated: today,
		Scope:     scope,
		Buckets:   ReportBuckets(today),
	}

	var grandSpans []int
	for _, c := range Categories() {
		cr := CategoryReport{Category: c}
		var windowSpans []int
		for _, b := range rep.Buckets {
			bs := BucketStats{Bucket: b}
			var spans []int
			for _, r := range records {
				if r.Category != c || !b.contains(r) {
					continue
				}
				bs.Count++
				if m, ok := r.Elapsed(); ok && m >= 0 {
					spans = append(spans, m)
				}
			}
			bs.Average = average(spans)
			windowSpans = append(windowSpans, spans...)
			cr.TotalCount += bs.Count
			cr.Buckets = append(cr.Buckets, bs)
		}

		totalSpans := windowSpans
		if scope == ScopeAllRecords {
			cr.TotalCount = 0
			totalSpans = nil
			for _, r := range records {
				if r.Category != c {
					continue
				}
				cr.TotalCount++
				if m, ok := r.Elapsed(); ok && m >= 0 {
					totalSpans = append(totalSpans, m)
				}
			}
		}
		cr.TotalAverage = average(totalSpans)
		grandSpans = append(grandSpans, totalSpans...)
		rep.GrandCount += cr.TotalCount
		rep.Categories = append(rep.Categories, cr)
	}
	rep.GrandAverage = average(grandSpans)
	return rep
}

// Category returns the report section of c.
func (r RollingReport) Category(c Category) (CategoryReport, bool) {
	for _, cr := range r.Categories {
		if cr.Category == c {
			return cr, true
		}
	}
	return CategoryReport{}, false
}
