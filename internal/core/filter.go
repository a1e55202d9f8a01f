package core

type (
	// Filter narrows records by calendar month (0-indexed) and/or year.
	// A nil field is not a criterion.
	Filter struct {
		Month *int
		Year  *int
	}

	// FilterResult is the filtered sequence plus per-category counts over it.
	FilterResult struct {
		Records []Record
		Counts  map[Category]int
	}
)

// Empty reports whether the filter has no criteria.
func (f Filter) Empty() bool {
	return f.Month == nil && f.Year == nil
}

// Matches reports whether a record passes the filter. Records with an absent
// or unparseable date only match the empty filter.
func (f Filter) Matches(r Record) bool {
	if f.Empty() {
		return true
	}
	d, ok, err := ParseDate(r.Date)
	if err != nil || !ok {
		return false
	}
	if f.Month != nil && d.Month0() != *f.Month {
		return false
	}
	if f.Year != nil && d.Year() != *f.Year {
		return false
	}
	return true
}

// FilterRecords returns a new slice holding the records that match f, in
// their original order.
func FilterRecords(records []Record, f Filter) FilterResult {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return FilterResult{Records: out, Counts: CountByCategory(out)}
}

// CountByCategory counts records per category. Every known category is
// present in the result, possibly with zero.
func CountByCategory(records []Record) map[Category]int {
	counts := make(map[Category]int, 3)
	for _, c := range Categories() {
		counts[c] = 0
	}
	for _, r := range records {
		if r.Category.Valid() {
			counts[r.Category]++
		}
	}
	return counts
}

func intPtr(v int) *int { return &v }
