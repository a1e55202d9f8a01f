package core

// OptionalMinutes distinguishes "no data" from a zero duration.
type OptionalMinutes struct {
	Minutes int
	Valid   bool
}

// Stats summarises the elapsed time of one category.
type Stats struct {
	Count   int
	Average int // rounded minutes, 0 when Count is 0
	Min     OptionalMinutes
	Max     OptionalMinutes
}

// OverallTotals is the count of all records and the average over every
// record with both boundary times, negative spans included.
type OverallTotals struct {
	Count   int
	Average int
}

func SomeMinutes(m int) OptionalMinutes {
	return OptionalMinutes{Minutes: m, Valid: true}
}

// String renders "HH:MM", or "N/A" when no value is present.
func (o OptionalMinutes) String() string {
	if !o.Valid {
		return "N/A"
	}
	return FormatMinutes(o.Minutes)
}

// AverageText renders the average as "HH:MM".
func (s Stats) AverageText() string {
	return FormatMinutes(s.Average)
}

// samples collects the non-negative elapsed spans of one category.
func samples(records []Record, c Category) []int {
	var out []int
	for _, r := range records {
		if r.Category != c {
			continue
		}
		if m, ok := r.Elapsed(); ok && m >= 0 {
			out = append(out, m)
		}
	}
	return out
}

func average(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return roundMinutes(float64(sum) / float64(len(values)))
}

// Summarize computes count, average, min and max elapsed time for category c.
func Summarize(records []Record, c Category) Stats {
	values := samples(records, c)
	if len(values) == 0 {
		return Stats{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return Stats{
		Count:   len(values),
		Average: average(values),
		Min:     SomeMinutes(lo),
		Max:     SomeMinutes(hi),
	}
}

// SummarizeAll runs Summarize for every category.
func SummarizeAll(records []Record) map[Category]Stats {
	out := make(map[Category]Stats, 3)
	for _, c := range Categories() {
		out[c] = Summarize(records, c)
	}
	return out
}

// PreviousMonth steps back one calendar month. month0 is 0-indexed.
func PreviousMonth(month0, year int) (int, int) {
	if month0 == 0 {
		return 11, year - 1
	}
	return month0 - 1, year
}

// PreviousMonthStats summarises each category over the month before
// (month0, year), drawing from the unfiltered pool.
func PreviousMonthStats(all []Record, month0, year int) map[Category]Stats {
	pm, py := PreviousMonth(month0, year)
	prev := FilterRecords(all, Filter{Month: intPtr(pm), Year: intPtr(py)})
	return SummarizeAll(prev.Records)
}

// OverallStats computes the "total general" figures shown under the per-category
// cards.
func OverallStats(records []Record) OverallTotals {
	var spans []int
	for _, r := range records {
		if m, ok := r.Elapsed(); ok {
			spans = append(spans, m)
		}
	}
	avg := average(spans)
	if avg < 0 {
		avg = 0
	}
	return OverallTotals{Count: len(records), Average: avg}
}
