package core

import (
	"reflect"
	"testing"
)

func sampleRecords() []Record {
	return []Record{
		{Category: Consult, Number: "1", Date: "05/01/2025"},
		{Category: Emergency, Number: "2", Date: "20/02/2025"},
		{Category: Copy, Number: "3", Date: ""},
		{Category: Consult, Number: "4", Date: "05/01/2024"},
		{Category: Copy, Number: "5", Date: "bad"},
		{Category: Consult, Number: "6", Date: "31/01/2025"},
	}
}

func numbers(rs []Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Number
	}
	return out
}

func TestFilterIdentity(t *testing.T) {
	in := sampleRecords()
	res := FilterRecords(in, Filter{})
	if !reflect.DeepEqual(res.Records, in) {
		t.Fatalf("empty filter should be identity")
	}
	if res.Counts[Consult] != 3 || res.Counts[Emergency] != 1 || res.Counts[Copy] != 2 {
		t.Fatalf("counts: %+v", res.Counts)
	}
	res.Records[0].Number = "changed"
	if in[0].Number == "changed" {
		t.Fatalf("result must be a new slice")
	}
}

func TestFilterCriteria(t *testing.T) {
	cases := []struct {
		name   string
		filter Filter
		want   []string
		counts map[Category]int
	}{
		{"month only", Filter{Month: intPtr(0)}, []string{"1", "4", "6"}, map[Category]int{Consult: 3, Emergency: 0, Copy: 0}},
		{"year only", Filter{Year: intPtr(2025)}, []string{"1", "2", "6"}, map[Category]int{Consult: 2, Emergency: 1, Copy: 0}},
		{"month and year", Filter{Month: intPtr(0), Year: intPtr(2025)}, []string{"1", "6"}, map[Category]int{Consult: 2, Emergency: 0, Copy: 0}},
		{"no match", Filter{Month: intPtr(6)}, []string{}, map[Category]int{Consult: 0, Emergency: 0, Copy: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := FilterRecords(sampleRecords(), tc.filter)
			if got := numbers(res.Records); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
			if !reflect.DeepEqual(res.Counts, tc.counts) {
				t.Fatalf("counts: want %v, got %v", tc.counts, res.Counts)
			}
		})
	}
}
