package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"tiempos/internal/core"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantMonth *int
		wantYear  *int
		wantErr   bool
	}{
		{name: "empty", query: url.Values{}},
		{name: "month and year", query: url.Values{"month": {"0"}, "year": {"2025"}}, wantMonth: ptr(0), wantYear: ptr(2025)},
		{name: "only year", query: url.Values{"year": {"2024"}}, wantYear: ptr(2024)},
		{name: "only month", query: url.Values{"month": {"11"}}, wantMonth: ptr(11)},
		{name: "blank values are ignored", query: url.Values{"month": {" "}, "year": {""}}},
		{name: "month out of range", query: url.Values{"month": {"12"}}, wantErr: true},
		{name: "negative month", query: url.Values{"month": {"-1"}}, wantErr: true},
		{name: "non numeric year", query: url.Values{"year": {"abc"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFilter(tt.query)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFilter) {
					t.Fatalf("err = %v, want ErrInvalidFilter", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !samePtr(f.Month, tt.wantMonth) {
				t.Errorf("Month = %v, want %v", f.Month, tt.wantMonth)
			}
			if !samePtr(f.Year, tt.wantYear) {
				t.Errorf("Year = %v, want %v", f.Year, tt.wantYear)
			}
		})
	}
}

func ptr(v int) *int { return &v }

func samePtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"tipo": "consulta", "num": 123, "fecha": "05/03/2025", "hentra": "08:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	rec := parser.Record()
	if rec.Category != core.Consult {
		t.Errorf("Category = %q", rec.Category)
	}
	if rec.Number != "123" {
		t.Errorf("Number = %q, want 123", rec.Number)
	}
	if rec.Date != "05/03/2025" || rec.Entered != "08:00" {
		t.Errorf("record = %+v", rec)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "tipo=COPIAS&num=7&fecha=2025-03-05&hentra=08%3A00&hdigita=08%3A05&hacopio=08%3A10&hrevisa=08%3A20&usuario=intruso"
	req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	rec := parser.Record()
	want := core.Record{
		Category:  core.Copy,
		Date:      "05/03/2025",
		Number:    "7",
		Entered:   "08:00",
		Digitized: "08:05",
		Collated:  "08:10",
		Reviewed:  "08:20",
	}
	if rec != want {
		t.Errorf("Record() = %+v, want %+v", rec, want)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"tipo":`))
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  12\x00\x07 "); got != "12" {
		t.Errorf("sanitizeInput = %q", got)
	}
	if got := sanitizeInput("a\tb"); got != "a\tb" {
		t.Errorf("sanitizeInput kept = %q", got)
	}
}
