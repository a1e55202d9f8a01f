// Package http provides the dashboard server and its handlers.
//
// This file implements utilities for parsing and validating HTTP request data:
// record bodies sent as JSON or form data, and dashboard filters.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tiempos/internal/core"
)

// maxBodyBytes bounds record request bodies.
const maxBodyBytes = 64 << 10

// ErrInvalidFilter is returned for month/year query values that are not
// integers or out of range.
var ErrInvalidFilter = errors.New("invalid filter")

// ParseFilter reads the optional month (0-11) and year query parameters.
func ParseFilter(query url.Values) (core.Filter, error) {
	var f core.Filter
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 0 || m > 11 {
			return core.Filter{}, fmt.Errorf("%w: month %q", ErrInvalidFilter, v)
		}
		f.Month = &m
	}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			return core.Filter{}, fmt.Errorf("%w: year %q", ErrInvalidFilter, v)
		}
		f.Year = &y
	}
	return f, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// Record builds a draft record from the body fields. The wire names are the
// ones stored in the document store. Creation and ownership are set by the
// session, never by the client.
func (p *RequestBodyParser) Record() core.Record {
	return core.Record{
		Category:  core.Category(strings.ToUpper(p.Get("tipo"))),
		Date:      normalizeDate(p.Get("fecha")),
		Number:    p.Get("num"),
		Entered:   p.Get("hentra"),
		Digitized: p.Get("hdigita"),
		Collated:  p.Get("hacopio"),
		Reviewed:  p.Get("hrevisa"),
	}
}

// normalizeDate accepts the YYYY-MM-DD value of an HTML date input and
// rewrites it as DD/MM/YYYY. Anything else is passed through for validation.
func normalizeDate(s string) string {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return core.FormatDate(core.Date{Time: t})
	}
	return s
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
