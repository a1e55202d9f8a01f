package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	Consult   Category = "CONSULTA"
	Emergency Category = "EMERGENCIAS"
	Copy      Category = "COPIAS"
)

type (
	// Category is one of the three prescription-handling workflows.
	Category string

	// RGB is a display color.
	RGB struct {
		R, G, B uint8
	}

	Date struct {
		time.Time
	}

	// Record is one prescription fulfillment event. Times are kept as the
	// "HH:MM" text the user entered; Date as "DD/MM/YYYY".
	Record struct {
		Category  Category
		Date      string
		Number    string // sequence number, document key within a clinic
		Entered   string
		Digitized string
		Collated  string
		Reviewed  string
		Owner     string // email of the user who created/edited the record
		CreatedAt int64  // unix millis, 0 when unknown
	}

	// Clinic is an EBAIS identified by a short code.
	Clinic struct {
		Code string
		Name string
	}
)

var (
	ErrMissingField    = errors.New("missing required field")
	ErrOutOfWindow     = errors.New("time outside working window")
	ErrOutOfOrder      = errors.New("times out of order")
	ErrUnknownCategory = errors.New("unknown category")
	ErrMalformedTime   = errors.New("malformed time of day")
	ErrMalformedDate   = errors.New("malformed date")
	ErrInvalidNumber   = errors.New("invalid sequence number")
	ErrDuplicateNumber = errors.New("duplicate sequence number")
)

var categoryColors = map[Category]RGB{
	Consult:   {24, 103, 192},
	Emergency: {22, 151, 246},
	Copy:      {123, 198, 255},
}

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{Consult, Emergency, Copy}
}

// ParseCategory accepts the source labels, case-insensitively.
func ParseCategory(label string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(label)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, label)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// Color returns the display color of the category.
func (c Category) Color() RGB {
	return categoryColors[c]
}

// Hex renders the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Month0 returns the zero-indexed month (January = 0).
func (d Date) Month0() int {
	return int(d.Time.Month()) - 1
}

// Label renders the clinic the way it is shown in pickers: "CODE - Name".
func (c Clinic) Label() string {
	if c.Name == "" {
		return c.Code
	}
	return c.Code + " - " + c.Name
}

// ClinicCodeFromLabel extracts the short code from a "CODE - Name" label.
func ClinicCodeFromLabel(label string) string {
	code, _, _ := strings.Cut(label, " - ")
	return strings.TrimSpace(code)
}

// Elapsed returns the minutes between Entered and Reviewed. ok is false when
// either time is absent or malformed.
func (r Record) Elapsed() (minutes int, ok bool) {
	if r.Entered == "" || r.Reviewed == "" {
		return 0, false
	}
	m, err := MinutesBetweenText(r.Entered, r.Reviewed)
	if err != nil {
		return 0, false
	}
	return m, true
}

// SortNewestFirst orders records by descending CreatedAt. Records without a
// creation timestamp sort last; ties keep their relative order.
func SortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})
}
