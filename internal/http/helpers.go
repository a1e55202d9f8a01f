package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tiempos/internal/core"
	"tiempos/internal/services"
	"tiempos/internal/store"
)

// recordJSON is the API form of a record. Field names follow the stored
// documents so clients can send back what they received.
type recordJSON struct {
	Category  string `json:"tipo"`
	Date      string `json:"fecha"`
	Number    string `json:"num"`
	Entered   string `json:"hentra"`
	Digitized string `json:"hdigita"`
	Collated  string `json:"hacopio"`
	Reviewed  string `json:"hrevisa"`
	Owner     string `json:"usuario"`
	CreatedAt int64  `json:"createdAt,omitempty"`
	Elapsed   string `json:"tiempoTotal"`
}

func toRecordJSON(r core.Record) recordJSON {
	elapsed := "N/A"
	if m, ok := r.Elapsed(); ok {
		elapsed = core.FormatMinutes(m)
	}
	return recordJSON{
		Category:  string(r.Category),
		Date:      r.Date,
		Number:    r.Number,
		Entered:   r.Entered,
		Digitized: r.Digitized,
		Collated:  r.Collated,
		Reviewed:  r.Reviewed,
		Owner:     r.Owner,
		CreatedAt: r.CreatedAt,
		Elapsed:   elapsed,
	}
}

func toRecordsJSON(records []core.Record) []recordJSON {
	out := make([]recordJSON, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordJSON(r))
	}
	return out
}

type clinicJSON struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

func toClinicJSON(c core.Clinic) clinicJSON {
	return clinicJSON{Code: c.Code, Name: c.Name, Label: c.Label()}
}

type noticeJSON struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Duration int64  `json:"duration"`
}

func toNoticeJSON(n services.Notice) *noticeJSON {
	if n.Empty() {
		return nil
	}
	return &noticeJSON{Type: string(n.Level), Message: n.Text, Duration: n.Duration.Milliseconds()}
}

// statusFor maps a session error to the response status.
func statusFor(err error) int {
	var verr *core.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, core.ErrDuplicateNumber):
		return http.StatusConflict
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNoClinicSelected):
		return http.StatusConflict
	case errors.Is(err, services.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// firstNotice returns n unless it is empty.
func firstNotice(n, fallback services.Notice) services.Notice {
	if n.Empty() {
		return fallback
	}
	return n
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
