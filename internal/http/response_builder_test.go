package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tiempos/internal/services"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		Body([]byte("test")).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerRecordsChanged("E01").
		TriggerFormReset().
		TriggerNotice(services.Notice{Level: services.LevelSuccess, Text: "Listo", Duration: services.NoticeDuration}).
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("HX-Trigger header not set")
	}

	expectedParts := []string{
		`"records:changed"`,
		`"form:reset"`,
		`"show-notification"`,
		`"clinic":"E01"`,
		`"type":"success"`,
		`"duration":3000`,
	}
	for _, part := range expectedParts {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestHTMXResponseBuilder_Notice(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerNotice(services.Notice{Level: services.LevelWarning, Text: "Cuidado", Duration: 3 * time.Second}).
		Write(w)

	var triggers map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("decode trigger: %v", err)
	}
	n := triggers["show-notification"]
	if n["type"] != "warning" || n["message"] != "Cuidado" || n["duration"] != float64(3000) {
		t.Errorf("notification = %v", n)
	}

	w = httptest.NewRecorder()
	NewHTMXResponse().TriggerNotice(services.Notice{}).Write(w)
	if got := w.Header().Get("HX-Trigger"); got != "" {
		t.Errorf("empty notice produced trigger %q", got)
	}
}

func TestHTMXResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().Status(http.StatusCreated).BodyJSON(map[string]int{"n": 1}).Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if strings.TrimSpace(w.Body.String()) != `{"n":1}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestHTMXResponseBuilder_CustomHeader(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Header("X-Custom", "value").
		Status(http.StatusCreated).
		Write(w)

	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bad request",
			builder:    BadRequestError("Filtro inválido"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `<div class="error">Filtro inválido</div>`,
		},
		{
			name:       "unauthorized",
			builder:    UnauthorizedError("Inicia sesión"),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `<div class="error">Inicia sesión</div>`,
		},
		{
			name:       "internal server error",
			builder:    InternalServerError("Something broke"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `<div class="error">Something broke</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequestError("<script>alert('xss')</script>").Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("Error response did not escape HTML")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("Error response did not properly escape HTML entities")
	}
}

func TestErrorResponse_RaisesToast(t *testing.T) {
	w := httptest.NewRecorder()
	UnauthorizedError("Inicia sesión").Write(w)

	var triggers map[string]notificationPayload
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("decode trigger: %v", err)
	}
	n := triggers["show-notification"]
	if n.Type != NotificationError || n.Message != "Inicia sesión" || n.Duration != 3000 {
		t.Errorf("notification = %+v", n)
	}
	if got := w.Header().Get("WWW-Authenticate"); !strings.HasPrefix(got, "Bearer") {
		t.Errorf("WWW-Authenticate = %q", got)
	}
}

func TestHTMXResponseBuilder_LastTriggerWins(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerNotification(NotificationSuccess, "uno", 3000).
		TriggerErrorNotification("dos").
		Write(w)

	var triggers map[string]notificationPayload
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("decode trigger: %v", err)
	}
	if n := triggers["show-notification"]; n.Type != NotificationError || n.Message != "dos" {
		t.Errorf("notification = %+v", n)
	}
}
