// Package http provides the dashboard server and its handlers.
package http

import (
	"encoding/json"
	"html/template"
	"net/http"

	"tiempos/internal/services"
)

// HTMX trigger names the page listens to.
const (
	triggerNotification   = "show-notification"
	triggerRecordsChanged = "records:changed"
	triggerClinicSelected = "clinic:selected"
	triggerFormReset      = "form:reset"
)

// NotificationType is the toast style on the page.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

type notificationPayload struct {
	Type     NotificationType `json:"type"`
	Message  string           `json:"message"`
	Duration int              `json:"duration"`
}

type clinicPayload struct {
	Clinic string `json:"clinic"`
}

// HTMXResponseBuilder assembles a response together with its HX-Trigger
// events. Later triggers with the same name replace earlier ones.
type HTMXResponseBuilder struct {
	status   int
	header   http.Header
	triggers map[string]any
	body     []byte
}

// NewHTMXResponse starts a 200 response.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		status:   http.StatusOK,
		header:   make(http.Header),
		triggers: make(map[string]any),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.status = code
	return b
}

// Trigger adds a named HX-Trigger event with its detail.
func (b *HTMXResponseBuilder) Trigger(name string, detail any) *HTMXResponseBuilder {
	b.triggers[name] = detail
	return b
}

// TriggerRecordsChanged makes the page reload the dashboard partial.
func (b *HTMXResponseBuilder) TriggerRecordsChanged(clinic string) *HTMXResponseBuilder {
	return b.Trigger(triggerRecordsChanged, clinicPayload{Clinic: clinic})
}

func (b *HTMXResponseBuilder) TriggerClinicSelected(clinic string) *HTMXResponseBuilder {
	return b.Trigger(triggerClinicSelected, clinicPayload{Clinic: clinic})
}

// TriggerFormReset clears the record form after a successful create.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(triggerFormReset, struct{}{})
}

func (b *HTMXResponseBuilder) TriggerNotification(typ NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger(triggerNotification, notificationPayload{Type: typ, Message: message, Duration: durationMs})
}

// TriggerNotice forwards a service notice. Empty notices are ignored.
func (b *HTMXResponseBuilder) TriggerNotice(n services.Notice) *HTMXResponseBuilder {
	if n.Empty() {
		return b
	}
	return b.TriggerNotification(NotificationType(n.Level), n.Text, int(n.Duration.Milliseconds()))
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, noticeMillis())
}

func noticeMillis() int {
	return int(services.NoticeDuration.Milliseconds())
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.header.Set(name, value)
	return b
}

// Body sets raw bytes; the caller sets Content-Type.
func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
	return b
}

func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.header.Set("Content-Type", "text/html; charset=utf-8")
	return b.Body([]byte(html))
}

// BodyJSON encodes v as the body. An encoding failure turns the response
// into a plain 500.
func (b *HTMXResponseBuilder) BodyJSON(v any) *HTMXResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.status = http.StatusInternalServerError
		b.header.Set("Content-Type", "text/plain; charset=utf-8")
		return b.Body([]byte("encoding error"))
	}
	b.header.Set("Content-Type", "application/json")
	return b.Body(data)
}

// Write sends headers, triggers, status and body.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	h := w.Header()
	for name, values := range b.header {
		h[name] = values
	}
	if len(b.triggers) > 0 {
		if raw, err := json.Marshal(b.triggers); err == nil {
			h.Set("HX-Trigger", string(raw))
		}
	}
	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse renders message as an escaped HTML fragment and also raises
// it as an error toast.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		TriggerErrorNotification(message).
		BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnauthorizedError asks for a bearer token.
func UnauthorizedError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message).Header("WWW-Authenticate", `Bearer realm="tiempos"`)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}
