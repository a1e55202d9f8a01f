package http

import (
	"bytes"
	"mime"
	"net/http"

	"tiempos/internal/core"
	"tiempos/internal/export"
	"tiempos/internal/log"
	"tiempos/internal/services"
)

type statsJSON struct {
	Count   int    `json:"count"`
	Average string `json:"average"`
	Min     string `json:"min"`
	Max     string `json:"max"`
}

func toStatsJSON(st core.Stats) statsJSON {
	return statsJSON{Count: st.Count, Average: st.AverageText(), Min: st.Min.String(), Max: st.Max.String()}
}

type categoryJSON struct {
	Category string     `json:"category"`
	Color    string     `json:"color"`
	Count    int        `json:"count"`
	Stats    statsJSON  `json:"stats"`
	Previous *statsJSON `json:"previous,omitempty"`
}

type dashboardJSON struct {
	Clinic        *clinicJSON    `json:"clinic,omitempty"`
	Records       []recordJSON   `json:"records"`
	Categories    []categoryJSON `json:"categories"`
	TotalCount    int            `json:"totalCount"`
	TotalAverage  string         `json:"totalAverage"`
	PreviousLabel string         `json:"previousLabel,omitempty"`
}

func toDashboardJSON(v services.DashboardView) dashboardJSON {
	out := dashboardJSON{
		Records:       toRecordsJSON(v.Records),
		TotalCount:    v.Overall.Count,
		TotalAverage:  core.FormatMinutes(v.Overall.Average),
		PreviousLabel: v.PreviousLabel,
	}
	if v.Clinic != nil {
		c := toClinicJSON(*v.Clinic)
		out.Clinic = &c
	}
	for _, cv := range v.Categories {
		cj := categoryJSON{
			Category: string(cv.Category),
			Color:    cv.Color,
			Count:    cv.Count,
			Stats:    toStatsJSON(cv.Stats),
		}
		if v.HasPrevious {
			p := toStatsJSON(cv.Previous)
			cj.Previous = &p
		}
		out.Categories = append(out.Categories, cj)
	}
	return out
}

// dashboardView parses the filter and computes the (memoised) view.
func (s *Server) dashboardView(r *http.Request, sess *services.Session) (services.DashboardView, bool) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		return services.DashboardView{}, false
	}
	return s.dashboard.View(sess.Snapshot(), f), true
}

func (s *Server) handleDashboardJSON(w http.ResponseWriter, r *http.Request, sess *services.Session, initial services.Notice) {
	v, ok := s.dashboardView(r, sess)
	if !ok {
		BadRequestError("Filtro de mes o año no válido").Write(w)
		return
	}
	NewHTMXResponse().TriggerNotice(initial).BodyJSON(toDashboardJSON(v)).Write(w)
}

// handleDashboardPartial renders the cards, the overall line and the table.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request, sess *services.Session, initial services.Notice) {
	l := log.FromContext(r.Context())
	v, ok := s.dashboardView(r, sess)
	if !ok {
		BadRequestError("Filtro de mes o año no válido").Write(w)
		return
	}
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard.html", v); err != nil {
		l.ErrorContext(r.Context(), "Template execution error", log.FieldError, err, "template", "dashboard.html")
		InternalServerError("Error mostrando el tablero").Write(w)
		return
	}
	NewHTMXResponse().TriggerNotice(initial).BodyHTML(buf.String()).Write(w)
}

// handleReport streams the rolling quarterly PDF of the active clinic.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, sess *services.Session, _ services.Notice) {
	l := log.FromContext(r.Context()).WithComponent(log.ComponentReport)
	clinic, ok := sess.Active()
	if !ok {
		NewHTMXResponse().
			Status(http.StatusConflict).
			TriggerNotification(NotificationWarning, services.MsgSelectClinic, int(services.NoticeDuration.Milliseconds())).
			BodyJSON(mutationJSON{Notice: &noticeJSON{Type: string(services.LevelWarning), Message: services.MsgSelectClinic, Duration: services.NoticeDuration.Milliseconds()}}).
			Write(w)
		return
	}

	report := core.BuildRollingReport(sess.Records(), s.now(), s.scope)
	var buf bytes.Buffer
	if err := s.exporter.Export(&buf, clinic, report); err != nil {
		l.ErrorContext(r.Context(), "Report export failed", log.FieldClinic, clinic.Code, log.FieldOperation, log.OpExport, log.FieldError, err)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			TriggerErrorNotification("Error generando el reporte.").
			Write(w)
		return
	}

	l.InfoContext(r.Context(), "Report exported", log.FieldClinic, clinic.Code, log.FieldOperation, log.OpExport, "bytes", buf.Len())
	NewHTMXResponse().
		Header("Content-Type", "application/pdf").
		Header("Content-Disposition", reportDisposition(clinic.Code)).
		Body(buf.Bytes()).
		Write(w)
}

func reportDisposition(clinicCode string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName(clinicCode)})
}
