package http

import (
	"net/http"
	"strings"

	"tiempos/internal/core"
	"tiempos/internal/log"
	"tiempos/internal/services"
)

type mutationJSON struct {
	OK     bool        `json:"ok"`
	Notice *noticeJSON `json:"notice,omitempty"`
	Record *recordJSON `json:"record,omitempty"`
}

type clinicsJSON struct {
	Clinics []clinicJSON `json:"clinics"`
	Active  *clinicJSON  `json:"active,omitempty"`
	Notice  *noticeJSON  `json:"notice,omitempty"`
}

type recordsJSON struct {
	Clinic  string                `json:"clinic"`
	Records []recordJSON          `json:"records"`
	Counts  map[core.Category]int `json:"counts"`
}

func clinicsBody(sess *services.Session, n services.Notice) clinicsJSON {
	snap := sess.Snapshot()
	body := clinicsJSON{Clinics: make([]clinicJSON, 0, len(snap.Clinics)), Notice: toNoticeJSON(n)}
	for _, c := range snap.Clinics {
		body.Clinics = append(body.Clinics, toClinicJSON(c))
	}
	if snap.Active != nil {
		a := toClinicJSON(*snap.Active)
		body.Active = &a
	}
	return body
}

func (s *Server) handleListClinics(w http.ResponseWriter, r *http.Request, sess *services.Session, initial services.Notice) {
	NewHTMXResponse().
		TriggerNotice(initial).
		BodyJSON(clinicsBody(sess, initial)).
		Write(w)
}

// handleEndSession drops the caller's cached session. The next request
// reloads authorised clinics and records from the store.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	user, r, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	s.sessions.Forget(user.ID)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Session dropped")
	NewHTMXResponse().Status(http.StatusNoContent).Write(w)
}

// handleSelectClinic accepts the clinic as "clinic" (code or picker label).
func (s *Server) handleSelectClinic(w http.ResponseWriter, r *http.Request, sess *services.Session, _ services.Notice) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}
	clinic := p.Get("clinic")
	if clinic == "" {
		BadRequestError("Falta el lugar de atención").Write(w)
		return
	}

	n, err := sess.SelectClinic(r.Context(), clinic)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Clinic selection failed",
			log.FieldClinic, clinic, log.FieldOperation, log.OpSelect, log.FieldError, err)
		NewHTMXResponse().
			Status(statusFor(err)).
			TriggerNotice(n).
			BodyJSON(clinicsBody(sess, n)).
			Write(w)
		return
	}

	active, _ := sess.Active()
	NewHTMXResponse().
		TriggerNotice(n).
		TriggerClinicSelected(active.Code).
		TriggerRecordsChanged(active.Code).
		BodyJSON(clinicsBody(sess, n)).
		Write(w)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request, sess *services.Session, initial services.Notice) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		BadRequestError("Filtro de mes o año no válido").Write(w)
		return
	}
	active, ok := sess.Active()
	if !ok {
		n := firstNotice(initial, services.Notice{Level: services.LevelWarning, Text: services.MsgSelectClinic, Duration: services.NoticeDuration})
		NewHTMXResponse().
			Status(http.StatusConflict).
			TriggerNotice(n).
			BodyJSON(mutationJSON{Notice: toNoticeJSON(n)}).
			Write(w)
		return
	}

	res := core.FilterRecords(sess.Records(), f)
	NewHTMXResponse().
		TriggerNotice(initial).
		BodyJSON(recordsJSON{Clinic: active.Code, Records: toRecordsJSON(res.Records), Counts: res.Counts}).
		Write(w)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request, sess *services.Session, _ services.Notice) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}
	rec := p.Record()
	n, err := sess.Create(r.Context(), rec)
	s.respondMutation(w, sess, http.StatusCreated, n, err, rec.Number, true)
}

// handleUpdateRecord takes the number from the path; a body number, if
// any, is ignored.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request, sess *services.Session, _ services.Notice) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}
	rec := p.Record()
	rec.Number = strings.TrimSpace(r.PathValue("number"))
	n, err := sess.Update(r.Context(), rec)
	s.respondMutation(w, sess, http.StatusOK, n, err, rec.Number, false)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request, sess *services.Session, _ services.Notice) {
	number := strings.TrimSpace(r.PathValue("number"))
	n, err := sess.Delete(r.Context(), number)

	b := NewHTMXResponse().TriggerNotice(n)
	if active, ok := sess.Active(); ok {
		// The cached row is gone even when the store failed.
		b.TriggerRecordsChanged(active.Code)
	}
	if err != nil {
		b.Status(statusFor(err)).BodyJSON(mutationJSON{Notice: toNoticeJSON(n)}).Write(w)
		return
	}
	b.BodyJSON(mutationJSON{OK: true, Notice: toNoticeJSON(n)}).Write(w)
}

func (s *Server) respondMutation(w http.ResponseWriter, sess *services.Session, okStatus int, n services.Notice, err error, number string, reset bool) {
	b := NewHTMXResponse().TriggerNotice(n)
	if err != nil {
		b.Status(statusFor(err)).BodyJSON(mutationJSON{Notice: toNoticeJSON(n)}).Write(w)
		return
	}

	active, _ := sess.Active()
	body := mutationJSON{OK: true, Notice: toNoticeJSON(n)}
	for _, rec := range sess.Records() {
		if rec.Number == number {
			rj := toRecordJSON(rec)
			body.Record = &rj
			break
		}
	}
	b.Status(okStatus).TriggerRecordsChanged(active.Code)
	if reset {
		b.TriggerFormReset()
	}
	b.BodyJSON(body).Write(w)
}

type elapsedJSON struct {
	Valid   bool   `json:"valid"`
	Minutes int    `json:"minutes"`
	Text    string `json:"text"`
}

// handleElapsed computes the live "tiempo total" of the record form.
func (s *Server) handleElapsed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rec := core.Record{Entered: strings.TrimSpace(q.Get("entered")), Reviewed: strings.TrimSpace(q.Get("reviewed"))}
	body := elapsedJSON{Text: "N/A"}
	if m, ok := rec.Elapsed(); ok {
		body = elapsedJSON{Valid: true, Minutes: m, Text: core.FormatMinutes(m)}
	}
	if r.Header.Get("HX-Request") == "true" {
		NewHTMXResponse().BodyHTML(body.Text).Write(w)
		return
	}
	NewHTMXResponse().BodyJSON(body).Write(w)
}
