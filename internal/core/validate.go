package core

import (
	"errors"
	"fmt"
	"strings"
)

// Working window for every stage time, inclusive.
var (
	WindowStart = TimeOfDay{Hour: 6}
	WindowEnd   = TimeOfDay{Hour: 20}
)

var stageNames = [4]string{"Entra", "Digita", "Acopio", "Revisa"}

// ValidationError is a user-facing rejection of a draft record. Message is
// the text shown to the user; Err is one of the core sentinels.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// UserMessage extracts the user-facing text of a validation error, falling
// back to err.Error().
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

func invalid(sentinel error, msg string) error {
	return &ValidationError{Message: msg, Err: sentinel}
}

// Stages returns the four stage times in workflow order.
func (r Record) Stages() [4]string {
	return [4]string{r.Entered, r.Digitized, r.Collated, r.Reviewed}
}

// Validate checks a draft record before it is persisted: category, date,
// number and the four times are required; each time lies in the working
// window and none is earlier than a preceding stage.
func (r Record) Validate() error {
	stages := r.Stages()
	if strings.TrimSpace(r.Date) == "" || strings.TrimSpace(r.Number) == "" {
		return invalid(ErrMissingField, "Debes completar todas las horas, fecha y número de receta antes de guardar.")
	}
	for _, s := range stages {
		if strings.TrimSpace(s) == "" {
			return invalid(ErrMissingField, "Debes completar todas las horas, fecha y número de receta antes de guardar.")
		}
	}
	if !r.Category.Valid() {
		return invalid(ErrUnknownCategory, "Debes seleccionar el tipo de receta.")
	}
	if strings.Contains(r.Number, "/") {
		return invalid(ErrInvalidNumber, "El número de receta no puede contener '/'.")
	}
	if _, _, err := ParseDate(r.Date); err != nil {
		return invalid(ErrMalformedDate, fmt.Sprintf("La fecha %q no es válida.", r.Date))
	}

	var times [4]TimeOfDay
	for i, s := range stages {
		t, err := ParseTimeOfDay(s)
		if err != nil {
			return invalid(ErrMalformedTime, fmt.Sprintf("La hora %s no es válida.", stageNames[i]))
		}
		times[i] = t
	}
	for i, t := range times {
		if t.Minutes() < WindowStart.Minutes() || t.Minutes() > WindowEnd.Minutes() {
			return invalid(ErrOutOfWindow, "La hora debe estar entre 06:00 y 20:00")
		}
		for j := 0; j < i; j++ {
			if t.Minutes() < times[j].Minutes() {
				return invalid(ErrOutOfOrder, fmt.Sprintf("La hora %s no puede ser menor a la hora %s", stageNames[i], stageNames[j]))
			}
		}
	}
	return nil
}
