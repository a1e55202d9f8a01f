package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tiempos/internal/core"
)

// EventType names a record mutation.
type EventType string

const (
	RecordCreated EventType = "record.created"
	RecordUpdated EventType = "record.updated"
	RecordDeleted EventType = "record.deleted"
)

// RecordEvent is published after a record mutation succeeded in the store.
// Record is absent for deletions.
type RecordEvent struct {
	ID        uuid.UUID   `json:"id"`
	Type      EventType   `json:"type"`
	Clinic    string      `json:"clinic"`
	Number    string      `json:"number"`
	Record    *RecordBody `json:"record,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// RecordBody is the wire form of a record.
type RecordBody struct {
	Category  string `json:"tipo"`
	Date      string `json:"fecha"`
	Entered   string `json:"hentra"`
	Digitized string `json:"hdigita"`
	Collated  string `json:"hacopio"`
	Reviewed  string `json:"hrevisa"`
	Owner     string `json:"usuario"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// NewRecordEvent builds an event for a created or updated record.
func NewRecordEvent(t EventType, clinic string, rec core.Record) *RecordEvent {
	return &RecordEvent{
		ID:     uuid.New(),
		Type:   t,
		Clinic: clinic,
		Number: rec.Number,
		Record: &RecordBody{
			Category:  string(rec.Category),
			Date:      rec.Date,
			Entered:   rec.Entered,
			Digitized: rec.Digitized,
			Collated:  rec.Collated,
			Reviewed:  rec.Reviewed,
			Owner:     rec.Owner,
			CreatedAt: rec.CreatedAt,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewDeleteEvent builds an event for a deleted record.
func NewDeleteEvent(clinic, number string) *RecordEvent {
	return &RecordEvent{
		ID:        uuid.New(),
		Type:      RecordDeleted,
		Clinic:    clinic,
		Number:    number,
		Timestamp: time.Now().UTC(),
	}
}

// CoreRecord returns the record carried by the event.
func (e *RecordEvent) CoreRecord() (core.Record, bool) {
	if e.Record == nil {
		return core.Record{}, false
	}
	return core.Record{
		Category:  core.Category(e.Record.Category),
		Date:      e.Record.Date,
		Number:    e.Number,
		Entered:   e.Record.Entered,
		Digitized: e.Record.Digitized,
		Collated:  e.Record.Collated,
		Reviewed:  e.Record.Reviewed,
		Owner:     e.Record.Owner,
		CreatedAt: e.Record.CreatedAt,
	}, true
}

// ToJSON converts the event to JSON bytes
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes and checks an event.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Type {
	case RecordCreated, RecordUpdated:
		if e.Record == nil {
			return nil, fmt.Errorf("event %s of type %s has no record", e.ID, e.Type)
		}
	case RecordDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.Clinic == "" || e.Number == "" {
		return nil, fmt.Errorf("event %s is missing clinic or number", e.ID)
	}
	return &e, nil
}
