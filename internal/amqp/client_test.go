package amqp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tiempos/internal/core"
)

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func sampleRecord() core.Record {
	return core.Record{
		Category: core.Consult, Date: "10/03/2025", Number: "77",
		Entered: "08:00", Digitized: "08:05", Collated: "08:10", Reviewed: "08:30",
		Owner: "ana@example.com", CreatedAt: 1741600000000,
	}
}

func TestRecordEventCarriesRecord(t *testing.T) {
	ev := NewRecordEvent(RecordCreated, "E01", sampleRecord())
	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"hentra":"08:00"`) {
		t.Fatalf("wire field names: %s", body)
	}
	got, err := RecordEventFromJSON(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rec, ok := got.CoreRecord()
	if !ok || rec != sampleRecord() {
		t.Fatalf("record mismatch: %+v", rec)
	}
	if got.ID != ev.ID {
		t.Fatalf("id mismatch")
	}
}

func TestRecordEventFromJSONRejects(t *testing.T) {
	cases := map[string]string{
		"not json":        `{`,
		"unknown type":    `{"type":"record.moved","clinic":"E01","number":"1"}`,
		"create w/o body": `{"type":"record.created","clinic":"E01","number":"1"}`,
		"missing clinic":  `{"type":"record.deleted","number":"1"}`,
	}
	for name, body := range cases {
		if _, err := RecordEventFromJSON([]byte(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	del := NewDeleteEvent("E01", "9")
	body, _ := del.ToJSON()
	if _, err := RecordEventFromJSON(body); err != nil {
		t.Fatalf("delete event should decode: %v", err)
	}
}

func TestHandleDelivery(t *testing.T) {
	ctx := context.Background()
	good, _ := NewDeleteEvent("E01", "9").ToJSON()

	t.Run("ack on success", func(t *testing.T) {
		a := &fakeAck{}
		var seen *RecordEvent
		handleDelivery(ctx, good, a, func(_ context.Context, e *RecordEvent) error { seen = e; return nil })
		if !a.acked || a.nacked || seen == nil || seen.Number != "9" {
			t.Fatalf("unexpected ack state %+v seen=%v", a, seen)
		}
	})

	t.Run("reject without requeue on handler error", func(t *testing.T) {
		a := &fakeAck{}
		calls := 0
		handleDelivery(ctx, good, a, func(context.Context, *RecordEvent) error { calls++; return errors.New("sheets down") })
		if calls != 1 || a.acked || !a.nacked || a.requeued {
			t.Fatalf("unexpected ack state %+v", a)
		}
	})

	t.Run("drop undecodable", func(t *testing.T) {
		a := &fakeAck{}
		called := false
		handleDelivery(ctx, []byte("garbage"), a, func(context.Context, *RecordEvent) error { called = true; return nil })
		if called || !a.nacked || a.requeued {
			t.Fatalf("unexpected ack state %+v called=%v", a, called)
		}
	})
}
