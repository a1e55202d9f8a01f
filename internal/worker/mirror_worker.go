package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"tiempos/internal/amqp"
	"tiempos/internal/core"
)

// RowMirror is the reporting copy that record events are replayed into.
type RowMirror interface {
	Upsert(ctx context.Context, clinic string, rec core.Record) error
	Remove(ctx context.Context, clinic, number string) error
}

// MirrorWorker applies record events to a RowMirror.
type MirrorWorker struct {
	mirror    RowMirror
	processed atomic.Int64
	failed    atomic.Int64
}

func NewMirrorWorker(mirror RowMirror) *MirrorWorker {
	return &MirrorWorker{mirror: mirror}
}

// Handle applies one event. It matches amqp.EventHandler.
func (w *MirrorWorker) Handle(ctx context.Context, event *amqp.RecordEvent) error {
	slog.InfoContext(ctx, "Processing record event",
		"event_id", event.ID,
		"event_type", event.Type,
		"clinic", event.Clinic,
		"number", event.Number)

	var err error
	switch event.Type {
	case amqp.RecordCreated, amqp.RecordUpdated:
		rec, ok := event.CoreRecord()
		if !ok {
			err = fmt.Errorf("event %s has no record", event.ID)
			break
		}
		err = w.mirror.Upsert(ctx, event.Clinic, rec)
	case amqp.RecordDeleted:
		err = w.mirror.Remove(ctx, event.Clinic, event.Number)
	default:
		err = fmt.Errorf("unknown event type %q", event.Type)
	}

	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("mirror %s %s/%s: %w", event.Type, event.Clinic, event.Number, err)
	}
	w.processed.Add(1)
	return nil
}

// Counts returns the number of applied and failed events.
func (w *MirrorWorker) Counts() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}
