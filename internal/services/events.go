package services

import (
	"context"

	"tiempos/internal/core"
)

// EventPublisher receives successful record mutations. A nil publisher
// disables events.
type EventPublisher interface {
	RecordChanged(ctx context.Context, created bool, clinic string, rec core.Record) error
	RecordDeleted(ctx context.Context, clinic, number string) error
}
