package store

import (
	"context"
	"errors"

	"tiempos/internal/core"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Ports for the external document store.
type (
	// RecordStore holds each clinic's record collection, keyed by the
	// record's sequence number.
	RecordStore interface {
		Get(ctx context.Context, clinic, number string) (core.Record, error)
		List(ctx context.Context, clinic string) ([]core.Record, error)
		// Create stores rec only if no record with the same number exists.
		Create(ctx context.Context, clinic string, rec core.Record) error
		// Update replaces an existing record; ErrNotFound when absent.
		Update(ctx context.Context, clinic string, rec core.Record) error
		Delete(ctx context.Context, clinic, number string) error
	}

	// Directory resolves user authorisation and clinic metadata.
	Directory interface {
		// AuthorizedClinics returns the clinic codes a user may access, in
		// the order of the authorisation document.
		AuthorizedClinics(ctx context.Context, userID string) ([]string, error)
		Clinic(ctx context.Context, code string) (core.Clinic, error)
	}

	// Backend bundles both ports.
	Backend interface {
		RecordStore
		Directory
	}
)
