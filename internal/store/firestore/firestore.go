// Package firestore stores records in Cloud Firestore using the document
// layout of the production project:
//
//	Recetas/{clinic}/RecetasDetalle/{number}
//	usuarios/{uid}          ebaisAutorizados: [code | {Codigo: code}]
//	lugares_atencion/{code} codigo, nombre
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tiempos/internal/core"
	"tiempos/internal/store"
)

const (
	recordsCollection = "Recetas"
	detailCollection  = "RecetasDetalle"
	usersCollection   = "usuarios"
	clinicsCollection = "lugares_atencion"
)

type Store struct {
	client *firestore.Client
}

// Config holds the project settings. CredentialsFile may be empty to use
// application default credentials.
type Config struct {
	ProjectID       string
	CredentialsFile string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) recordRef(clinic, number string) *firestore.DocumentRef {
	return s.client.Collection(recordsCollection).Doc(clinic).Collection(detailCollection).Doc(number)
}

func mapStatus(err error, what string) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	case codes.AlreadyExists:
		return fmt.Errorf("%s: %w", what, store.ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *Store) Get(ctx context.Context, clinic, number string) (core.Record, error) {
	snap, err := s.recordRef(clinic, number).Get(ctx)
	if err != nil {
		return core.Record{}, mapStatus(err, "get record "+clinic+"/"+number)
	}
	return recordFromData(snap.Ref.ID, snap.Data()), nil
}

// List reads the clinic's collection and returns it newest first.
func (s *Store) List(ctx context.Context, clinic string) ([]core.Record, error) {
	it := s.client.Collection(recordsCollection).Doc(clinic).Collection(detailCollection).Documents(ctx)
	defer it.Stop()

	var out []core.Record
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list records %s: %w", clinic, err)
		}
		out = append(out, recordFromData(snap.Ref.ID, snap.Data()))
	}
	core.SortNewestFirst(out)
	return out, nil
}

// Create uses the Firestore create precondition, so a concurrent writer
// cannot overwrite an existing number.
func (s *Store) Create(ctx context.Context, clinic string, rec core.Record) error {
	if _, err := s.recordRef(clinic, rec.Number).Create(ctx, recordData(clinic, rec)); err != nil {
		return mapStatus(err, "create record "+clinic+"/"+rec.Number)
	}
	slog.InfoContext(ctx, "Record saved to Firestore", "clinic", clinic, "number", rec.Number)
	return nil
}

func (s *Store) Update(ctx context.Context, clinic string, rec core.Record) error {
	data := recordData(clinic, rec)
	updates := make([]firestore.Update, 0, len(data))
	for k, v := range data {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	if _, err := s.recordRef(clinic, rec.Number).Update(ctx, updates); err != nil {
		return mapStatus(err, "update record "+clinic+"/"+rec.Number)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, clinic, number string) error {
	if _, err := s.recordRef(clinic, number).Delete(ctx); err != nil {
		return mapStatus(err, "delete record "+clinic+"/"+number)
	}
	return nil
}

func (s *Store) AuthorizedClinics(ctx context.Context, userID string) ([]string, error) {
	snap, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		return nil, mapStatus(err, "get user "+userID)
	}
	return authorizedCodes(snap.Data()["ebaisAutorizados"]), nil
}

func (s *Store) Clinic(ctx context.Context, code string) (core.Clinic, error) {
	snap, err := s.client.Collection(clinicsCollection).Doc(code).Get(ctx)
	if err != nil {
		return core.Clinic{}, mapStatus(err, "get clinic "+code)
	}
	return clinicFromData(code, snap.Data()), nil
}
