package memory

import (
	"context"
	"fmt"
	"sync"

	"tiempos/internal/core"
	"tiempos/internal/store"
)

// Store keeps record collections and the directory in process memory.
type Store struct {
	mu      sync.Mutex
	clinics map[string]core.Clinic
	users   map[string][]string
	records map[string]map[string]core.Record // clinic -> number -> record
}

func New(seed store.Seed) *Store {
	s := &Store{
		clinics: make(map[string]core.Clinic, len(seed.Clinics)),
		users:   make(map[string][]string, len(seed.Users)),
		records: map[string]map[string]core.Record{},
	}
	for _, c := range seed.Clinics {
		s.clinics[c.Code] = c
	}
	for u, codes := range seed.Users {
		s.users[u] = append([]string(nil), codes...)
	}
	return s
}

// NewFromFiles seeds the store from the text files under base.
func NewFromFiles(base string) *Store {
	return New(store.LoadSeed(base))
}

func (s *Store) Get(_ context.Context, clinic, number string) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[clinic][number]
	if !ok {
		return core.Record{}, fmt.Errorf("record %s/%s: %w", clinic, number, store.ErrNotFound)
	}
	return r, nil
}

// List returns the clinic's records newest first.
func (s *Store) List(_ context.Context, clinic string) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Record, 0, len(s.records[clinic]))
	for _, r := range s.records[clinic] {
		out = append(out, r)
	}
	core.SortNewestFirst(out)
	return out, nil
}

func (s *Store) Create(_ context.Context, clinic string, rec core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.records[clinic]
	if !ok {
		coll = map[string]core.Record{}
		s.records[clinic] = coll
	}
	if _, exists := coll[rec.Number]; exists {
		return fmt.Errorf("record %s/%s: %w", clinic, rec.Number, store.ErrAlreadyExists)
	}
	coll[rec.Number] = rec
	return nil
}

func (s *Store) Update(_ context.Context, clinic string, rec core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[clinic][rec.Number]; !exists {
		return fmt.Errorf("record %s/%s: %w", clinic, rec.Number, store.ErrNotFound)
	}
	s.records[clinic][rec.Number] = rec
	return nil
}

// Delete removes the record; deleting an absent record is not an error.
func (s *Store) Delete(_ context.Context, clinic, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records[clinic], number)
	return nil
}

func (s *Store) AuthorizedClinics(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	return append([]string(nil), codes...), nil
}

func (s *Store) Clinic(_ context.Context, code string) (core.Clinic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clinics[code]
	if !ok {
		return core.Clinic{}, fmt.Errorf("clinic %s: %w", code, store.ErrNotFound)
	}
	return c, nil
}

// Grant authorises a user for the given clinics, replacing any previous list.
func (s *Store) Grant(userID string, codes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = append([]string(nil), codes...)
}

// AddClinic registers or replaces a clinic.
func (s *Store) AddClinic(c core.Clinic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clinics[c.Code] = c
}
