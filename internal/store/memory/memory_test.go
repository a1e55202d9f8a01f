package memory

import (
	"context"
	"errors"
	"testing"

	"tiempos/internal/core"
	"tiempos/internal/store"
)

func TestMemoryStoreRecords(t *testing.T) {
	ctx := context.Background()
	s := New(store.Seed{})

	r := core.Record{Category: core.Consult, Number: "10", CreatedAt: 1}
	if err := s.Create(ctx, "E01", r); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, "E01", r); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
	// Another clinic has its own collection.
	if err := s.Create(ctx, "E02", r); err != nil {
		t.Fatalf("create other clinic: %v", err)
	}

	if err := s.Update(ctx, "E01", core.Record{Number: "99"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	r.Reviewed = "09:00"
	if err := s.Update(ctx, "E01", r); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.Get(ctx, "E01", "10")
	if err != nil || got.Reviewed != "09:00" {
		t.Fatalf("get: %+v err=%v", got, err)
	}

	_ = s.Create(ctx, "E01", core.Record{Number: "11", CreatedAt: 5})
	list, _ := s.List(ctx, "E01")
	if len(list) != 2 || list[0].Number != "11" {
		t.Fatalf("list should be newest first: %+v", list)
	}

	if err := s.Delete(ctx, "E01", "10"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "E01", "10"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := s.Get(ctx, "E01", "10"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreDirectory(t *testing.T) {
	ctx := context.Background()
	s := New(store.Seed{
		Clinics: []core.Clinic{{Code: "E01", Name: "Centro"}},
		Users:   map[string][]string{"ana": {"E01", "E09"}},
	})
	codes, err := s.AuthorizedClinics(ctx, "ana")
	if err != nil || len(codes) != 2 {
		t.Fatalf("codes: %v err=%v", codes, err)
	}
	if _, err := s.AuthorizedClinics(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if c, err := s.Clinic(ctx, "E01"); err != nil || c.Name != "Centro" {
		t.Fatalf("clinic: %+v err=%v", c, err)
	}
	if _, err := s.Clinic(ctx, "E09"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	s.Grant("luis", "E01")
	if codes, _ := s.AuthorizedClinics(ctx, "luis"); len(codes) != 1 {
		t.Fatalf("grant: %v", codes)
	}
}
