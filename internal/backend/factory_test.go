package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tiempos/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", DataDirectory: "seed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.DataDirectory != "seed" {
		t.Fatalf("unexpected backend config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"firestore without project", Config{Type: FirestoreBackend}, true},
		{"firestore", Config{Type: FirestoreBackend, FirestoreProjectID: "p"}, false},
		{"unknown", Config{Type: "csv"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func writeSeed(t *testing.T, dir string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "seed_clinics.txt"), []byte("E01;Centro\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "seed_users.txt"), []byte("ana;E01\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeSeed(t, dir)
	f := NewFactory(nil)

	for _, cfg := range []Config{
		{Type: MemoryBackend, DataDirectory: dir},
		{Type: SQLiteBackend, DataDirectory: dir, SQLiteDBPath: filepath.Join(dir, "db", "t.db")},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := f.CreateBackend(ctx, cfg)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}
			codes, err := res.Backend.AuthorizedClinics(ctx, "ana")
			if err != nil || len(codes) != 1 || codes[0] != "E01" {
				t.Fatalf("seeded directory: %v err=%v", codes, err)
			}
			if res.Ready != nil {
				if err := res.Ready(ctx); err != nil {
					t.Fatalf("ready: %v", err)
				}
			}
		})
	}
}
