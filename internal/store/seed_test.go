package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()
	if s := LoadSeed(dir); len(s.Clinics) != 0 || len(s.Users) != 0 {
		t.Fatalf("expected empty seed when files missing, got %+v", s)
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("seed_clinics.txt", "# code;name\nE01;EBAIS Centro\nE02; EBAIS Norte \nE01;dup\n\n")
	mustWrite("seed_users.txt", "ana@example.com;E01, E02\nluis@example.com;\n")

	s := LoadSeed(dir)
	if len(s.Clinics) != 2 || s.Clinics[1].Name != "EBAIS Norte" {
		t.Fatalf("unexpected clinics: %+v", s.Clinics)
	}
	if got := s.Users["ana@example.com"]; len(got) != 2 || got[0] != "E01" || got[1] != "E02" {
		t.Fatalf("unexpected ana clinics: %v", got)
	}
	if got, ok := s.Users["luis@example.com"]; !ok || len(got) != 0 {
		t.Fatalf("luis should exist with no clinics: %v %v", got, ok)
	}
}
