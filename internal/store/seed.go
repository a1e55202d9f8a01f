package store

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"tiempos/internal/core"
)

// Seed is the directory content used by the local backends.
type Seed struct {
	Clinics []core.Clinic
	// Users maps a user id (or email) to its authorised clinic codes.
	Users map[string][]string
}

// LoadSeed reads seed_clinics.txt ("CODE;Name" per line) and seed_users.txt
// ("user;CODE,CODE" per line) from dir. Missing files yield an empty seed.
func LoadSeed(dir string) Seed {
	s := Seed{Users: map[string][]string{}}
	seen := map[string]struct{}{}
	for _, line := range readLines(filepath.Join(dir, "seed_clinics.txt")) {
		code, name, _ := strings.Cut(line, ";")
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		s.Clinics = append(s.Clinics, core.Clinic{Code: code, Name: strings.TrimSpace(name)})
	}
	for _, line := range readLines(filepath.Join(dir, "seed_users.txt")) {
		user, codes, _ := strings.Cut(line, ";")
		user = strings.TrimSpace(user)
		if user == "" {
			continue
		}
		var list []string
		for _, c := range strings.Split(codes, ",") {
			if c = strings.TrimSpace(c); c != "" {
				list = append(list, c)
			}
		}
		s.Users[user] = list
	}
	return s
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
