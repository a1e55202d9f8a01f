package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tiempos/internal/core"
	"tiempos/internal/store"

	_ "modernc.org/sqlite"
)

const recordColumns = `number, category, date, entered, digitized, collated, reviewed, owner, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ApplySeed upserts clinics and replaces the authorisation list of every
// seeded user.
func (r *Repository) ApplySeed(ctx context.Context, seed store.Seed) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, c := range seed.Clinics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO clinics (code, name) VALUES (?, ?)
			 ON CONFLICT(code) DO UPDATE SET name = excluded.name`, c.Code, c.Name); err != nil {
			return fmt.Errorf("seed clinic %s: %w", c.Code, err)
		}
	}
	for user, codes := range seed.Users {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO users (user_id) VALUES (?)`, user); err != nil {
			return fmt.Errorf("seed user %s: %w", user, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_clinics WHERE user_id = ?`, user); err != nil {
			return fmt.Errorf("reset user %s clinics: %w", user, err)
		}
		for i, code := range codes {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO user_clinics (user_id, clinic_code, position) VALUES (?, ?, ?)`,
				user, code, i); err != nil {
				return fmt.Errorf("seed user %s clinic %s: %w", user, code, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	slog.InfoContext(ctx, "SQLite directory seeded", "clinics", len(seed.Clinics), "users", len(seed.Users))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (core.Record, error) {
	var (
		rec      core.Record
		category string
	)
	err := s.Scan(&rec.Number, &category, &rec.Date, &rec.Entered, &rec.Digitized,
		&rec.Collated, &rec.Reviewed, &rec.Owner, &rec.CreatedAt)
	rec.Category = core.Category(category)
	return rec, err
}

func (r *Repository) Get(ctx context.Context, clinic, number string) (core.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE clinic_code = ? AND number = ?`, clinic, number)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, fmt.Errorf("record %s/%s: %w", clinic, number, store.ErrNotFound)
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get record %s/%s: %w", clinic, number, err)
	}
	return rec, nil
}

// List returns the clinic's records newest first.
func (r *Repository) List(ctx context.Context, clinic string) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE clinic_code = ? ORDER BY created_at DESC, rowid`, clinic)
	if err != nil {
		return nil, fmt.Errorf("list records %s: %w", clinic, err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, clinic string, rec core.Record) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO records (clinic_code, `+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(clinic_code, number) DO NOTHING`,
		clinic, rec.Number, string(rec.Category), rec.Date, rec.Entered, rec.Digitized,
		rec.Collated, rec.Reviewed, rec.Owner, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("create record %s/%s: %w", clinic, rec.Number, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %s/%s: %w", clinic, rec.Number, store.ErrAlreadyExists)
	}
	slog.InfoContext(ctx, "Record saved to SQLite", "clinic", clinic, "number", rec.Number, "category", rec.Category)
	return nil
}

func (r *Repository) Update(ctx context.Context, clinic string, rec core.Record) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET category = ?, date = ?, entered = ?, digitized = ?, collated = ?,
		 reviewed = ?, owner = ?, created_at = ?
		 WHERE clinic_code = ? AND number = ?`,
		string(rec.Category), rec.Date, rec.Entered, rec.Digitized, rec.Collated,
		rec.Reviewed, rec.Owner, rec.CreatedAt, clinic, rec.Number)
	if err != nil {
		return fmt.Errorf("update record %s/%s: %w", clinic, rec.Number, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %s/%s: %w", clinic, rec.Number, store.ErrNotFound)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, clinic, number string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE clinic_code = ? AND number = ?`, clinic, number); err != nil {
		return fmt.Errorf("delete record %s/%s: %w", clinic, number, err)
	}
	return nil
}

func (r *Repository) AuthorizedClinics(ctx context.Context, userID string) ([]string, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE user_id = ?`, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT clinic_code FROM user_clinics WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("list clinics of %s: %w", userID, err)
	}
	defer rows.Close()
	codes := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan clinic code: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func (r *Repository) Clinic(ctx context.Context, code string) (core.Clinic, error) {
	c := core.Clinic{Code: code}
	err := r.db.QueryRowContext(ctx, `SELECT name FROM clinics WHERE code = ?`, code).Scan(&c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Clinic{}, fmt.Errorf("clinic %s: %w", code, store.ErrNotFound)
	}
	if err != nil {
		return core.Clinic{}, fmt.Errorf("get clinic %s: %w", code, err)
	}
	return c, nil
}
