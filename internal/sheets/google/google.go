package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tiempos/internal/core"
)

// Mirror keeps one spreadsheet row per record, keyed by clinic and number.
type Mirror struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

// Config selects the spreadsheet and the service account. Either
// CredentialsJSON or CredentialsFile is required.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

func NewMirror(ctx context.Context, cfg Config) (*Mirror, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Recetas"
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Mirror{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheet: sheet}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		slog.InfoContext(ctx, "Reading service account credentials", "path", cfg.CredentialsFile)
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (m *Mirror) readKeys(ctx context.Context) ([][]interface{}, error) {
	rng := fmt.Sprintf("%s!A:D", m.sheet)
	resp, err := m.svc.Spreadsheets.Values.Get(m.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (m *Mirror) appendRows(ctx context.Context, rows ...[]interface{}) error {
	vr := &gsheet.ValueRange{Values: rows}
	_, err := m.svc.Spreadsheets.Values.Append(m.spreadsheetID, fmt.Sprintf("%s!A:%s", m.sheet, lastCol), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

// Upsert writes the record row, replacing an existing row for the same key.
func (m *Mirror) Upsert(ctx context.Context, clinic string, rec core.Record) error {
	values, err := m.readKeys(ctx)
	if err != nil {
		return err
	}
	row := recordRow(clinic, rec)

	if n := findRecordRow(values, clinic, rec.Number); n > 0 {
		vr := &gsheet.ValueRange{Values: [][]interface{}{row}}
		if _, err := m.svc.Spreadsheets.Values.Update(m.spreadsheetID, rowRange(m.sheet, n), vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("update row %d: %w", n, err)
		}
		slog.InfoContext(ctx, "Mirror row updated", "clinic", clinic, "number", rec.Number, "row", n)
		return nil
	}

	rows := [][]interface{}{row}
	if len(values) == 0 {
		header := make([]interface{}, len(Header))
		for i, h := range Header {
			header[i] = h
		}
		rows = append([][]interface{}{header}, rows...)
	}
	if err := m.appendRows(ctx, rows...); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	slog.InfoContext(ctx, "Mirror row appended", "clinic", clinic, "number", rec.Number)
	return nil
}

// Remove clears the row of (clinic, number). A missing row is not an error.
func (m *Mirror) Remove(ctx context.Context, clinic, number string) error {
	values, err := m.readKeys(ctx)
	if err != nil {
		return err
	}
	n := findRecordRow(values, clinic, number)
	if n == 0 {
		slog.DebugContext(ctx, "Mirror row already absent", "clinic", clinic, "number", number)
		return nil
	}
	if _, err := m.svc.Spreadsheets.Values.Clear(m.spreadsheetID, rowRange(m.sheet, n), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear row %d: %w", n, err)
	}
	slog.InfoContext(ctx, "Mirror row cleared", "clinic", clinic, "number", number, "row", n)
	return nil
}
