package google

import (
	"fmt"
	"strings"

	"tiempos/internal/core"
)

// Header is the first row of the mirror sheet.
var Header = []string{"Centro", "Tipo", "Fecha", "Número", "Entra", "Digita", "Acopio", "Revisa", "Tiempo total", "Usuario"}

const (
	colClinic = 0
	colNumber = 3
	lastCol   = "J"
)

// recordRow lays a record out in the column order of Header.
func recordRow(clinic string, rec core.Record) []interface{} {
	elapsed := "N/A"
	if m, ok := rec.Elapsed(); ok {
		elapsed = core.FormatMinutes(m)
	}
	return []interface{}{
		clinic,
		string(rec.Category),
		rec.Date,
		rec.Number,
		rec.Entered,
		rec.Digitized,
		rec.Collated,
		rec.Reviewed,
		elapsed,
		rec.Owner,
	}
}

// findRecordRow returns the 1-based sheet row holding (clinic, number), or
// 0 when absent. values starts at row 1.
func findRecordRow(values [][]interface{}, clinic, number string) int {
	for i, raw := range values {
		row := toStrings(raw)
		if strings.TrimSpace(safeGet(row, colClinic)) == clinic &&
			strings.TrimSpace(safeGet(row, colNumber)) == number {
			return i + 1
		}
	}
	return 0
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", sheet, row, lastCol, row)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
