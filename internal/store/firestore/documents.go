package firestore

import (
	"fmt"
	"time"

	"tiempos/internal/core"
)

// recordData is the document body of a record.
func recordData(clinic string, rec core.Record) map[string]any {
	data := map[string]any{
		"tipo":    string(rec.Category),
		"fecha":   rec.Date,
		"num":     rec.Number,
		"hentra":  rec.Entered,
		"hdigita": rec.Digitized,
		"hacopio": rec.Collated,
		"hrevisa": rec.Reviewed,
		"usuario": rec.Owner,
		"centro":  clinic,
	}
	if rec.CreatedAt > 0 {
		data["createdAt"] = rec.CreatedAt
	}
	return data
}

// recordFromData decodes a document. The number always comes from the
// document id.
func recordFromData(id string, data map[string]any) core.Record {
	return core.Record{
		Category:  core.Category(str(data["tipo"])),
		Date:      str(data["fecha"]),
		Number:    id,
		Entered:   str(data["hentra"]),
		Digitized: str(data["hdigita"]),
		Collated:  str(data["hacopio"]),
		Reviewed:  str(data["hrevisa"]),
		Owner:     str(data["usuario"]),
		CreatedAt: millis(data["createdAt"]),
	}
}

func clinicFromData(code string, data map[string]any) core.Clinic {
	c := core.Clinic{Code: str(data["codigo"]), Name: str(data["nombre"])}
	if c.Code == "" {
		c.Code = code
	}
	return c
}

// authorizedCodes accepts both list shapes found in user documents: plain
// codes and {Codigo: code} maps.
func authorizedCodes(v any) []string {
	items, _ := v.([]any)
	codes := make([]string, 0, len(items))
	for _, item := range items {
		var code string
		switch t := item.(type) {
		case string:
			code = t
		case map[string]any:
			code = str(t["Codigo"])
		}
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func millis(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case time.Time:
		return t.UnixMilli()
	}
	return 0
}
