package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"tiempos/internal/core"
)

const (
	reportTitle = "Reporte de Tiempos Trimestral"
	pageBreakY  = 240.0
	rowHeight   = 8.0
)

var columns = []struct {
	title string
	width float64
}{
	{"Mes", 70},
	{"Cantidad Recetas", 55},
	{"Promedio (HH:MM)", 55},
}

// FileName is the download name of a clinic's report. Characters outside
// [A-Za-z0-9_-] in the code are replaced by '_'.
func FileName(clinicCode string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, clinicCode)
	return "reporte-trimestral-" + safe + ".pdf"
}

// PDFExporter renders a rolling report as an A4 document.
type PDFExporter struct {
	// Author is written to the document metadata when set.
	Author string
}

// Export writes the report of clinic to w.
func (e PDFExporter) Export(w io.Writer, clinic core.Clinic, report core.RollingReport) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(reportTitle, true)
	if e.Author != "" {
		pdf.SetAuthor(e.Author, true)
	}
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(reportTitle), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, tr("Lugar de Atención: "+clinic.Label()), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, tr("Generado: "+report.Generated.Format("02/01/2006")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, cr := range report.Categories {
		if pdf.GetY() > pageBreakY {
			pdf.AddPage()
		}
		writeCategory(pdf, tr, cr)
		pdf.Ln(6)
	}

	if pdf.GetY() > pageBreakY {
		pdf.AddPage()
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, rowHeight, tr(fmt.Sprintf("Total general: %d recetas, promedio %s",
		report.GrandCount, core.FormatMinutes(report.GrandAverage))), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func writeCategory(pdf *fpdf.Fpdf, tr func(string) string, cr core.CategoryReport) {
	color := cr.Category.Color()

	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(int(color.R), int(color.G), int(color.B))
	pdf.CellFormat(0, 9, tr(cr.Category.String()), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(int(color.R), int(color.G), int(color.B))
	pdf.SetTextColor(255, 255, 255)
	for _, col := range columns {
		pdf.CellFormat(col.width, rowHeight, tr(col.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, b := range cr.Buckets {
		if pdf.GetY() > pageBreakY+25 {
			pdf.AddPage()
		}
		row := []string{
			fmt.Sprintf("%s %d", b.Bucket.Label, b.Bucket.Year),
			strconv.Itoa(b.Count),
			core.FormatMinutes(b.Average),
		}
		for i, col := range columns {
			pdf.CellFormat(col.width, rowHeight, tr(row[i]), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(255, 255, 255)
	total := []string{"TOTAL", strconv.Itoa(cr.TotalCount), core.FormatMinutes(cr.TotalAverage)}
	for i, col := range columns {
		pdf.CellFormat(col.width, rowHeight, tr(total[i]), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}
