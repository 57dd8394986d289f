package export

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
)

const PDFContentType = "application/pdf"

// PDFFileName names the upcoming-events document for the given day.
func PDFFileName(today time.Time) string {
	return fmt.Sprintf("PlanUNSCH_upcoming_%s.pdf", models.DateOf(today))
}

var pdfColumns = []struct {
	title string
	width float64
}{
	{"Date", 40},
	{"Subject", 45},
	{"Event title", 72},
	{"Type", 25},
}

// PDF writes the upcoming events as a one-table A4 document.
// upcoming is rendered as given; callers pass views.Upcoming output.
func PDF(w io.Writer, profileName string, upcoming []models.AcademicEvent, today time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(today)
	pdf.SetTitle("PlanUNSCH - Upcoming deadlines", true)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(14, 22, "PlanUNSCH - Upcoming deadlines")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(14, 30, tr("Generated for: "+profileName))
	pdf.SetY(40)

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(74, 85, 104)
		pdf.SetTextColor(255, 255, 255)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 8, col.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, e := range upcoming {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		row := []string{
			e.Date.Time().Format("January 2, 2006"),
			e.SubjectName,
			e.Title,
			string(e.Type),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, fit(pdf, tr(row[i]), col.width-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(upcoming) == 0 {
		pdf.CellFormat(182, 7, "No upcoming events.", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}
	return pdf.Output(w)
}

// fit shortens s with an ellipsis until it fits width.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s + "..."
}
