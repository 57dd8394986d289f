package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
)

var now = time.Date(2024, 10, 1, 14, 30, 5, 0, time.UTC)

func sampleEvents() []models.AcademicEvent {
	return []models.AcademicEvent{
		{ID: "e1", SubjectName: "Calculus II", Title: "Midterm", Date: "2024-10-15", Type: models.EventTypeExam},
		{ID: "e2", SubjectName: "Historia", Title: "Ensayo; capítulo 3, parte 2", Date: "2024-11-02", Type: models.EventTypeAssignment},
	}
}

func TestICS(t *testing.T) {
	out := string(ICS(sampleEvents(), now))

	assert.True(t, strings.HasSuffix(out, "\r\n"))
	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	assert.Equal(t, "BEGIN:VCALENDAR", lines[0])
	assert.Equal(t, "END:VCALENDAR", lines[len(lines)-1])
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n", "every line ends with CRLF")

	assert.Contains(t, lines, "VERSION:2.0")
	assert.Contains(t, lines, "PRODID:"+icsProdID)
	assert.Contains(t, lines, "UID:e1@planunsch")
	assert.Contains(t, lines, "DTSTAMP:20241001T143005Z")
	assert.Contains(t, lines, "DTSTART;VALUE=DATE:20241015")
	assert.Contains(t, lines, "SUMMARY:Midterm (Calculus II)")
	assert.Contains(t, lines, "DESCRIPTION:Type: Exam")
	assert.Contains(t, lines, `SUMMARY:Ensayo\; capítulo 3\, parte 2 (Historia)`)
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT\r\n"))
}

func TestICS_Empty(t *testing.T) {
	out := string(ICS(nil, now))
	assert.Contains(t, out, "BEGIN:VCALENDAR\r\n")
	assert.NotContains(t, out, "VEVENT")
}

func TestICS_FoldsLongLines(t *testing.T) {
	long := strings.Repeat("é", 60)
	out := string(ICS([]models.AcademicEvent{{ID: "x", Title: long, SubjectName: "S", Date: "2024-10-15", Type: models.EventTypeOther}}, now))

	for _, line := range strings.Split(out, "\r\n") {
		assert.LessOrEqual(t, len(line), 75)
	}
	unfolded := strings.ReplaceAll(out, "\r\n ", "")
	assert.Contains(t, unfolded, "SUMMARY:"+long+" (S)")
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, "José Pérez", sampleEvents(), now))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestPDF_ManyRowsAndEmpty(t *testing.T) {
	events := make([]models.AcademicEvent, 0, 120)
	for i := 0; i < 120; i++ {
		events = append(events, models.AcademicEvent{
			ID: "e", SubjectName: "Subject", Date: "2024-12-01", Type: models.EventTypeReading,
			Title: strings.Repeat("Very long reading assignment title ", 4),
		})
	}
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, "Ana", events, now))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, PDF(&buf, "Ana", nil, now))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFFileName(t *testing.T) {
	assert.Equal(t, "PlanUNSCH_upcoming_2024-10-01.pdf", PDFFileName(now))
}
