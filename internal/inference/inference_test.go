package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
	"github.com/CamiloThisPunk/PlanUnsch/internal/validation"
)

func TestNormalizeCategory(t *testing.T) {
	tests := map[string]models.EventType{
		"Exam":       models.EventTypeExam,
		" examen ":   models.EventTypeExam,
		"ASSIGNMENT": models.EventTypeAssignment,
		"Tarea":      models.EventTypeAssignment,
		"Lectura":    models.EventTypeReading,
		"Proyecto":   models.EventTypeProject,
		"Otro":       models.EventTypeOther,
		"Workshop":   models.EventTypeOther,
		"":           models.EventTypeOther,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCategory(in), in)
	}
}

func TestSanitize(t *testing.T) {
	raw := []models.Candidate{
		{Title: "  Midterm ", Date: "2024-10-15", Type: "Examen"},
		{Title: "Essay", Date: "2024-02-30", Type: "Assignment"},
		{Title: "   ", Date: "2024-11-01", Type: "Reading"},
		{Title: "Field trip", Date: " 2024-11-20 ", Type: "Excursion"},
		{Title: "Reading", Date: "next week", Type: "Reading"},
	}

	got := Sanitize(validation.New(), raw)
	require.Len(t, got, 2)
	assert.Equal(t, models.Candidate{Title: "Midterm", Date: "2024-10-15", Type: models.EventTypeExam}, got[0])
	assert.Equal(t, models.Candidate{Title: "Field trip", Date: "2024-11-20", Type: models.EventTypeOther}, got[1])
}

func TestNew(t *testing.T) {
	inf, err := New(Config{Backend: "gemini"})
	require.NoError(t, err)
	assert.IsType(t, &Heuristic{}, inf, "no api key falls back to heuristic")

	inf, err = New(Config{Backend: "gemini", APIKey: "k", TimeoutSeconds: 5})
	require.NoError(t, err)
	require.IsType(t, &Gemini{}, inf)
	g := inf.(*Gemini)
	assert.Equal(t, DefaultGeminiModel, g.cfg.Model)
	assert.Equal(t, DefaultGeminiEndpoint, g.cfg.Endpoint)
	assert.Equal(t, DefaultGeminiAPIVersion, g.cfg.APIVersion)
	assert.Equal(t, 5.0, g.cfg.HTTPClient.Timeout.Seconds())

	inf, err = New(Config{Backend: "Heuristic", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &Heuristic{}, inf)

	_, err = New(Config{Backend: "openai"})
	assert.Error(t, err)
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		endpoint, version     string
		wantBase, wantVersion string
	}{
		{"", "", DefaultGeminiEndpoint, DefaultGeminiAPIVersion},
		{"https://generativelanguage.googleapis.com/v1beta", "", "https://generativelanguage.googleapis.com/", "v1beta"},
		{"http://127.0.0.1:9000/v1/", "", "http://127.0.0.1:9000/", "v1"},
		{"http://proxy.local", "v1alpha", "http://proxy.local/", "v1alpha"},
	}
	for _, tt := range tests {
		base, version := splitEndpoint(tt.endpoint, tt.version)
		assert.Equal(t, tt.wantBase, base, tt.endpoint)
		assert.Equal(t, tt.wantVersion, version, tt.endpoint)
	}
}
