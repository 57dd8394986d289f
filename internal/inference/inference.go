// Package inference proposes academic events from syllabus text.
package inference

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/CamiloThisPunk/PlanUnsch/internal/logging"
	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
	"github.com/CamiloThisPunk/PlanUnsch/internal/validation"
)

var logger = logging.New("inference")

// Backend names accepted by New.
const (
	BackendGemini    = "gemini"
	BackendHeuristic = "heuristic"
)

// Config selects and configures a backend.
type Config struct {
	Backend        string
	APIKey         string
	Model          string
	Endpoint       string
	TimeoutSeconds int
}

// Inferrer is satisfied by every backend.
type Inferrer interface {
	Infer(ctx context.Context, text string) ([]models.Candidate, error)
}

// New returns the configured backend. The gemini backend falls back to the
// heuristic scanner when no API key is set.
func New(cfg Config) (Inferrer, error) {
	v := validation.New()
	switch strings.ToLower(cfg.Backend) {
	case "", BackendGemini:
		if strings.TrimSpace(cfg.APIKey) == "" {
			logger.Warnf("No inference API key configured, using the %s backend", BackendHeuristic)
			return NewHeuristic(v, time.Now), nil
		}
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		g, err := NewGemini(GeminiConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Endpoint:   cfg.Endpoint,
			HTTPClient: &http.Client{Timeout: timeout},
		}, v)
		if err != nil {
			return nil, err
		}
		return g, nil
	case BackendHeuristic:
		return NewHeuristic(v, time.Now), nil
	default:
		return nil, fmt.Errorf("unknown inference backend: %s", cfg.Backend)
	}
}

// categoryAliases maps lower-cased labels, including the Spanish ones some
// models answer with, to event types.
var categoryAliases = map[string]models.EventType{
	"exam":       models.EventTypeExam,
	"examen":     models.EventTypeExam,
	"quiz":       models.EventTypeExam,
	"test":       models.EventTypeExam,
	"midterm":    models.EventTypeExam,
	"final":      models.EventTypeExam,
	"assignment": models.EventTypeAssignment,
	"tarea":      models.EventTypeAssignment,
	"homework":   models.EventTypeAssignment,
	"reading":    models.EventTypeReading,
	"lectura":    models.EventTypeReading,
	"project":    models.EventTypeProject,
	"proyecto":   models.EventTypeProject,
	"other":      models.EventTypeOther,
	"otro":       models.EventTypeOther,
}

// NormalizeCategory maps a free-form label to an event type. Unknown labels map to Other.
func NormalizeCategory(label string) models.EventType {
	if t, ok := categoryAliases[strings.ToLower(strings.TrimSpace(label))]; ok {
		return t
	}
	return models.EventTypeOther
}

// Sanitize normalizes raw candidates and drops the ones that fail validation.
// Titles are trimmed, categories normalized, and dates must be real YYYY-MM-DD dates.
func Sanitize(v *validation.Validator, raw []models.Candidate) []models.Candidate {
	out := make([]models.Candidate, 0, len(raw))
	for _, c := range raw {
		c.Title = strings.TrimSpace(c.Title)
		c.Date = models.Date(strings.TrimSpace(string(c.Date)))
		c.Type = NormalizeCategory(string(c.Type))
		if err := v.Struct(c); err != nil {
			logger.Debugf("Dropping candidate %q: %s", c.Title, describe(v.Errors(err)))
			continue
		}
		out = append(out, c)
	}
	return out
}

func describe(errs map[string]string) string {
	parts := make([]string, 0, len(errs))
	for field, msg := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, "; ")
}
