// Package extract turns uploaded documents into plain text.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
)

// Extractor handles one family of document formats.
type Extractor interface {
	Name() string
	CanExtract(doc models.Document) bool
	Extract(ctx context.Context, doc models.Document) (string, error)
}

// Registry holds the available extractors and picks one per document.
type Registry struct {
	extractors []Extractor
}

// NewRegistry returns a registry with the built-in extractors.
func NewRegistry() *Registry {
	return &Registry{
		extractors: []Extractor{
			NewPDFExtractor(),
			NewTextExtractor(),
		},
	}
}

// Register adds an extractor. Later registrations are tried last.
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// Find returns the first extractor that accepts doc.
func (r *Registry) Find(doc models.Document) (Extractor, error) {
	for _, e := range r.extractors {
		if e.CanExtract(doc) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("unsupported document type: %s", doc.Name)
}

// ByName returns an extractor by its name.
func (r *Registry) ByName(name string) (Extractor, error) {
	name = strings.ToLower(name)
	for _, e := range r.extractors {
		if strings.ToLower(e.Name()) == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("extractor not found: %s", name)
}

// Extract finds a suitable extractor and runs it.
func (r *Registry) Extract(ctx context.Context, doc models.Document) (string, error) {
	e, err := r.Find(doc)
	if err != nil {
		return "", err
	}
	return e.Extract(ctx, doc)
}
