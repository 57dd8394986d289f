package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
)

var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
}

// TextExtractor passes plain-text documents through.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor { return &TextExtractor{} }

func (t *TextExtractor) Name() string { return "text" }

func (t *TextExtractor) CanExtract(doc models.Document) bool {
	if strings.HasPrefix(strings.ToLower(doc.ContentType), "text/") {
		return true
	}
	return textExtensions[strings.ToLower(filepath.Ext(doc.Name))]
}

func (t *TextExtractor) Extract(_ context.Context, doc models.Document) (string, error) {
	if !utf8.Valid(doc.Data) {
		return "", fmt.Errorf("%s is not valid UTF-8 text", doc.Name)
	}
	return strings.TrimPrefix(string(doc.Data), "\ufeff"), nil
}
