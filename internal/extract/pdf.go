package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
)

var pdfMagic = []byte("%PDF-")

// PDFExtractor reads the text layer of PDF documents.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

func (p *PDFExtractor) Name() string { return "pdf" }

// CanExtract accepts documents with the PDF magic bytes, a PDF content type or a .pdf name.
func (p *PDFExtractor) CanExtract(doc models.Document) bool {
	if bytes.HasPrefix(doc.Data, pdfMagic) {
		return true
	}
	if strings.EqualFold(doc.ContentType, "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(doc.Name), ".pdf")
}

// Extract returns the concatenated page text. Image-only PDFs yield little or no text.
func (p *PDFExtractor) Extract(ctx context.Context, doc models.Document) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	if !bytes.HasPrefix(doc.Data, pdfMagic) {
		return "", fmt.Errorf("%s is not a PDF file", doc.Name)
	}

	reader, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}
