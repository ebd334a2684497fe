// Package pdftext turns PDF bytes into plain text, one line per output line.
// Two backends are available; the cause-list parser only sees the Extractor
// interface.
package pdftext

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
	"rsc.io/pdf"

	"github.com/JustJay7/ecourts-fetcher/internal/config"
)

// Extractor converts a PDF document into text
type Extractor interface {
	ExtractText(data []byte) (string, error)
}

// New returns the extractor selected by PDF_EXTRACTOR, or nil for "none"
func New(cfg *config.Config) (Extractor, error) {
	switch cfg.PDFExtractor {
	case "rsc", "":
		return RSCExtractor{}, nil
	case "unipdf":
		ex, err := NewUniPDFExtractor(cfg.UnidocLicenseKey)
		if err != nil {
			return nil, err
		}
		return ex, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported pdf extractor %q", cfg.PDFExtractor)
	}
}

// RSCExtractor reads the content streams with rsc.io/pdf and rebuilds lines
// by grouping glyphs that share a baseline
type RSCExtractor struct{}

// lineTolerance is how far apart two baselines may be and still count as
// one line, in PDF user-space units
const lineTolerance = 2.0

// ExtractText implements Extractor
func (RSCExtractor) ExtractText(data []byte) (text string, err error) {
	// rsc.io/pdf panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pages = append(pages, joinLines(page.Content().Text))
	}

	return strings.Join(pages, "\n"), nil
}

type line struct {
	y     float64
	texts []pdf.Text
}

// joinLines groups glyph runs by baseline, top of the page first, and orders
// each line left to right
func joinLines(texts []pdf.Text) string {
	var lines []*line
	for _, t := range texts {
		var target *line
		for _, l := range lines {
			if math.Abs(l.y-t.Y) <= lineTolerance {
				target = l
				break
			}
		}
		if target == nil {
			target = &line{y: t.Y}
			lines = append(lines, target)
		}
		target.texts = append(target.texts, t)
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	out := make([]string, 0, len(lines))
	for _, l := range lines {
		sort.SliceStable(l.texts, func(i, j int) bool { return l.texts[i].X < l.texts[j].X })

		var b strings.Builder
		var prevEnd float64
		for i, t := range l.texts {
			// a horizontal gap wider than a quarter of the font size is a space
			if i > 0 && t.X-prevEnd > t.FontSize/4 {
				b.WriteByte(' ')
			}
			b.WriteString(t.S)
			prevEnd = t.X + t.W
		}
		out = append(out, strings.TrimSpace(b.String()))
	}

	return strings.Join(out, "\n")
}

// UniPDFExtractor uses unipdf's layout-aware text extractor. It needs a
// metered UniDoc licence key.
type UniPDFExtractor struct{}

// NewUniPDFExtractor registers the licence key once for the process
func NewUniPDFExtractor(key string) (*UniPDFExtractor, error) {
	if key == "" {
		return nil, fmt.Errorf("unipdf extractor requires a licence key")
	}
	if err := license.SetMeteredKey(key); err != nil {
		return nil, fmt.Errorf("failed to set unidoc licence: %w", err)
	}
	return &UniPDFExtractor{}, nil
}

// ExtractText implements Extractor
func (*UniPDFExtractor) ExtractText(data []byte) (string, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to count pages: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return "", fmt.Errorf("failed to create extractor for page %d: %w", i, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		if i > 1 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
	}

	return b.String(), nil
}
