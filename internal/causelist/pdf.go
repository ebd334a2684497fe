package causelist

import (
	"regexp"
	"strings"

	"github.com/JustJay7/ecourts-fetcher/internal/pdftext"
)

var caseLinePattern = regexp.MustCompile(`(?i)(cnr|case\s+no\.?|case\s+number|no\.|\b\d{1,5}/\d{2,4}\b)`)

// ParsePDF treats the extracted text as unstructured lines. Every line that
// looks like a case becomes an entry carrying the whole line as its
// reference. A nil extractor is ErrNoTextExtractor, the only error returned.
// Bytes the extractor cannot read are line-matched as lossy UTF-8 instead.
func ParsePDF(data []byte, ex pdftext.Extractor) ([]Entry, error) {
	if ex == nil {
		return nil, ErrNoTextExtractor
	}
	entries, _ := parsePDF(data, ex)
	return entries, nil
}

// parsePDF always yields entries. The error is the extraction failure that
// forced the raw fallback, for logging only.
func parsePDF(data []byte, ex pdftext.Extractor) ([]Entry, error) {
	text, err := ex.ExtractText(data)
	if err != nil {
		text = strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return parseLines(text), err
}

func parseLines(text string) []Entry {
	entries := []Entry{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !caseLinePattern.MatchString(line) {
			continue
		}
		entries = append(entries, Entry{
			CaseRef:     line,
			HearingDate: datePattern.FindString(line),
		})
	}
	return entries
}
