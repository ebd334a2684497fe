package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/JustJay7/ecourts-fetcher/internal/archive"
	"github.com/JustJay7/ecourts-fetcher/internal/session"
	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

// DumpRecord is everything needed to replay a failed extraction offline
type DumpRecord struct {
	URL     string
	Status  string
	Header  http.Header
	Payload url.Values
	Cookies map[string]string
	Body    string
}

// Dumper writes debug_response_<unix>.txt files and mirrors them to the archive
type Dumper struct {
	dir     string
	archive archive.Archiver
	logger  *logger.Logger
	now     func() time.Time
}

// NewDumper creates a dumper writing into dir
func NewDumper(dir string, arch archive.Archiver, log *logger.Logger) *Dumper {
	if arch == nil {
		arch = archive.Nop{}
	}
	return &Dumper{dir: dir, archive: arch, logger: log, now: time.Now}
}

// Write stores the record and returns the file path
func (d *Dumper) Write(ctx context.Context, rec DumpRecord) (string, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}

	name := fmt.Sprintf("debug_response_%d.txt", d.now().Unix())
	path := filepath.Join(d.dir, name)
	content := []byte(formatDump(rec))

	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write dump: %w", err)
	}

	if err := d.archive.Put(ctx, archive.DebugKey(name), "text/plain; charset=utf-8", content); err != nil {
		d.logger.Warn("Failed to archive dump", "path", path, "error", err)
	}

	return path, nil
}

func formatDump(rec DumpRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", rec.URL)
	fmt.Fprintf(&b, "STATUS: %s\n", rec.Status)
	b.WriteString("HEADERS:\n")

	names := make([]string, 0, len(rec.Header))
	for k := range rec.Header {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(&b, "%s: %s\n", k, strings.Join(rec.Header[k], ", "))
	}

	b.WriteString("\n---RAW_RESPONSE_START---\n")
	b.WriteString(rec.Body)
	b.WriteString("\n---FORM_DATA_SUBMITTED---\n")
	b.WriteString(rec.Payload.Encode())
	b.WriteString("\n---COOKIES_IN_SESSION---\n")
	b.WriteString(session.FormatCookies(rec.Cookies))
	b.WriteString("\n")
	return b.String()
}

// RawResponseFromDump returns the body section of a dump file, or the whole
// input when it carries no dump markers
func RawResponseFromDump(content string) string {
	const start = "---RAW_RESPONSE_START---\n"
	i := strings.Index(content, start)
	if i < 0 {
		return content
	}
	body := content[i+len(start):]
	if j := strings.Index(body, "\n---FORM_DATA_SUBMITTED---"); j >= 0 {
		body = body[:j]
	}
	return body
}
