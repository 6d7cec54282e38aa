package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// Column maps a header key to a value lookup key. Key doubles as the header
// literal when Header is empty.
type Column struct {
	Key    string
	Header string
}

// Dataset defines tabular export content. Row values are looked up by column
// key; absent keys render as empty strings.
type Dataset struct {
	Columns []Column
	Rows    []map[string]string
}

// CSVExporter renders Dataset records into RFC 4180 CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset. Line endings are CRLF and
// quoting follows encoding/csv (fields containing commas, quotes or newlines
// are quoted, internal quotes doubled). An empty row set is refused so callers
// never hand out a header-only file.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	if len(data.Rows) == 0 {
		return nil, fmt.Errorf("csv requires at least one row")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true

	headers := make([]string, len(data.Columns))
	for i, col := range data.Columns {
		headers[i] = col.Key
		if col.Header != "" {
			headers[i] = col.Header
		}
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Columns))
	for _, row := range data.Rows {
		for i, col := range data.Columns {
			record[i] = row[col.Key]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

const maxSlugLen = 60

// Filename derives a download filename from a human-readable label, e.g.
// `Intro "Basics"` becomes report-intro-basics.csv.
func Filename(prefix, label, ext string) string {
	slug := Slugify(label)
	if slug == "" {
		slug = "export"
	}
	return fmt.Sprintf("%s-%s.%s", prefix, slug, ext)
}

// Slugify lowercases the label, collapses non-alphanumeric runs into single
// hyphens, trims leading/trailing hyphens, and truncates to 60 characters.
func Slugify(label string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	return slug
}
