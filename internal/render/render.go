// Package render writes assembled reports as JSON, YAML or per-sheet CSV.
package render

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"example.com/healthreport/internal/dataset"
	"example.com/healthreport/internal/report"
)

// Format selects an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat resolves a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Column is the rendered description of one column.
type Column struct {
	Header    string `json:"header" yaml:"header"`
	RangeName string `json:"range_name,omitempty" yaml:"range_name,omitempty"`
}

// Sheet is the rendered form of a report sheet.
type Sheet struct {
	Name    string            `json:"name" yaml:"name"`
	Kind    report.SheetKind  `json:"kind" yaml:"kind"`
	Columns []Column          `json:"columns" yaml:"columns"`
	Rows    [][]dataset.Value `json:"rows" yaml:"rows"`
}

// Document is the rendered form of a report, after display policies are applied.
type Document struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Sheets      []Sheet   `json:"sheets" yaml:"sheets"`
}

// NewDocument applies display policies and flattens every visible sheet.
func NewDocument(r report.Report) Document {
	doc := Document{GeneratedAt: r.GeneratedAt, Sheets: make([]Sheet, 0, len(r.Sheets))}
	for _, sh := range r.Visible() {
		doc.Sheets = append(doc.Sheets, newSheet(sh))
	}
	return doc
}

func newSheet(sh report.Sheet) Sheet {
	info := sh.Source.Describe()
	out := Sheet{
		Name:    sh.Name,
		Kind:    sh.Kind,
		Columns: make([]Column, 0, len(info)),
		Rows:    make([][]dataset.Value, 0),
	}
	for _, c := range info {
		out.Columns = append(out.Columns, Column{Header: c.Header, RangeName: c.RangeName})
	}
	for _, row := range sh.Source.Rows() {
		values := make([]dataset.Value, 0, len(row))
		for _, cell := range row {
			values = append(values, cell.Value)
		}
		out.Rows = append(out.Rows, values)
	}
	return out
}

// JSON writes the report as one JSON document.
func JSON(w io.Writer, r report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(r))
}

// YAML writes the report as one YAML document.
func YAML(w io.Writer, r report.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(r)); err != nil {
		return err
	}
	return enc.Close()
}

// CSV writes one sheet with a header row.
func CSV(w io.Writer, sh Sheet) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(sh.Columns))
	for _, c := range sh.Columns {
		header = append(header, c.Header)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range sh.Rows {
		record := make([]string, 0, len(row))
		for _, v := range row {
			record = append(record, v.String())
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDir writes the report into dir and returns the written paths. CSV produces one file per
// sheet; JSON and YAML produce a single report file.
func WriteDir(dir string, format Format, r report.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		path := filepath.Join(dir, "report.json")
		return []string{path}, writeFile(path, func(w io.Writer) error { return JSON(w, r) })
	case FormatYAML:
		path := filepath.Join(dir, "report.yaml")
		return []string{path}, writeFile(path, func(w io.Writer) error { return YAML(w, r) })
	case FormatCSV:
		doc := NewDocument(r)
		paths := make([]string, 0, len(doc.Sheets))
		for i, sh := range doc.Sheets {
			path := filepath.Join(dir, fmt.Sprintf("%02d-%s.csv", i+1, FileName(sh.Name)))
			if err := writeFile(path, func(w io.Writer) error { return CSV(w, sh) }); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
		return paths, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// FileName turns a sheet name into a portable file name.
func FileName(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(f)
}
