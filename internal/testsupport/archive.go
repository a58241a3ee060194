// Package testsupport builds export fixtures shared by package tests.
package testsupport

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

const timestampLayout = "2006-01-02 15:04:05 -0700"

// Element renders one export element.
type Element struct {
	Name  string
	Attrs [][2]string
}

// Record returns a Record element lasting minutes from start.
func Record(typ, source string, start time.Time, minutes int, value, unit string) Element {
	attrs := [][2]string{
		{"type", typ},
		{"sourceName", source},
		{"startDate", start.Format(timestampLayout)},
		{"endDate", start.Add(time.Duration(minutes) * time.Minute).Format(timestampLayout)},
	}
	if value != "" {
		attrs = append(attrs, [2]string{"value", value})
	}
	if unit != "" {
		attrs = append(attrs, [2]string{"unit", unit})
	}
	return Element{Name: "Record", Attrs: attrs}
}

// Workout returns a Workout element with a duration in minutes and optional distance in miles.
func Workout(activity, source string, start time.Time, minutes int, miles float64) Element {
	attrs := [][2]string{
		{"workoutActivityType", activity},
		{"sourceName", source},
		{"duration", fmt.Sprintf("%d", minutes)},
		{"durationUnit", "min"},
		{"startDate", start.Format(timestampLayout)},
		{"endDate", start.Add(time.Duration(minutes) * time.Minute).Format(timestampLayout)},
	}
	if miles > 0 {
		attrs = append(attrs, [2]string{"totalDistance", fmt.Sprintf("%g", miles)}, [2]string{"totalDistanceUnit", "mi"})
	}
	return Element{Name: "Workout", Attrs: attrs}
}

// ExportXML renders a complete export document.
func ExportXML(elements ...Element) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<HealthData locale=\"en_US\">\n")
	b.WriteString(" <ExportDate value=\"2024-03-31 12:00:00 -0500\"/>\n")
	for _, el := range elements {
		b.WriteString(" <" + el.Name)
		for _, kv := range el.Attrs {
			fmt.Fprintf(&b, " %s=\"", kv[0])
			_ = xml.EscapeText(&b, []byte(kv[1]))
			b.WriteString("\"")
		}
		b.WriteString("/>\n")
	}
	b.WriteString("</HealthData>\n")
	return b.String()
}

// Archive zips entries, keyed by entry name.
func Archive(t testing.TB, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// ExportArchive zips an export document under the usual apple_health_export/ prefix.
func ExportArchive(t testing.TB, elements ...Element) []byte {
	t.Helper()
	return Archive(t, map[string]string{"apple_health_export/export.xml": ExportXML(elements...)})
}
