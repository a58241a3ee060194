package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"example.com/healthreport/internal/calendar"
	"example.com/healthreport/internal/dataset"
	"example.com/healthreport/internal/report"
)

func sampleReport() report.Report {
	march := calendar.YearMonth{Year: 2024, Month: time.March}
	steps := dataset.NewColumn[calendar.YearMonth]("Steps", "Steps")
	steps.SetNumber(march, 1234.56789)
	blank := dataset.NewColumn[calendar.YearMonth]("Weight (lb)", "Weight")

	summary := dataset.Join(dataset.MonthKeys("Month", []calendar.YearMonth{march}), dataset.New(steps, blank))
	raw := dataset.Table{
		{{Header: "Date", Value: dataset.TimeValue(time.Date(2024, time.March, 2, 8, 0, 0, 0, time.UTC))}, {Header: "Steps", Value: dataset.Number(500)}, {Header: "Source", Value: dataset.Text("Phone, Inc")}},
	}
	return report.Report{
		GeneratedAt: time.Date(2024, time.March, 20, 15, 0, 0, 0, time.UTC),
		Sheets: []report.Sheet{
			{Name: "Summary", Kind: report.KindSummary, Source: summary, Policy: report.DisplayPolicy{OmitIfEmpty: true, OmitEmptyColumns: true}},
			{Name: "Mass", Kind: report.KindRaw, Source: dataset.Table{}, Policy: report.DisplayPolicy{OmitIfEmpty: true}},
			{Name: "Steps", Kind: report.KindRaw, Source: raw, Policy: report.DisplayPolicy{OmitIfEmpty: true}},
		},
	}
}

func TestNewDocumentAppliesPolicies(t *testing.T) {
	doc := NewDocument(sampleReport())
	require.Len(t, doc.Sheets, 2)
	require.Equal(t, []Column{{Header: "Month"}, {Header: "Steps", RangeName: "Steps"}}, doc.Sheets[0].Columns)
	require.Equal(t, "Steps", doc.Sheets[1].Name)
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleReport()))

	var decoded struct {
		Sheets []struct {
			Name string  `json:"name"`
			Rows [][]any `json:"rows"`
		} `json:"sheets"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "Summary", decoded.Sheets[0].Name)
	require.Equal(t, []any{"2024-03", 1234.5679}, decoded.Sheets[0].Rows[0])
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, sampleReport()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded["sheets"], 2)
	require.Contains(t, buf.String(), "range_name: Steps")
}

func TestCSVQuotesAndFormats(t *testing.T) {
	doc := NewDocument(sampleReport())
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, doc.Sheets[1]))
	require.Equal(t, "Date,Steps,Source\n2024-03-02 08:00:00,500,\"Phone, Inc\"\n", buf.String())
}

func TestWriteDirCSV(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteDir(dir, FormatCSV, sampleReport())
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "01-summary.csv"), filepath.Join(dir, "02-steps.csv")}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "Month,Steps\n"))
}

func TestParseFormatAndFileName(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xlsx")
	require.ErrorIs(t, err, ErrUnknownFormat)

	require.Equal(t, "2024-03", FileName("2024 - 03"))
	require.Equal(t, "walking-running", FileName("Walking + Running!"))
}
