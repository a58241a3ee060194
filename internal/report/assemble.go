// Package report assembles builder output into the ordered sheet list of a report and runs report
// builds for the service and CLI.
package report

import (
	"fmt"
	"time"

	"example.com/healthreport/internal/calendar"
	"example.com/healthreport/internal/config"
	"example.com/healthreport/internal/dataset"
	"example.com/healthreport/internal/export"
	"example.com/healthreport/internal/sheets"
)

const (
	SummarySheetName       = "Summary"
	CurrentMonthSheetName  = "Current Month"
	PreviousMonthSheetName = "Previous Month"
)

// SheetKind tells renderers how a sheet was produced.
type SheetKind string

const (
	KindSummary SheetKind = "summary"
	KindMonth   SheetKind = "month"
	KindRaw     SheetKind = "raw"
)

// DisplayPolicy carries per-sheet rendering flags.
type DisplayPolicy struct {
	OmitIfEmpty      bool `json:"omit_if_empty" yaml:"omit_if_empty"`
	OmitEmptyColumns bool `json:"omit_empty_columns" yaml:"omit_empty_columns"`
}

// Sheet is one named table of the report.
type Sheet struct {
	Name   string
	Kind   SheetKind
	Source dataset.Source
	Policy DisplayPolicy
}

// Report is the ordered list of sheets produced by one build.
type Report struct {
	GeneratedAt time.Time
	Sheets      []Sheet
}

// Visible applies each sheet's display policy: empty sheets flagged OmitIfEmpty are dropped and
// sheets flagged OmitEmptyColumns lose their blank columns.
func (r Report) Visible() []Sheet {
	out := make([]Sheet, 0, len(r.Sheets))
	for _, sh := range r.Sheets {
		if sh.Policy.OmitIfEmpty && sh.Source.Empty() {
			continue
		}
		if sh.Policy.OmitEmptyColumns {
			sh.Source = sh.Source.WithoutEmptyColumns()
		}
		out = append(out, sh)
	}
	return out
}

// Sheet finds a sheet by name.
func (r Report) Sheet(name string) (Sheet, bool) {
	for _, sh := range r.Sheets {
		if sh.Name == name {
			return sh, true
		}
	}
	return Sheet{}, false
}

// Assemble joins builder summaries into the overall summary and the trailing month sheets, followed by
// the raw sheet of every builder. now anchors the current month in the settings time zone.
func Assemble(builders []sheets.Builder, exp *export.Export, settings config.Settings, now time.Time) (Report, error) {
	loc, err := settings.Location()
	if err != nil {
		return Report{}, err
	}
	if exp == nil {
		exp = &export.Export{}
	}

	report := Report{GeneratedAt: now.UTC()}
	report.Sheets = append(report.Sheets, Sheet{
		Name:   SummarySheetName,
		Kind:   KindSummary,
		Source: overallSummary(builders, exp, loc),
		Policy: DisplayPolicy{
			OmitIfEmpty:      settings.OmitEmptySheets,
			OmitEmptyColumns: settings.OmitEmptyColumnsOnOverallSummary,
		},
	})

	current := calendar.MonthOf(now, loc)
	for i := 0; i < settings.TrailingMonthCount; i++ {
		month := current.AddMonths(-i)
		report.Sheets = append(report.Sheets, Sheet{
			Name:   monthSheetName(month, i, settings),
			Kind:   KindMonth,
			Source: monthSummary(builders, month),
			Policy: DisplayPolicy{
				OmitIfEmpty:      settings.OmitEmptySheets,
				OmitEmptyColumns: settings.OmitEmptyColumnsOnMonthlySummary,
			},
		})
	}

	for _, b := range builders {
		report.Sheets = append(report.Sheets, Sheet{
			Name:   b.Name(),
			Kind:   KindRaw,
			Source: b.BuildRaw(),
			Policy: DisplayPolicy{OmitIfEmpty: settings.OmitEmptySheets},
		})
	}
	return report, nil
}

func monthSheetName(month calendar.YearMonth, offset int, settings config.Settings) string {
	switch {
	case offset == 0 && settings.UseStableNameForCurrentMonth:
		return CurrentMonthSheetName
	case offset == 1 && settings.UseStableNameForPreviousMonth:
		return PreviousMonthSheetName
	}
	return fmt.Sprintf("%04d - %02d", month.Year, int(month.Month))
}

func monthSummary(builders []sheets.Builder, month calendar.YearMonth) *dataset.Dataset[calendar.Date] {
	r := month.Range()
	parts := make([]*dataset.Dataset[calendar.Date], 0, len(builders))
	for _, b := range builders {
		parts = append(parts, b.BuildSummaryForRange(r))
	}
	return dataset.Join(dataset.DayKeys("Date", r.Days()), parts...)
}

func overallSummary(builders []sheets.Builder, exp *export.Export, loc *time.Location) *dataset.Dataset[calendar.YearMonth] {
	parts := make([]*dataset.Dataset[calendar.YearMonth], 0, len(builders))
	for _, b := range builders {
		parts = append(parts, b.BuildSummary())
	}
	return dataset.Join(dataset.MonthKeys("Month", DataMonths(exp, loc)), parts...)
}

// DataMonths lists every month holding the start of a record or workout, newest first.
func DataMonths(exp *export.Export, loc *time.Location) []calendar.YearMonth {
	seen := make(map[calendar.YearMonth]struct{})
	months := make([]calendar.YearMonth, 0)
	add := func(t time.Time) {
		m := calendar.MonthOf(t, loc)
		if _, ok := seen[m]; ok {
			return
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	for _, r := range exp.Records {
		add(r.Start)
	}
	for _, w := range exp.Workouts {
		add(w.Start)
	}
	calendar.SortMonthsDesc(months)
	return months
}
