package sheets

import (
	"slices"
	"time"

	"example.com/healthreport/internal/dataset"
	"example.com/healthreport/internal/domain"
)

// Converter extracts a record's value in the display unit. Absent or unparseable values count as zero;
// records it rejects (an unknown unit) are left out of every view of the category.
type Converter func(r domain.Record) (float64, bool)

// Metric describes one record type and the column it feeds.
type Metric struct {
	Type      string
	Header    string
	RangeName string
	Reducer   Reducer
	Convert   Converter
	// Prepare runs over the metric's records before conversion, e.g. step deduplication.
	Prepare func([]domain.Record) []domain.Record
}

// RecordDescriptor describes a record-backed category.
type RecordDescriptor struct {
	Name    string
	Metrics []Metric
}

// Plain uses the stored value as is.
func Plain(r domain.Record) (float64, bool) { return r.FloatOrZero(), true }

// Percent turns a 0..1 fraction into a percentage.
func Percent(r domain.Record) (float64, bool) { return r.FloatOrZero() * 100, true }

// LengthIn converts to unit. A record without a unit is taken to already be in unit.
func LengthIn(unit domain.LengthUnit) Converter {
	return func(r domain.Record) (float64, bool) {
		f := r.FloatOrZero()
		if !r.HasUnit() {
			return f, true
		}
		from, err := domain.ParseLengthUnit(r.Unit)
		if err != nil {
			return 0, false
		}
		return domain.NewLength(f, from).In(unit), true
	}
}

// MassIn converts to unit. A record without a unit is taken to already be in unit.
func MassIn(unit domain.MassUnit) Converter {
	return func(r domain.Record) (float64, bool) {
		f := r.FloatOrZero()
		if !r.HasUnit() {
			return f, true
		}
		from, err := domain.ParseMassUnit(r.Unit)
		if err != nil {
			return 0, false
		}
		return domain.NewMass(f, from).In(unit), true
	}
}

// EnergyIn converts to unit. A record without a unit is taken to already be in unit.
func EnergyIn(unit domain.EnergyUnit) Converter {
	return func(r domain.Record) (float64, bool) {
		f := r.FloatOrZero()
		if !r.HasUnit() {
			return f, true
		}
		from, err := domain.ParseEnergyUnit(r.Unit)
		if err != nil {
			return 0, false
		}
		return domain.NewEnergy(f, from).In(unit), true
	}
}

// DurationIn converts to unit. A record without a unit is taken to be in minutes.
func DurationIn(unit domain.DurationUnit) Converter {
	return func(r domain.Record) (float64, bool) {
		f := r.FloatOrZero()
		from := domain.Minutes
		if r.HasUnit() {
			parsed, err := domain.ParseDurationUnit(r.Unit)
			if err != nil {
				return 0, false
			}
			from = parsed
		}
		return unit.Of(from.Duration(f)), true
	}
}

type recordEntry struct {
	record domain.Record
	metric *Metric
	value  float64
}

// NewRecordBuilder builds a category over records, keeping only the types desc names.
func NewRecordBuilder(desc RecordDescriptor, records []domain.Record, loc *time.Location) Builder {
	entries := make([]recordEntry, 0)
	agg := &aggregate{name: desc.Name}

	for i := range desc.Metrics {
		m := &desc.Metrics[i]
		s := newSeries(m.Header, m.RangeName, m.Reducer)
		agg.series = append(agg.series, s)

		matched := domain.FilterRecords(records, m.Type)
		if m.Prepare != nil {
			matched = m.Prepare(matched)
		}
		for _, r := range matched {
			v, ok := m.Convert(r)
			if !ok {
				continue
			}
			s.add(r.Start, loc, v)
			entries = append(entries, recordEntry{record: r, metric: m, value: v})
		}
	}

	single := len(desc.Metrics) == 1
	agg.raw = func() dataset.Table {
		sorted := slices.Clone(entries)
		slices.SortStableFunc(sorted, func(a, b recordEntry) int {
			return b.record.Start.Compare(a.record.Start)
		})

		table := make(dataset.Table, 0, len(sorted))
		for _, e := range sorted {
			row := dataset.Row{{Header: "Date", Value: dataset.TimeValue(e.record.Start.In(loc))}}
			if single {
				row = append(row, dataset.Cell{Header: e.metric.Header, Value: dataset.Number(e.value)})
			} else {
				row = append(row,
					dataset.Cell{Header: "Metric", Value: dataset.Text(e.metric.Header)},
					dataset.Cell{Header: "Value", Value: dataset.Number(e.value)},
				)
			}
			row = append(row, dataset.Cell{Header: "Source", Value: dataset.Text(e.record.SourceName)})
			table = append(table, row)
		}
		return table
	}
	return agg
}
