// Package sheets turns parsed records and workouts into raw tables and per-day / per-month summaries,
// one builder per data category.
package sheets

import (
	"slices"
	"time"

	"example.com/healthreport/internal/calendar"
	"example.com/healthreport/internal/dataset"
)

// Builder produces the three views of one data category.
type Builder interface {
	// Name is the display name of the category, also used as the raw sheet name.
	Name() string
	// BuildRaw lists every event of the category, newest first.
	BuildRaw() dataset.Table
	// BuildSummary aggregates per calendar month. Only months with data carry values.
	BuildSummary() *dataset.Dataset[calendar.YearMonth]
	// BuildSummaryForRange aggregates per day for days inside r, both ends included.
	BuildSummaryForRange(r calendar.Range) *dataset.Dataset[calendar.Date]
}

// Reducer folds samples into a daily and a monthly value.
type Reducer struct {
	name    string
	daily   func(values []float64) float64
	monthly func(days map[calendar.Date][]float64) float64
}

// String names the reducer.
func (r Reducer) String() string { return r.name }

// Daily reduces the samples of a single day.
func (r Reducer) Daily(values []float64) float64 { return r.daily(values) }

// Monthly reduces one month of samples grouped by day.
func (r Reducer) Monthly(days map[calendar.Date][]float64) float64 { return r.monthly(days) }

var (
	// Sum totals cumulative quantities such as steps, distance or energy.
	Sum = Reducer{
		name:  "sum",
		daily: sum,
		monthly: func(days map[calendar.Date][]float64) float64 {
			total := 0.0
			for _, day := range orderedDays(days) {
				total += sum(days[day])
			}
			return total
		},
	}

	// DailyMinMonthlyAverage keeps the smallest reading of each day and averages those daily values.
	// Repeated same-day weigh-ins therefore count once.
	DailyMinMonthlyAverage = Reducer{
		name:  "daily-min-monthly-average",
		daily: minimum,
		monthly: func(days map[calendar.Date][]float64) float64 {
			mins := make([]float64, 0, len(days))
			for _, day := range orderedDays(days) {
				mins = append(mins, minimum(days[day]))
			}
			return mean(mins)
		},
	}

	// Average is the plain mean of every sample in the period.
	Average = Reducer{
		name:  "average",
		daily: mean,
		monthly: func(days map[calendar.Date][]float64) float64 {
			all := make([]float64, 0)
			for _, day := range orderedDays(days) {
				all = append(all, days[day]...)
			}
			return mean(all)
		},
	}
)

// orderedDays returns the keys of days oldest first, so float sums do not depend on map order.
func orderedDays(days map[calendar.Date][]float64) []calendar.Date {
	keys := make([]calendar.Date, 0, len(days))
	for day := range days {
		keys = append(keys, day)
	}
	slices.SortFunc(keys, calendar.Date.Compare)
	return keys
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func minimum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = min(m, v)
	}
	return m
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

type sample struct {
	date  calendar.Date
	value float64
}

// series is the unit of aggregation: one output column fed by samples already converted to the
// display unit.
type series struct {
	header    string
	rangeName string
	reducer   Reducer
	samples   []sample
}

func newSeries(header, rangeName string, reducer Reducer) *series {
	return &series{header: header, rangeName: rangeName, reducer: reducer, samples: make([]sample, 0)}
}

func (s *series) add(at time.Time, loc *time.Location, value float64) {
	s.samples = append(s.samples, sample{date: calendar.DateOf(at, loc), value: value})
}

func (s *series) byMonth() *dataset.Column[calendar.YearMonth] {
	groups := make(map[calendar.YearMonth]map[calendar.Date][]float64)
	for _, smp := range s.samples {
		month := smp.date.YearMonth()
		days, ok := groups[month]
		if !ok {
			days = make(map[calendar.Date][]float64)
			groups[month] = days
		}
		days[smp.date] = append(days[smp.date], smp.value)
	}

	col := dataset.NewColumn[calendar.YearMonth](s.header, s.rangeName)
	for month, days := range groups {
		col.SetNumber(month, s.reducer.Monthly(days))
	}
	return col
}

func (s *series) byDay(r calendar.Range) *dataset.Column[calendar.Date] {
	groups := make(map[calendar.Date][]float64)
	for _, smp := range s.samples {
		if r.Includes(smp.date) {
			groups[smp.date] = append(groups[smp.date], smp.value)
		}
	}

	col := dataset.NewColumn[calendar.Date](s.header, s.rangeName)
	for day, values := range groups {
		col.SetNumber(day, s.reducer.Daily(values))
	}
	return col
}

// aggregate is the shared implementation behind every builder: a name, a set of series and a raw
// table producer.
type aggregate struct {
	name   string
	series []*series
	raw    func() dataset.Table
}

func (a *aggregate) Name() string { return a.name }

func (a *aggregate) BuildRaw() dataset.Table {
	if t := a.raw(); t != nil {
		return t
	}
	return dataset.Table{}
}

func (a *aggregate) BuildSummary() *dataset.Dataset[calendar.YearMonth] {
	out := dataset.New[calendar.YearMonth]()
	for _, s := range a.series {
		out.Add(s.byMonth())
	}
	return out
}

func (a *aggregate) BuildSummaryForRange(r calendar.Range) *dataset.Dataset[calendar.Date] {
	out := dataset.New[calendar.Date]()
	for _, s := range a.series {
		out.Add(s.byDay(r))
	}
	return out
}
