package sheets

import (
	"slices"
	"strings"
	"time"

	"example.com/healthreport/internal/config"
	"example.com/healthreport/internal/dataset"
	"example.com/healthreport/internal/domain"
)

const activityPrefix = "HKWorkoutActivityType"

// WorkoutDescriptor describes one workout category and which quantities it reports.
type WorkoutDescriptor struct {
	Name     string
	Types    []string
	Duration bool
	Distance bool
	Energy   bool
}

// Workouts lists the workout categories in display order.
func Workouts() []WorkoutDescriptor {
	return []WorkoutDescriptor{
		{Name: "Running", Types: []string{domain.WorkoutRunning}, Duration: true, Distance: true, Energy: true},
		{Name: "Walking", Types: []string{domain.WorkoutWalking}, Duration: true, Distance: true, Energy: true},
		{Name: "Cycling", Types: []string{domain.WorkoutCycling}, Duration: true, Distance: true, Energy: true},
		{Name: "Hiking", Types: []string{domain.WorkoutHiking}, Duration: true, Distance: true, Energy: true},
		{Name: "Swimming", Types: []string{domain.WorkoutSwimming}, Duration: true, Distance: true, Energy: true},
		{Name: "Strength Training", Types: []string{domain.WorkoutStrengthTraining, domain.WorkoutFunctionalStrength}, Duration: true, Energy: true},
		{Name: "Elliptical", Types: []string{domain.WorkoutElliptical}, Duration: true, Energy: true},
		{Name: "Rowing", Types: []string{domain.WorkoutRowing}, Duration: true, Distance: true, Energy: true},
		{Name: "Yoga", Types: []string{domain.WorkoutYoga}, Duration: true, Energy: true},
		{Name: "HIIT", Types: []string{domain.WorkoutHIIT}, Duration: true, Energy: true},
	}
}

// NewWorkoutBuilder builds one workout category. Summary columns are the session count plus totals
// of the quantities desc emits; zero quantities are treated as not recorded.
func NewWorkoutBuilder(desc WorkoutDescriptor, workouts []domain.Workout, s config.Settings, loc *time.Location) Builder {
	matched := domain.FilterWorkouts(workouts, desc.Types...)

	count := newSeries(desc.Name+" Workouts", rangeName(desc.Name, "Workouts"), Sum)
	duration := newSeries(withUnit(desc.Name+" Workout Duration", s.DurationUnit), rangeName(desc.Name, "WorkoutDuration"), Sum)
	distance := newSeries(withUnit(desc.Name+" Workout Distance", s.DistanceUnit), rangeName(desc.Name, "WorkoutDistance"), Sum)
	energy := newSeries(withUnit(desc.Name+" Workout Energy", s.EnergyUnit), rangeName(desc.Name, "WorkoutEnergy"), Sum)

	agg := &aggregate{name: desc.Name, series: []*series{count}}
	if desc.Duration {
		agg.series = append(agg.series, duration)
	}
	if desc.Distance {
		agg.series = append(agg.series, distance)
	}
	if desc.Energy {
		agg.series = append(agg.series, energy)
	}

	for _, w := range matched {
		count.add(w.Start, loc, 1)
		if w.Duration > 0 {
			duration.add(w.Start, loc, s.DurationUnit.Of(w.Duration))
		}
		if !w.Distance.IsZero() {
			distance.add(w.Start, loc, w.Distance.In(s.DistanceUnit))
		}
		if !w.Energy.IsZero() {
			energy.add(w.Start, loc, w.Energy.In(s.EnergyUnit))
		}
	}

	agg.raw = func() dataset.Table {
		sorted := slices.Clone(matched)
		slices.SortStableFunc(sorted, func(a, b domain.Workout) int { return b.Start.Compare(a.Start) })

		table := make(dataset.Table, 0, len(sorted))
		for _, w := range sorted {
			row := dataset.Row{
				{Header: "Date", Value: dataset.TimeValue(w.Start.In(loc))},
				{Header: "Activity", Value: dataset.Text(strings.TrimPrefix(w.WorkoutType, activityPrefix))},
			}
			if desc.Duration {
				row = append(row, dataset.Cell{Header: duration.header, Value: quantity(s.DurationUnit.Of(w.Duration))})
			}
			if desc.Distance {
				row = append(row, dataset.Cell{Header: distance.header, Value: quantity(w.Distance.In(s.DistanceUnit))})
			}
			if desc.Energy {
				row = append(row, dataset.Cell{Header: energy.header, Value: quantity(w.Energy.In(s.EnergyUnit))})
			}
			row = append(row, dataset.Cell{Header: "Source", Value: dataset.Text(w.SourceName)})
			table = append(table, row)
		}
		return table
	}
	return agg
}

func quantity(f float64) dataset.Value {
	if f == 0 {
		return dataset.Empty()
	}
	return dataset.Number(f)
}

func rangeName(category, suffix string) string {
	return strings.ReplaceAll(category, " ", "") + suffix
}
