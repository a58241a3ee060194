// Package domain defines the typed health export model shared by the loader, builders and report service.
package domain

import (
	"strconv"
	"strings"
	"time"
)

// Null marks an optional attribute that was absent from the export.
const Null = "<null>"

// Record is one timestamped sample from the export, e.g. a step count or a body mass reading.
type Record struct {
	Type       string
	Start      time.Time
	End        time.Time
	Value      string
	Unit       string
	SourceName string
}

// Float parses Value. Absent or unparseable values report false.
func (r Record) Float() (float64, bool) {
	if r.Value == Null || r.Value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(r.Value), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FloatOrZero is Float with the zero default applied.
func (r Record) FloatOrZero() float64 {
	f, _ := r.Float()
	return f
}

// HasUnit reports whether the export carried a unit token for the record.
func (r Record) HasUnit() bool {
	return r.Unit != Null && r.Unit != ""
}

// Workout is one exercise session.
type Workout struct {
	WorkoutType string
	SourceName  string
	Start       time.Time
	End         time.Time
	Duration    time.Duration
	Distance    Length
	Energy      Energy
}

// FilterRecords returns the records whose Type is one of types, in their original order.
func FilterRecords(records []Record, types ...string) []Record {
	want := make(map[string]struct{}, len(types))
	for _, t := range types {
		want[t] = struct{}{}
	}
	out := make([]Record, 0)
	for _, r := range records {
		if _, ok := want[r.Type]; ok {
			out = append(out, r)
		}
	}
	return out
}

// FilterWorkouts returns the workouts whose WorkoutType is one of types, in their original order.
func FilterWorkouts(workouts []Workout, types ...string) []Workout {
	want := make(map[string]struct{}, len(types))
	for _, t := range types {
		want[t] = struct{}{}
	}
	out := make([]Workout, 0)
	for _, w := range workouts {
		if _, ok := want[w.WorkoutType]; ok {
			out = append(out, w)
		}
	}
	return out
}
