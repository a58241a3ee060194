// Package dedup reconciles step counts reported for overlapping windows by several devices.
package dedup

import (
	"slices"
	"strings"

	"example.com/healthreport/internal/calendar"
	"example.com/healthreport/internal/domain"
)

// Prioritize returns a non-overlapping subset of step records, oldest first.
//
// Records are ordered by start time and each one is compared with its successor. When the successor
// starts inside the current record's [start, end) window one of the two is rejected and the survivor is
// compared with the following record.
func Prioritize(records []domain.Record) []domain.Record {
	if len(records) == 0 {
		return []domain.Record{}
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b domain.Record) int { return a.Start.Compare(b.Start) })

	out := make([]domain.Record, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if !overlaps(current, next) {
			out = append(out, current)
			current = next
			continue
		}
		if keepFirst(current, next) {
			continue
		}
		current = next
	}
	return append(out, current)
}

func overlaps(current, next domain.Record) bool {
	return calendar.Interval{Start: current.Start, End: current.End}.Contains(next.Start)
}

// keepFirst decides which of two overlapping records survives; ties keep the earlier record.
func keepFirst(first, second domain.Record) bool {
	if first.SourceName != second.SourceName {
		firstWatch := isWatch(first.SourceName)
		secondWatch := isWatch(second.SourceName)
		if firstWatch != secondWatch {
			return firstWatch
		}
	}
	return first.FloatOrZero() >= second.FloatOrZero()
}

func isWatch(source string) bool {
	return strings.Contains(source, domain.WatchMarker)
}
