// Package dataset holds the sparse, key-addressed tables exchanged between sheet builders and the
// report assembler.
package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"example.com/healthreport/internal/calendar"
)

// Kind discriminates the payload carried by a Value.
type Kind int

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindDate
	KindTime
)

// Value is a single cell payload.
type Value struct {
	kind    Kind
	number  float64
	text    string
	date    calendar.Date
	instant time.Time
}

// Empty is a blank cell.
func Empty() Value { return Value{} }

// Number wraps a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, number: f} }

// Text wraps a string cell.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// DateValue wraps a calendar day.
func DateValue(d calendar.Date) Value { return Value{kind: KindDate, date: d} }

// TimeValue wraps a wall-clock instant. The location of t is preserved for display.
func TimeValue(t time.Time) Value { return Value{kind: KindTime, instant: t} }

// Kind reports the payload type.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the cell is blank.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Float returns the numeric payload.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.number, true
}

// Date returns the calendar payload.
func (v Value) Date() (calendar.Date, bool) {
	if v.kind != KindDate {
		return calendar.Date{}, false
	}
	return v.date, true
}

// Time returns the instant payload.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.instant, true
}

// String formats the value for text renderers.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(round(v.number), 'f', -1, 64)
	case KindText:
		return v.text
	case KindDate:
		return v.date.String()
	case KindTime:
		return v.instant.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Interface returns a plain Go value suitable for generic encoders.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return round(v.number)
	case KindEmpty:
		return nil
	default:
		return v.String()
	}
}

// MarshalJSON encodes numbers as JSON numbers and blanks as null.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

func round(f float64) float64 {
	return math.Round(f*10000) / 10000
}
