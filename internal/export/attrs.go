package export

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"example.com/healthreport/internal/domain"
)

// TimestampLayout is the export's timestamp format; the offset varies per sample.
const TimestampLayout = "2006-01-02 15:04:05 -0700"

// ParseTimestamp parses an export timestamp honouring its explicit offset and returns it in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ParseDouble parses a numeric attribute. Absent and malformed values report false.
func ParseDouble(s string) (float64, bool) {
	if s == "" || s == domain.Null {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// attributes is the transient view of one element's attribute set.
type attributes map[string]string

func readAttributes(el xml.StartElement) attributes {
	attrs := make(attributes, len(el.Attr))
	for _, a := range el.Attr {
		attrs[a.Name.Local] = a.Value
	}
	return attrs
}

// optional returns the attribute or the Null sentinel.
func (a attributes) optional(name string) string {
	if v, ok := a[name]; ok {
		return v
	}
	return domain.Null
}

// length reads a magnitude/unit pair as a distance; anything missing or unknown is zero.
func (a attributes) length(valueAttr, unitAttr string) domain.Length {
	v, ok := ParseDouble(a[valueAttr])
	if !ok {
		return domain.Length{}
	}
	unit, err := domain.ParseLengthUnit(a[unitAttr])
	if err != nil {
		return domain.Length{}
	}
	return domain.NewLength(v, unit)
}

func (a attributes) energy(valueAttr, unitAttr string) domain.Energy {
	v, ok := ParseDouble(a[valueAttr])
	if !ok {
		return domain.Energy{}
	}
	unit, err := domain.ParseEnergyUnit(a[unitAttr])
	if err != nil {
		return domain.Energy{}
	}
	return domain.NewEnergy(v, unit)
}

func (a attributes) duration(valueAttr, unitAttr string) time.Duration {
	v, ok := ParseDouble(a[valueAttr])
	if !ok {
		return 0
	}
	raw := a[unitAttr]
	if raw == "" {
		raw = string(domain.Minutes)
	}
	unit, err := domain.ParseDurationUnit(raw)
	if err != nil {
		return 0
	}
	return unit.Duration(v)
}
