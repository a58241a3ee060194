package domain

import (
	"fmt"
	"strings"
	"time"
)

// LengthUnit is a distance unit token as it appears in the export.
type LengthUnit string

const (
	Miles       LengthUnit = "mi"
	Kilometers  LengthUnit = "km"
	Meters      LengthUnit = "m"
	Feet        LengthUnit = "ft"
	Yards       LengthUnit = "yd"
	Centimeters LengthUnit = "cm"
)

var metersPer = map[LengthUnit]float64{
	Miles:       1609.344,
	Kilometers:  1000,
	Meters:      1,
	Feet:        0.3048,
	Yards:       0.9144,
	Centimeters: 0.01,
}

// MassUnit is a weight unit token.
type MassUnit string

const (
	Pounds    MassUnit = "lb"
	Kilograms MassUnit = "kg"
	Grams     MassUnit = "g"
	Ounces    MassUnit = "oz"
	Stones    MassUnit = "st"
)

var kilogramsPer = map[MassUnit]float64{
	Pounds:    0.45359237,
	Kilograms: 1,
	Grams:     0.001,
	Ounces:    0.028349523125,
	Stones:    6.35029318,
}

// EnergyUnit is an energy unit token.
type EnergyUnit string

const (
	Kilocalories EnergyUnit = "kcal"
	Calories     EnergyUnit = "Cal"
	SmallCalorie EnergyUnit = "cal"
	Kilojoules   EnergyUnit = "kJ"
)

var kilocaloriesPer = map[EnergyUnit]float64{
	Kilocalories: 1,
	Calories:     1,
	SmallCalorie: 0.001,
	Kilojoules:   1 / 4.184,
}

// DurationUnit is a time unit token.
type DurationUnit string

const (
	Seconds DurationUnit = "s"
	Minutes DurationUnit = "min"
	Hours   DurationUnit = "hr"
)

var durationOf = map[DurationUnit]time.Duration{
	Seconds: time.Second,
	Minutes: time.Minute,
	Hours:   time.Hour,
}

var lengthAliases = map[string]LengthUnit{
	"mi": Miles, "mile": Miles, "miles": Miles,
	"km": Kilometers, "kilometer": Kilometers, "kilometers": Kilometers,
	"m": Meters, "meter": Meters, "meters": Meters,
	"ft": Feet, "feet": Feet,
	"yd": Yards, "yards": Yards,
	"cm": Centimeters,
}

var massAliases = map[string]MassUnit{
	"lb": Pounds, "lbs": Pounds, "pound": Pounds, "pounds": Pounds,
	"kg": Kilograms, "kilogram": Kilograms, "kilograms": Kilograms,
	"g": Grams, "grams": Grams,
	"oz": Ounces,
	"st": Stones, "stone": Stones,
}

var energyAliases = map[string]EnergyUnit{
	"kcal": Kilocalories, "kilocalories": Kilocalories,
	"cal":  SmallCalorie,
	"kj":   Kilojoules, "kilojoules": Kilojoules,
}

var durationAliases = map[string]DurationUnit{
	"s": Seconds, "sec": Seconds, "seconds": Seconds,
	"min": Minutes, "minutes": Minutes,
	"hr": Hours, "h": Hours, "hours": Hours,
}

// ParseLengthUnit resolves a unit token or name, case-insensitively.
func ParseLengthUnit(s string) (LengthUnit, error) {
	if u, ok := lengthAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return u, nil
	}
	return "", fmt.Errorf("unknown distance unit %q", s)
}

// ParseMassUnit resolves a unit token or name, case-insensitively.
func ParseMassUnit(s string) (MassUnit, error) {
	if u, ok := massAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return u, nil
	}
	return "", fmt.Errorf("unknown weight unit %q", s)
}

// ParseEnergyUnit resolves a unit token or name. "Cal" (food calorie) is case-sensitive against "cal".
func ParseEnergyUnit(s string) (EnergyUnit, error) {
	s = strings.TrimSpace(s)
	if s == string(Calories) {
		return Calories, nil
	}
	if u, ok := energyAliases[strings.ToLower(s)]; ok {
		return u, nil
	}
	return "", fmt.Errorf("unknown energy unit %q", s)
}

// ParseDurationUnit resolves a unit token or name, case-insensitively.
func ParseDurationUnit(s string) (DurationUnit, error) {
	if u, ok := durationAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return u, nil
	}
	return "", fmt.Errorf("unknown duration unit %q", s)
}

// Length is a distance stored in meters.
type Length struct {
	meters float64
}

// NewLength converts value in unit to a Length. Unknown units yield zero.
func NewLength(value float64, unit LengthUnit) Length {
	return Length{meters: value * metersPer[unit]}
}

// In returns the length expressed in unit.
func (l Length) In(unit LengthUnit) float64 {
	factor, ok := metersPer[unit]
	if !ok {
		return 0
	}
	return l.meters / factor
}

// IsZero reports whether the length is empty.
func (l Length) IsZero() bool { return l.meters == 0 }

// Mass is a weight stored in kilograms.
type Mass struct {
	kilograms float64
}

// NewMass converts value in unit to a Mass. Unknown units yield zero.
func NewMass(value float64, unit MassUnit) Mass {
	return Mass{kilograms: value * kilogramsPer[unit]}
}

// In returns the mass expressed in unit.
func (m Mass) In(unit MassUnit) float64 {
	factor, ok := kilogramsPer[unit]
	if !ok {
		return 0
	}
	return m.kilograms / factor
}

// Energy is stored in kilocalories.
type Energy struct {
	kilocalories float64
}

// NewEnergy converts value in unit to an Energy. Unknown units yield zero.
func NewEnergy(value float64, unit EnergyUnit) Energy {
	return Energy{kilocalories: value * kilocaloriesPer[unit]}
}

// In returns the energy expressed in unit.
func (e Energy) In(unit EnergyUnit) float64 {
	factor, ok := kilocaloriesPer[unit]
	if !ok {
		return 0
	}
	return e.kilocalories / factor
}

// IsZero reports whether the energy is empty.
func (e Energy) IsZero() bool { return e.kilocalories == 0 }

// Duration converts value in the unit to a time.Duration.
func (u DurationUnit) Duration(value float64) time.Duration {
	return time.Duration(value * float64(durationOf[u]))
}

// Of expresses d in the unit.
func (u DurationUnit) Of(d time.Duration) float64 {
	base, ok := durationOf[u]
	if !ok {
		return 0
	}
	return float64(d) / float64(base)
}
