package config

import (
	"errors"
	"fmt"
	"time"

	"example.com/healthreport/internal/domain"
)

// ErrInvalidSettings is returned when a setting value cannot be applied.
var ErrInvalidSettings = errors.New("invalid settings")

// ErrUnknownSetting is returned for names missing from the option table.
var ErrUnknownSetting = errors.New("unknown setting")

// Settings are the user-facing report options. A build treats them as read-only.
type Settings struct {
	DistanceUnit                     domain.LengthUnit
	DurationUnit                     domain.DurationUnit
	WeightUnit                       domain.MassUnit
	EnergyUnit                       domain.EnergyUnit
	Timezone                         string
	TrailingMonthCount               int
	UseStableNameForCurrentMonth     bool
	UseStableNameForPreviousMonth    bool
	OmitEmptySheets                  bool
	OmitEmptyColumnsOnOverallSummary bool
	OmitEmptyColumnsOnMonthlySummary bool
}

// DefaultSettings returns the settings applied when a user has configured nothing.
func DefaultSettings() Settings {
	s := Settings{}
	for _, opt := range options {
		// Defaults are literals of the table and always coerce.
		if err := opt.set(&s, opt.Default); err != nil {
			panic(fmt.Sprintf("config: default for %s: %v", opt.Name, err))
		}
	}
	return s
}

// Location resolves Timezone, falling back to UTC for an empty name.
func (s Settings) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidSettings, s.Timezone, err)
	}
	return loc, nil
}

// Validate checks cross-field constraints the individual setters cannot.
func (s Settings) Validate() error {
	var errs []error
	if _, err := s.Location(); err != nil {
		errs = append(errs, err)
	}
	if s.TrailingMonthCount < 0 {
		errs = append(errs, fmt.Errorf("%w: trailing_month_count must be >= 0", ErrInvalidSettings))
	}
	for name, unit := range map[string]string{
		"distance_unit": string(s.DistanceUnit),
		"duration_unit": string(s.DurationUnit),
		"weight_unit":   string(s.WeightUnit),
		"energy_unit":   string(s.EnergyUnit),
	} {
		if unit == "" {
			errs = append(errs, fmt.Errorf("%w: %s is required", ErrInvalidSettings, name))
		}
	}
	return errors.Join(errs...)
}

// Get returns the textual value of a named setting.
func (s Settings) Get(name string) (string, error) {
	opt, ok := Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	return opt.get(s), nil
}

// Set coerces value and assigns it to the named setting.
func (s *Settings) Set(name, value string) error {
	opt, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	if err := opt.set(s, value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSettings, name, err)
	}
	return nil
}

// Values returns every setting keyed by name.
func (s Settings) Values() map[string]string {
	out := make(map[string]string, len(options))
	for _, opt := range options {
		out[opt.Name] = opt.get(s)
	}
	return out
}

// Apply returns a copy of s with values assigned. Every failing entry is reported; s is never
// partially updated.
func Apply(s Settings, values map[string]string) (Settings, error) {
	next := s
	var errs []error
	for _, opt := range options {
		raw, ok := values[opt.Name]
		if !ok {
			continue
		}
		if err := next.Set(opt.Name, raw); err != nil {
			errs = append(errs, err)
		}
	}
	for name := range values {
		if _, ok := Lookup(name); !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownSetting, name))
		}
	}
	if len(errs) == 0 {
		if err := next.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return s, errors.Join(errs...)
	}
	return next, nil
}
