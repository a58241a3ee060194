package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"example.com/healthreport/internal/domain"
)

// Option describes one named setting.
type Option struct {
	Name        string
	Description string
	Default     string
	get         func(Settings) string
	set         func(*Settings, string) error
}

var options = []Option{
	{
		Name:        "distance_unit",
		Description: "Unit used for distances (mi, km, m).",
		Default:     string(domain.Miles),
		get:         func(s Settings) string { return string(s.DistanceUnit) },
		set: func(s *Settings, v string) error {
			u, err := domain.ParseLengthUnit(v)
			if err != nil {
				return err
			}
			s.DistanceUnit = u
			return nil
		},
	},
	{
		Name:        "duration_unit",
		Description: "Unit used for workout durations (s, min, hr).",
		Default:     string(domain.Minutes),
		get:         func(s Settings) string { return string(s.DurationUnit) },
		set: func(s *Settings, v string) error {
			u, err := domain.ParseDurationUnit(v)
			if err != nil {
				return err
			}
			s.DurationUnit = u
			return nil
		},
	},
	{
		Name:        "weight_unit",
		Description: "Unit used for body mass (lb, kg, st).",
		Default:     string(domain.Pounds),
		get:         func(s Settings) string { return string(s.WeightUnit) },
		set: func(s *Settings, v string) error {
			u, err := domain.ParseMassUnit(v)
			if err != nil {
				return err
			}
			s.WeightUnit = u
			return nil
		},
	},
	{
		Name:        "energy_unit",
		Description: "Unit used for energy (kcal, kJ).",
		Default:     string(domain.Kilocalories),
		get:         func(s Settings) string { return string(s.EnergyUnit) },
		set: func(s *Settings, v string) error {
			u, err := domain.ParseEnergyUnit(v)
			if err != nil {
				return err
			}
			s.EnergyUnit = u
			return nil
		},
	},
	{
		Name:        "timezone",
		Description: "IANA time zone used to assign samples to calendar days.",
		Default:     "UTC",
		get:         func(s Settings) string { return s.Timezone },
		set: func(s *Settings, v string) error {
			v = strings.TrimSpace(v)
			if _, err := time.LoadLocation(v); err != nil {
				return err
			}
			s.Timezone = v
			return nil
		},
	},
	{
		Name:        "trailing_month_count",
		Description: "Number of most recent months that get their own daily sheet.",
		Default:     "3",
		get:         func(s Settings) string { return strconv.Itoa(s.TrailingMonthCount) },
		set: func(s *Settings, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			if n < 0 {
				return fmt.Errorf("must be >= 0, got %d", n)
			}
			s.TrailingMonthCount = n
			return nil
		},
	},
	boolOption("use_stable_name_for_current_month",
		"Name the current month's sheet \"Current Month\" instead of its date.", false,
		func(s *Settings) *bool { return &s.UseStableNameForCurrentMonth }),
	boolOption("use_stable_name_for_previous_month",
		"Name the previous month's sheet \"Previous Month\" instead of its date.", false,
		func(s *Settings) *bool { return &s.UseStableNameForPreviousMonth }),
	boolOption("omit_empty_sheets",
		"Leave out sheets that have no data.", true,
		func(s *Settings) *bool { return &s.OmitEmptySheets }),
	boolOption("omit_empty_columns_on_overall_summary",
		"Leave out summary columns with no data.", true,
		func(s *Settings) *bool { return &s.OmitEmptyColumnsOnOverallSummary }),
	boolOption("omit_empty_columns_on_monthly_summary",
		"Leave out month sheet columns with no data.", true,
		func(s *Settings) *bool { return &s.OmitEmptyColumnsOnMonthlySummary }),
}

func boolOption(name, description string, def bool, field func(*Settings) *bool) Option {
	return Option{
		Name:        name,
		Description: description,
		Default:     strconv.FormatBool(def),
		get: func(s Settings) string {
			return strconv.FormatBool(*field(&s))
		},
		set: func(s *Settings, v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*field(s) = b
			return nil
		},
	}
}

// Options lists every known setting in display order.
func Options() []Option {
	out := make([]Option, len(options))
	copy(out, options)
	return out
}

// Lookup finds an option by name.
func Lookup(name string) (Option, bool) {
	for _, opt := range options {
		if opt.Name == name {
			return opt, true
		}
	}
	return Option{}, false
}
