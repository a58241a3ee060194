package sheets

import (
	"time"

	"example.com/healthreport/internal/config"
	"example.com/healthreport/internal/export"
)

// Factory constructs the builders of one report build.
type Factory struct {
	settings config.Settings
	loc      *time.Location
}

// NewFactory resolves the settings time zone up front so builders never fail.
func NewFactory(settings config.Settings) (*Factory, error) {
	loc, err := settings.Location()
	if err != nil {
		return nil, err
	}
	return &Factory{settings: settings, loc: loc}, nil
}

// Location is the time zone samples are bucketed in.
func (f *Factory) Location() *time.Location { return f.loc }

// Builders returns every category builder in display order.
func (f *Factory) Builders(exp *export.Export) []Builder {
	if exp == nil {
		exp = &export.Export{}
	}

	builders := []Builder{
		NewRecordBuilder(Steps(), exp.Records, f.loc),
		NewRecordBuilder(Mass(f.settings), exp.Records, f.loc),
		NewRecordBuilder(BodyFat(), exp.Records, f.loc),
		NewRecordBuilder(CyclingDistance(f.settings), exp.Records, f.loc),
	}
	for _, desc := range Workouts() {
		builders = append(builders, NewWorkoutBuilder(desc, exp.Workouts, f.settings, f.loc))
	}
	return append(builders,
		NewRecordBuilder(GeneralRecords(f.settings), exp.Records, f.loc),
		NewRecordBuilder(HealthMarkers(), exp.Records, f.loc),
		NewRecordBuilder(Nutrition(f.settings), exp.Records, f.loc),
	)
}
