package sheets

import (
	"fmt"

	"example.com/healthreport/internal/config"
	"example.com/healthreport/internal/dedup"
	"example.com/healthreport/internal/domain"
)

func withUnit(label string, unit any) string {
	return fmt.Sprintf("%s (%s)", label, unit)
}

// Steps counts deduplicated steps.
func Steps() RecordDescriptor {
	return RecordDescriptor{
		Name: "Steps",
		Metrics: []Metric{{
			Type:      domain.TypeStepCount,
			Header:    "Steps",
			RangeName: "Steps",
			Reducer:   Sum,
			Convert:   Plain,
			Prepare:   dedup.Prioritize,
		}},
	}
}

// Mass tracks body mass in the configured weight unit.
func Mass(s config.Settings) RecordDescriptor {
	return RecordDescriptor{
		Name: "Mass",
		Metrics: []Metric{{
			Type:      domain.TypeBodyMass,
			Header:    withUnit("Weight", s.WeightUnit),
			RangeName: "Weight",
			Reducer:   DailyMinMonthlyAverage,
			Convert:   MassIn(s.WeightUnit),
		}},
	}
}

// BodyFat tracks body fat as a percentage.
func BodyFat() RecordDescriptor {
	return RecordDescriptor{
		Name: "Body Fat Percentage",
		Metrics: []Metric{{
			Type:      domain.TypeBodyFatPercentage,
			Header:    "Body Fat (%)",
			RangeName: "BodyFat",
			Reducer:   DailyMinMonthlyAverage,
			Convert:   Percent,
		}},
	}
}

// CyclingDistance totals cycling distance in the configured distance unit.
func CyclingDistance(s config.Settings) RecordDescriptor {
	return RecordDescriptor{
		Name: "Cycling Distance",
		Metrics: []Metric{{
			Type:      domain.TypeDistanceCycling,
			Header:    withUnit("Cycling Distance", s.DistanceUnit),
			RangeName: "CyclingDistance",
			Reducer:   Sum,
			Convert:   LengthIn(s.DistanceUnit),
		}},
	}
}

// GeneralRecords covers cumulative activity metrics.
func GeneralRecords(s config.Settings) RecordDescriptor {
	return RecordDescriptor{
		Name: "General Records",
		Metrics: []Metric{
			{Type: domain.TypeFlightsClimbed, Header: "Flights Climbed", RangeName: "FlightsClimbed", Reducer: Sum, Convert: Plain},
			{Type: domain.TypeActiveEnergyBurned, Header: withUnit("Active Energy", s.EnergyUnit), RangeName: "ActiveEnergy", Reducer: Sum, Convert: EnergyIn(s.EnergyUnit)},
			{Type: domain.TypeBasalEnergyBurned, Header: withUnit("Resting Energy", s.EnergyUnit), RangeName: "RestingEnergy", Reducer: Sum, Convert: EnergyIn(s.EnergyUnit)},
			{Type: domain.TypeExerciseTime, Header: withUnit("Exercise Time", s.DurationUnit), RangeName: "ExerciseTime", Reducer: Sum, Convert: DurationIn(s.DurationUnit)},
			{Type: domain.TypeDistanceWalkingRunning, Header: withUnit("Walking + Running Distance", s.DistanceUnit), RangeName: "WalkingRunningDistance", Reducer: Sum, Convert: LengthIn(s.DistanceUnit)},
			{Type: domain.TypeStandTime, Header: withUnit("Stand Time", s.DurationUnit), RangeName: "StandTime", Reducer: Sum, Convert: DurationIn(s.DurationUnit)},
		},
	}
}

// HealthMarkers covers point-in-time vitals, averaged over the period.
func HealthMarkers() RecordDescriptor {
	return RecordDescriptor{
		Name: "Health Markers",
		Metrics: []Metric{
			{Type: domain.TypeRestingHeartRate, Header: "Resting Heart Rate (bpm)", RangeName: "RestingHeartRate", Reducer: Average, Convert: Plain},
			{Type: domain.TypeWalkingHeartRate, Header: "Walking Heart Rate Average (bpm)", RangeName: "WalkingHeartRate", Reducer: Average, Convert: Plain},
			{Type: domain.TypeHeartRateVariability, Header: "Heart Rate Variability (ms)", RangeName: "HeartRateVariability", Reducer: Average, Convert: Plain},
			{Type: domain.TypeVO2Max, Header: "VO2 Max (mL/kg/min)", RangeName: "VO2Max", Reducer: Average, Convert: Plain},
			{Type: domain.TypeBloodPressureSys, Header: "Systolic (mmHg)", RangeName: "Systolic", Reducer: Average, Convert: Plain},
			{Type: domain.TypeBloodPressureDia, Header: "Diastolic (mmHg)", RangeName: "Diastolic", Reducer: Average, Convert: Plain},
			{Type: domain.TypeOxygenSaturation, Header: "Oxygen Saturation (%)", RangeName: "OxygenSaturation", Reducer: Average, Convert: Percent},
			{Type: domain.TypeRespiratoryRate, Header: "Respiratory Rate (breaths/min)", RangeName: "RespiratoryRate", Reducer: Average, Convert: Plain},
			{Type: domain.TypeBloodGlucose, Header: "Blood Glucose (mg/dL)", RangeName: "BloodGlucose", Reducer: Average, Convert: Plain},
		},
	}
}

// Nutrition covers dietary intake.
func Nutrition(s config.Settings) RecordDescriptor {
	return RecordDescriptor{
		Name: "Nutrition",
		Metrics: []Metric{
			{Type: domain.TypeDietaryEnergy, Header: withUnit("Dietary Energy", s.EnergyUnit), RangeName: "DietaryEnergy", Reducer: Sum, Convert: EnergyIn(s.EnergyUnit)},
			{Type: domain.TypeDietaryProtein, Header: "Protein (g)", RangeName: "Protein", Reducer: Sum, Convert: Plain},
			{Type: domain.TypeDietaryCarbohydrates, Header: "Carbohydrates (g)", RangeName: "Carbohydrates", Reducer: Sum, Convert: Plain},
			{Type: domain.TypeDietaryFat, Header: "Total Fat (g)", RangeName: "TotalFat", Reducer: Sum, Convert: Plain},
			{Type: domain.TypeDietaryFiber, Header: "Fiber (g)", RangeName: "Fiber", Reducer: Sum, Convert: Plain},
			{Type: domain.TypeDietarySugar, Header: "Sugar (g)", RangeName: "Sugar", Reducer: Sum, Convert: Plain},
			{Type: domain.TypeDietaryWater, Header: "Water (mL)", RangeName: "Water", Reducer: Sum, Convert: Plain},
			{Type: domain.TypeDietaryCaffeine, Header: "Caffeine (mg)", RangeName: "Caffeine", Reducer: Sum, Convert: Plain},
		},
	}
}
