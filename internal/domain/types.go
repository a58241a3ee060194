package domain

// Record type identifiers consumed by the sheet builders.
const (
	TypeStepCount              = "HKQuantityTypeIdentifierStepCount"
	TypeBodyMass               = "HKQuantityTypeIdentifierBodyMass"
	TypeBodyFatPercentage      = "HKQuantityTypeIdentifierBodyFatPercentage"
	TypeDistanceCycling        = "HKQuantityTypeIdentifierDistanceCycling"
	TypeDistanceWalkingRunning = "HKQuantityTypeIdentifierDistanceWalkingRunning"
	TypeFlightsClimbed         = "HKQuantityTypeIdentifierFlightsClimbed"
	TypeActiveEnergyBurned     = "HKQuantityTypeIdentifierActiveEnergyBurned"
	TypeBasalEnergyBurned      = "HKQuantityTypeIdentifierBasalEnergyBurned"
	TypeExerciseTime           = "HKQuantityTypeIdentifierAppleExerciseTime"
	TypeStandTime              = "HKQuantityTypeIdentifierAppleStandTime"

	TypeRestingHeartRate     = "HKQuantityTypeIdentifierRestingHeartRate"
	TypeWalkingHeartRate     = "HKQuantityTypeIdentifierWalkingHeartRateAverage"
	TypeHeartRateVariability = "HKQuantityTypeIdentifierHeartRateVariabilitySDNN"
	TypeVO2Max               = "HKQuantityTypeIdentifierVO2Max"
	TypeBloodPressureSys     = "HKQuantityTypeIdentifierBloodPressureSystolic"
	TypeBloodPressureDia     = "HKQuantityTypeIdentifierBloodPressureDiastolic"
	TypeOxygenSaturation     = "HKQuantityTypeIdentifierOxygenSaturation"
	TypeRespiratoryRate      = "HKQuantityTypeIdentifierRespiratoryRate"
	TypeBloodGlucose         = "HKQuantityTypeIdentifierBloodGlucose"

	TypeDietaryEnergy        = "HKQuantityTypeIdentifierDietaryEnergyConsumed"
	TypeDietaryProtein       = "HKQuantityTypeIdentifierDietaryProtein"
	TypeDietaryCarbohydrates = "HKQuantityTypeIdentifierDietaryCarbohydrates"
	TypeDietaryFat           = "HKQuantityTypeIdentifierDietaryFatTotal"
	TypeDietaryFiber         = "HKQuantityTypeIdentifierDietaryFiber"
	TypeDietarySugar         = "HKQuantityTypeIdentifierDietarySugar"
	TypeDietaryWater         = "HKQuantityTypeIdentifierDietaryWater"
	TypeDietaryCaffeine      = "HKQuantityTypeIdentifierDietaryCaffeine"
)

// Workout activity type identifiers.
const (
	WorkoutRunning            = "HKWorkoutActivityTypeRunning"
	WorkoutWalking            = "HKWorkoutActivityTypeWalking"
	WorkoutCycling            = "HKWorkoutActivityTypeCycling"
	WorkoutHiking             = "HKWorkoutActivityTypeHiking"
	WorkoutSwimming           = "HKWorkoutActivityTypeSwimming"
	WorkoutStrengthTraining   = "HKWorkoutActivityTypeTraditionalStrengthTraining"
	WorkoutFunctionalStrength = "HKWorkoutActivityTypeFunctionalStrengthTraining"
	WorkoutElliptical         = "HKWorkoutActivityTypeElliptical"
	WorkoutRowing             = "HKWorkoutActivityTypeRowing"
	WorkoutYoga               = "HKWorkoutActivityTypeYoga"
	WorkoutHIIT               = "HKWorkoutActivityTypeHighIntensityIntervalTraining"
)

// WatchMarker identifies wrist-worn sources by name.
const WatchMarker = "Watch"
