// Package score computes the completeness score and attestation tier for
// a set of observed health metrics. The catalog, core/recommended sets,
// and tier thresholds are immutable process-wide configuration: they are
// built once and injected into a Scorer, never mutated at runtime.
package score

// Catalog partitions the known metric identifiers into named categories
// and designates the mandatory core and secondary recommended sets.
type Catalog struct {
	Core        []string
	Recommended []string
	Categories  map[string][]string
}

// DefaultCatalog returns the fixed production catalog. Changing the core
// or recommended membership changes historical tier semantics, so edits
// here are versioned at the manifest level.
func DefaultCatalog() Catalog {
	return Catalog{
		Core: []string{
			"HKQuantityTypeIdentifierHeartRate",
			"HKQuantityTypeIdentifierRestingHeartRate",
			"HKQuantityTypeIdentifierStepCount",
			"HKQuantityTypeIdentifierActiveEnergyBurned",
			"HKCategoryTypeIdentifierSleepAnalysis",
		},
		Recommended: []string{
			"HKQuantityTypeIdentifierHeartRateVariabilitySDNN",
			"HKQuantityTypeIdentifierRespiratoryRate",
			"HKQuantityTypeIdentifierOxygenSaturation",
			"HKQuantityTypeIdentifierBodyMass",
			"HKQuantityTypeIdentifierVO2Max",
			"HKQuantityTypeIdentifierAppleExerciseTime",
			"HKQuantityTypeIdentifierDistanceWalkingRunning",
			"HKQuantityTypeIdentifierBloodPressureSystolic",
		},
		Categories: map[string][]string{
			"heart": {
				"HKQuantityTypeIdentifierHeartRate",
				"HKQuantityTypeIdentifierRestingHeartRate",
				"HKQuantityTypeIdentifierWalkingHeartRateAverage",
				"HKQuantityTypeIdentifierHeartRateVariabilitySDNN",
				"HKQuantityTypeIdentifierHeartRateRecoveryOneMinute",
			},
			"activity": {
				"HKQuantityTypeIdentifierStepCount",
				"HKQuantityTypeIdentifierDistanceWalkingRunning",
				"HKQuantityTypeIdentifierDistanceCycling",
				"HKQuantityTypeIdentifierFlightsClimbed",
				"HKQuantityTypeIdentifierAppleExerciseTime",
				"HKQuantityTypeIdentifierAppleStandTime",
			},
			"energy": {
				"HKQuantityTypeIdentifierActiveEnergyBurned",
				"HKQuantityTypeIdentifierBasalEnergyBurned",
				"HKQuantityTypeIdentifierDietaryEnergyConsumed",
				"HKQuantityTypeIdentifierDietaryWater",
			},
			"respiratory": {
				"HKQuantityTypeIdentifierRespiratoryRate",
				"HKQuantityTypeIdentifierOxygenSaturation",
				"HKQuantityTypeIdentifierForcedVitalCapacity",
			},
			"body": {
				"HKQuantityTypeIdentifierBodyMass",
				"HKQuantityTypeIdentifierBodyMassIndex",
				"HKQuantityTypeIdentifierBodyFatPercentage",
				"HKQuantityTypeIdentifierLeanBodyMass",
				"HKQuantityTypeIdentifierHeight",
				"HKQuantityTypeIdentifierWaistCircumference",
			},
			"sleep": {
				"HKCategoryTypeIdentifierSleepAnalysis",
				"HKQuantityTypeIdentifierAppleSleepingWristTemperature",
			},
			"vitals": {
				"HKQuantityTypeIdentifierBloodPressureSystolic",
				"HKQuantityTypeIdentifierBloodPressureDiastolic",
				"HKQuantityTypeIdentifierBodyTemperature",
				"HKQuantityTypeIdentifierBloodGlucose",
			},
			"fitness": {
				"HKQuantityTypeIdentifierVO2Max",
				"HKQuantityTypeIdentifierSixMinuteWalkTestDistance",
				"HKQuantityTypeIdentifierWalkingSpeed",
				"HKQuantityTypeIdentifierWalkingStepLength",
				"HKQuantityTypeIdentifierAppleWalkingSteadiness",
			},
			"environmental": {
				"HKQuantityTypeIdentifierEnvironmentalAudioExposure",
				"HKQuantityTypeIdentifierHeadphoneAudioExposure",
				"HKQuantityTypeIdentifierTimeInDaylight",
				"HKQuantityTypeIdentifierUVExposure",
			},
			"mindfulness": {
				"HKCategoryTypeIdentifierMindfulSession",
				"HKCategoryTypeIdentifierHandwashingEvent",
				"HKQuantityTypeIdentifierNumberOfTimesFallen",
			},
		},
	}
}

// TotalMetrics returns the number of identifiers across all categories.
func (c Catalog) TotalMetrics() int {
	total := 0
	for _, ids := range c.Categories {
		total += len(ids)
	}
	return total
}
