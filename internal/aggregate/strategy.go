package aggregate

import "strings"

// Kind selects how a metric's raw samples collapse into one daily value.
type Kind int

const (
	KindSum Kind = iota
	KindAvg
	KindAvgMinMax
	KindLatest
	KindDuration
	KindCount
)

func (k Kind) String() string {
	switch k {
	case KindSum:
		return "sum"
	case KindAvg:
		return "avg"
	case KindAvgMinMax:
		return "avg_min_max"
	case KindLatest:
		return "latest"
	case KindDuration:
		return "duration"
	case KindCount:
		return "count"
	default:
		return "unknown"
	}
}

// Strategy describes how one metric is aggregated and presented.
type Strategy struct {
	Kind         Kind
	CanonicalKey string
	Unit         string
}

// SleepAnalysisID is the metric identifier handled by the sleep aggregator
// instead of the generic daily aggregator.
const SleepAnalysisID = "HKCategoryTypeIdentifierSleepAnalysis"

// strategyTable maps raw metric identifiers to their aggregation strategy.
// This mapping must stay stable across releases: changing a metric's kind
// reinterprets historical summaries, so any change here requires bumping
// ManifestVersion rather than silently applying retroactively.
var strategyTable = map[string]Strategy{
	// Heart
	"HKQuantityTypeIdentifierHeartRate":                {KindAvgMinMax, "heartRate", "bpm"},
	"HKQuantityTypeIdentifierRestingHeartRate":         {KindAvg, "restingHeartRate", "bpm"},
	"HKQuantityTypeIdentifierWalkingHeartRateAverage":  {KindAvg, "walkingHeartRateAverage", "bpm"},
	"HKQuantityTypeIdentifierHeartRateVariabilitySDNN": {KindAvg, "heartRateVariabilitySDNN", "ms"},
	"HKQuantityTypeIdentifierHeartRateRecoveryOneMinute": {KindAvg, "heartRateRecoveryOneMinute", "bpm"},

	// Activity
	"HKQuantityTypeIdentifierStepCount":              {KindSum, "stepCount", "count"},
	"HKQuantityTypeIdentifierDistanceWalkingRunning": {KindSum, "distanceWalkingRunning", "km"},
	"HKQuantityTypeIdentifierDistanceCycling":        {KindSum, "distanceCycling", "km"},
	"HKQuantityTypeIdentifierFlightsClimbed":         {KindSum, "flightsClimbed", "count"},
	"HKQuantityTypeIdentifierAppleExerciseTime":      {KindDuration, "appleExerciseTime", "min"},
	"HKQuantityTypeIdentifierAppleStandTime":         {KindDuration, "appleStandTime", "min"},

	// Energy
	"HKQuantityTypeIdentifierActiveEnergyBurned":    {KindSum, "activeEnergyBurned", "kcal"},
	"HKQuantityTypeIdentifierBasalEnergyBurned":     {KindSum, "basalEnergyBurned", "kcal"},
	"HKQuantityTypeIdentifierDietaryEnergyConsumed": {KindSum, "dietaryEnergyConsumed", "kcal"},
	"HKQuantityTypeIdentifierDietaryWater":          {KindSum, "dietaryWater", "mL"},

	// Respiratory
	"HKQuantityTypeIdentifierRespiratoryRate":     {KindAvg, "respiratoryRate", "count/min"},
	"HKQuantityTypeIdentifierOxygenSaturation":    {KindAvgMinMax, "oxygenSaturation", "%"},
	"HKQuantityTypeIdentifierForcedVitalCapacity": {KindLatest, "forcedVitalCapacity", "L"},

	// Body
	"HKQuantityTypeIdentifierBodyMass":           {KindLatest, "bodyMass", "kg"},
	"HKQuantityTypeIdentifierBodyMassIndex":      {KindLatest, "bodyMassIndex", "count"},
	"HKQuantityTypeIdentifierBodyFatPercentage":  {KindLatest, "bodyFatPercentage", "%"},
	"HKQuantityTypeIdentifierLeanBodyMass":       {KindLatest, "leanBodyMass", "kg"},
	"HKQuantityTypeIdentifierHeight":             {KindLatest, "height", "cm"},
	"HKQuantityTypeIdentifierWaistCircumference": {KindLatest, "waistCircumference", "cm"},

	// Sleep
	SleepAnalysisID: {KindDuration, "sleep", "min"},
	"HKQuantityTypeIdentifierAppleSleepingWristTemperature": {KindAvg, "appleSleepingWristTemperature", "degC"},

	// Vitals
	"HKQuantityTypeIdentifierBloodPressureSystolic":  {KindAvgMinMax, "bloodPressureSystolic", "mmHg"},
	"HKQuantityTypeIdentifierBloodPressureDiastolic": {KindAvgMinMax, "bloodPressureDiastolic", "mmHg"},
	"HKQuantityTypeIdentifierBodyTemperature":        {KindAvg, "bodyTemperature", "degC"},
	"HKQuantityTypeIdentifierBloodGlucose":           {KindAvgMinMax, "bloodGlucose", "mg/dL"},

	// Fitness
	"HKQuantityTypeIdentifierVO2Max":                    {KindLatest, "vo2Max", "mL/kg/min"},
	"HKQuantityTypeIdentifierSixMinuteWalkTestDistance": {KindLatest, "sixMinuteWalkTestDistance", "m"},
	"HKQuantityTypeIdentifierWalkingSpeed":              {KindAvg, "walkingSpeed", "km/h"},
	"HKQuantityTypeIdentifierWalkingStepLength":         {KindAvg, "walkingStepLength", "cm"},
	"HKQuantityTypeIdentifierAppleWalkingSteadiness":    {KindAvg, "appleWalkingSteadiness", "%"},

	// Environmental
	"HKQuantityTypeIdentifierEnvironmentalAudioExposure": {KindAvg, "environmentalAudioExposure", "dBASPL"},
	"HKQuantityTypeIdentifierHeadphoneAudioExposure":     {KindAvg, "headphoneAudioExposure", "dBASPL"},
	"HKQuantityTypeIdentifierTimeInDaylight":             {KindDuration, "timeInDaylight", "min"},
	"HKQuantityTypeIdentifierUVExposure":                 {KindAvg, "uvExposure", "count"},

	// Mindfulness
	"HKCategoryTypeIdentifierMindfulSession":      {KindCount, "mindfulSession", "count"},
	"HKCategoryTypeIdentifierHandwashingEvent":    {KindCount, "handwashingEvent", "count"},
	"HKQuantityTypeIdentifierNumberOfTimesFallen": {KindCount, "numberOfTimesFallen", "count"},
}

// identifierPrefixes are stripped when deriving a canonical key for a
// metric that has no table entry.
var identifierPrefixes = []string{
	"HKQuantityTypeIdentifier",
	"HKCategoryTypeIdentifier",
	"HKDataTypeIdentifier",
	"HKCorrelationTypeIdentifier",
}

// GetStrategy returns the aggregation strategy for a metric identifier.
// Unknown identifiers degrade to a plain average with an "unknown" unit so
// that new vendor metrics never fail a build.
func GetStrategy(metricID string) Strategy {
	if s, ok := strategyTable[metricID]; ok {
		return s
	}
	return Strategy{Kind: KindAvg, CanonicalKey: CanonicalKey(metricID), Unit: "unknown"}
}

// CanonicalKey derives the short summary key for a metric identifier:
// the table entry if present, otherwise the identifier with any namespacing
// prefix stripped and the first letter lowercased.
func CanonicalKey(metricID string) string {
	if s, ok := strategyTable[metricID]; ok {
		return s.CanonicalKey
	}
	key := metricID
	for _, prefix := range identifierPrefixes {
		if strings.HasPrefix(key, prefix) {
			key = strings.TrimPrefix(key, prefix)
			break
		}
	}
	if key == "" {
		return metricID
	}
	return strings.ToLower(key[:1]) + key[1:]
}

// MetricIDForKey resolves a canonical key back to its raw metric
// identifier. Unknown keys are returned unchanged, so callers can pass
// either form through the query boundary.
func MetricIDForKey(key string) string {
	for id, s := range strategyTable {
		if s.CanonicalKey == key {
			return id
		}
	}
	return key
}

// KnownMetricIDs returns all identifiers with a table entry.
func KnownMetricIDs() []string {
	ids := make([]string, 0, len(strategyTable))
	for id := range strategyTable {
		ids = append(ids, id)
	}
	return ids
}
