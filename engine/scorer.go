// Package engine implements the alert decision core: the distress scorer,
// the escalation policy with its cooldown gate, the alert dispatcher, and
// the monitoring loop that ties them to the sensor source and the ledger.
package engine

import "github.com/rafeeqops/rafeeq/model"

// Scoring rule points. Rules are independent and additive; the order they
// are evaluated in never changes the result.
const (
	pointsElevatedHR     = 30 // heart rate > 130
	pointsRaisedHR       = 15 // 110 < heart rate <= 130
	pointsLowOxygen      = 25 // spo2 < 92
	pointsReducedOxygen  = 10 // 92 <= spo2 < 95
	pointsTempAbnormal   = 15 // temp > 38 or < 36
	pointsFallTrauma     = 40
	pointsDistressSignal = 35
)

// Classification bands, checked descending; boundaries are inclusive.
const (
	scoreCriticalDistress = 60
	scoreHighAnxiety      = 40
	scoreModerateStress   = 25
	scoreMildDiscomfort   = 10
)

// Assess derives a distress assessment from raw vitals and event flags.
// Pure and deterministic: no I/O, no clock, no shared state. Out-of-range
// inputs (negative rates, impossible temperatures) are scored as given;
// validation is the caller's job.
func Assess(heartRate, spo2 int, temperature float64, fallDetected, helpPressed bool) model.DistressAssessment {
	var score int
	var factors []string

	switch {
	case heartRate > 130:
		score += pointsElevatedHR
		factors = append(factors, model.FactorElevatedHR)
	case heartRate > 110:
		score += pointsRaisedHR
		factors = append(factors, model.FactorRaisedHR)
	}

	switch {
	case spo2 < 92:
		score += pointsLowOxygen
		factors = append(factors, model.FactorLowOxygen)
	case spo2 < 95:
		score += pointsReducedOxygen
		factors = append(factors, model.FactorReducedOxygen)
	}

	if temperature > 38 || temperature < 36 {
		score += pointsTempAbnormal
		factors = append(factors, model.FactorTempAbnormal)
	}

	if fallDetected {
		score += pointsFallTrauma
		factors = append(factors, model.FactorFallTrauma)
	}
	if helpPressed {
		score += pointsDistressSignal
		factors = append(factors, model.FactorDistressSignal)
	}

	return model.DistressAssessment{
		Score:   score,
		Emotion: classify(score),
		Factors: factors,
	}
}

// AssessReading scores a full reading, promoting its event flags.
func AssessReading(r model.VitalReading) model.DistressAssessment {
	return Assess(r.HeartRate, r.SpO2, r.Temperature, r.Fall, r.Help)
}

// classify maps a cumulative score to its emotion band. Highest band wins.
func classify(score int) model.Emotion {
	switch {
	case score >= scoreCriticalDistress:
		return model.EmotionCriticalDistress
	case score >= scoreHighAnxiety:
		return model.EmotionHighAnxiety
	case score >= scoreModerateStress:
		return model.EmotionModerateStress
	case score >= scoreMildDiscomfort:
		return model.EmotionMildDiscomfort
	default:
		return model.EmotionStable
	}
}
