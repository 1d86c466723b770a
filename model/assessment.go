package model

// Emotion is the distress classification derived from a reading.
// Ordered: higher values are worse.
type Emotion int

const (
	EmotionStable Emotion = iota
	EmotionMildDiscomfort
	EmotionModerateStress
	EmotionHighAnxiety
	EmotionCriticalDistress
)

var emotionNames = []string{
	"STABLE",
	"MILD DISCOMFORT",
	"MODERATE STRESS",
	"HIGH ANXIETY",
	"CRITICAL DISTRESS",
}

// emotionColors are display hints only; they never drive behavior.
var emotionColors = []string{
	"#00C853",
	"#FBC02D",
	"#FFA000",
	"#FF6D00",
	"#D50000",
}

func (e Emotion) String() string {
	if e < 0 || int(e) >= len(emotionNames) {
		return "UNKNOWN"
	}
	return emotionNames[e]
}

// Color returns the hex display color associated with the classification.
func (e Emotion) Color() string {
	if e < 0 || int(e) >= len(emotionColors) {
		return emotionColors[0]
	}
	return emotionColors[e]
}

// Factor tags attached to an assessment, one per scoring rule that fired.
const (
	FactorElevatedHR     = "elevated_hr"
	FactorRaisedHR       = "raised_hr"
	FactorLowOxygen      = "low_oxygen"
	FactorReducedOxygen  = "reduced_oxygen"
	FactorTempAbnormal   = "temp_abnormal"
	FactorFallTrauma     = "fall_trauma"
	FactorDistressSignal = "distress_signal"
)

// DistressAssessment is the scorer output for one reading. Derived data:
// it is persisted only as columns of the reading that produced it.
type DistressAssessment struct {
	Score   int      `json:"score"`
	Emotion Emotion  `json:"emotion"`
	Factors []string `json:"factors,omitempty"`
}

// HasFactor reports whether the given rule tag contributed to the score.
func (a DistressAssessment) HasFactor(tag string) bool {
	for _, f := range a.Factors {
		if f == tag {
			return true
		}
	}
	return false
}
