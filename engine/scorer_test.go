package engine

import (
	"reflect"
	"testing"

	"github.com/rafeeqops/rafeeq/model"
)

func TestAssess(t *testing.T) {
	tests := []struct {
		name        string
		hr, spo2    int
		temp        float64
		fall, help  bool
		wantScore   int
		wantEmotion model.Emotion
		wantFactors []string
	}{
		{
			"all normal",
			75, 97, 36.8, false, false,
			0, model.EmotionStable, nil,
		},
		{
			"critical heart rate only",
			155, 96, 37.0, false, false,
			30, model.EmotionModerateStress, []string{model.FactorElevatedHR},
		},
		{
			"fall with mildly raised vitals",
			120, 95, 37.1, true, false,
			55, model.EmotionHighAnxiety, []string{model.FactorRaisedHR, model.FactorFallTrauma},
		},
		{
			"help request with reduced oxygen",
			105, 94, 37.3, false, true,
			45, model.EmotionHighAnxiety, []string{model.FactorReducedOxygen, model.FactorDistressSignal},
		},
		{
			"raised not elevated heart rate boundary",
			130, 97, 37.0, false, false,
			15, model.EmotionMildDiscomfort, []string{model.FactorRaisedHR},
		},
		{
			"hr boundary 110 does not fire",
			110, 97, 37.0, false, false,
			0, model.EmotionStable, nil,
		},
		{
			"low oxygen boundary",
			75, 91, 37.0, false, false,
			25, model.EmotionModerateStress, []string{model.FactorLowOxygen},
		},
		{
			"reduced oxygen boundary 92",
			75, 92, 37.0, false, false,
			10, model.EmotionMildDiscomfort, []string{model.FactorReducedOxygen},
		},
		{
			"spo2 95 does not fire",
			75, 95, 37.0, false, false,
			0, model.EmotionStable, nil,
		},
		{
			"high temperature",
			75, 97, 38.1, false, false,
			15, model.EmotionMildDiscomfort, []string{model.FactorTempAbnormal},
		},
		{
			"low temperature",
			75, 97, 35.9, false, false,
			15, model.EmotionMildDiscomfort, []string{model.FactorTempAbnormal},
		},
		{
			"everything fires",
			150, 85, 39.5, true, true,
			145, model.EmotionCriticalDistress,
			[]string{model.FactorElevatedHR, model.FactorLowOxygen, model.FactorTempAbnormal, model.FactorFallTrauma, model.FactorDistressSignal},
		},
		{
			"out-of-range inputs scored as given",
			-10, 200, -5.0, false, false,
			15, model.EmotionMildDiscomfort, []string{model.FactorTempAbnormal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assess(tt.hr, tt.spo2, tt.temp, tt.fall, tt.help)
			if got.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.Emotion != tt.wantEmotion {
				t.Errorf("emotion = %v, want %v", got.Emotion, tt.wantEmotion)
			}
			if !reflect.DeepEqual(got.Factors, tt.wantFactors) {
				t.Errorf("factors = %v, want %v", got.Factors, tt.wantFactors)
			}
		})
	}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  model.Emotion
	}{
		{0, model.EmotionStable},
		{9, model.EmotionStable},
		{10, model.EmotionMildDiscomfort},
		{24, model.EmotionMildDiscomfort},
		{25, model.EmotionModerateStress},
		{39, model.EmotionModerateStress},
		{40, model.EmotionHighAnxiety},
		{59, model.EmotionHighAnxiety},
		{60, model.EmotionCriticalDistress},
		{145, model.EmotionCriticalDistress},
	}
	for _, tt := range tests {
		if got := classify(tt.score); got != tt.want {
			t.Errorf("classify(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestAssessDeterministic(t *testing.T) {
	a := Assess(155, 88, 39.0, true, true)
	b := Assess(155, 88, 39.0, true, true)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated assessment differs: %+v vs %+v", a, b)
	}
}
