package eci

import (
	"testing"

	"toxeval/domain/confidence"
	"toxeval/domain/study"
)

// strongSummary is an endpoint whose statistics alone would earn high
// confidence
func strongSummary() study.EndpointSummary {
	return study.EndpointSummary{
		Label:            "ALT",
		Pattern:          study.PatternMonotonicIncrease,
		MinPValue:        0.001,
		MaxEffectSize:    1.2,
		TreatmentRelated: true,
		Adverse:          true,
	}
}

func TestIntegrateConfidence_AllHigh(t *testing.T) {
	result := IntegrateConfidence(IntegrationInput{Summary: strongSummary()})

	if result.Integrated != confidence.LevelHigh {
		t.Errorf("integrated = %s, want high", result.Integrated)
	}
	if result.LimitingFactor != confidence.LimitingFactorNone {
		t.Errorf("limiting factor = %s, want None", result.LimitingFactor)
	}
}

func TestIntegrateConfidence_IntegratedNeverExceedsAnyDimension(t *testing.T) {
	penalized := confidence.NonMonotonicFlag{
		Triggered:    true,
		Consequences: confidence.Consequences{ConfidencePenalty: 1},
	}
	result := IntegrateConfidence(IntegrationInput{
		Summary:      strongSummary(),
		NonMonotonic: penalized,
	})

	for name, dim := range map[string]confidence.Level{
		"statistical":       result.Statistical,
		"biological":        result.Biological,
		"dose_response":     result.DoseResponse,
		"trend_validity":    result.TrendValidity,
		"trend_concordance": result.TrendConcordance,
	} {
		if dim.Less(result.Integrated) {
			t.Errorf("integrated %s exceeds dimension %s=%s", result.Integrated, name, dim)
		}
	}
	if result.Integrated != confidence.LevelModerate {
		t.Errorf("integrated = %s, want moderate", result.Integrated)
	}
	if result.LimitingFactor != confidence.DimensionDoseResponse {
		t.Errorf("limiting factor = %s, want dose_response", result.LimitingFactor)
	}
}

func TestIntegrateConfidence_NormalizationCeiling(t *testing.T) {
	ceiling := confidence.LevelModerate
	result := IntegrateConfidence(IntegrationInput{
		Summary: strongSummary(),
		Normalization: &confidence.NormalizationCaveat{
			Triggered:   true,
			CeilingOnTR: &ceiling,
		},
	})

	if result.Biological != confidence.LevelModerate {
		t.Errorf("biological = %s, want moderate (capped)", result.Biological)
	}
	if result.Integrated != confidence.LevelModerate {
		t.Errorf("integrated = %s, want moderate", result.Integrated)
	}
	if result.LimitingFactor != confidence.DimensionBiological {
		t.Errorf("limiting factor = %s, want biological", result.LimitingFactor)
	}
}

func TestIntegrateConfidence_UnpenalizedTrendCaveatHoldsModerate(t *testing.T) {
	// Single-criterion variance heterogeneity: no numeric penalty, but
	// trend validity still cannot stay high.
	result := IntegrateConfidence(IntegrationInput{
		Summary: strongSummary(),
		TrendValidity: confidence.TrendTestCaveat{
			Triggered:               true,
			TrendEvidenceDowngraded: true,
			Consequences:            confidence.Consequences{ConfidencePenalty: 0},
		},
	})

	if result.TrendValidity != confidence.LevelModerate {
		t.Errorf("trend validity = %s, want moderate", result.TrendValidity)
	}
	if result.LimitingFactor != confidence.DimensionTrendValidity {
		t.Errorf("limiting factor = %s, want trend_validity", result.LimitingFactor)
	}
}

func TestIntegrateConfidence_PenaltiesDoNotCompound(t *testing.T) {
	// Confirmed ambiguity: non-monotonic penalty plus normalization ceiling
	// plus a trend penalty all land on moderate. The literal
	// minimum-of-five rule yields moderate, not low.
	ceiling := confidence.LevelModerate
	result := IntegrateConfidence(IntegrationInput{
		Summary: strongSummary(),
		NonMonotonic: confidence.NonMonotonicFlag{
			Triggered:    true,
			Consequences: confidence.Consequences{ConfidencePenalty: 1},
		},
		Normalization: &confidence.NormalizationCaveat{
			Triggered:   true,
			CeilingOnTR: &ceiling,
		},
		Concordance: confidence.TrendConcordanceResult{
			Triggered:    true,
			Consequences: confidence.Consequences{ConfidencePenalty: 1},
		},
	})

	if result.Integrated != confidence.LevelModerate {
		t.Errorf("three dimensions tied at moderate must integrate to moderate, got %s", result.Integrated)
	}
	if result.LimitingFactor != confidence.DimensionBiological {
		t.Errorf("biological is first in the tie-break order, got %s", result.LimitingFactor)
	}
}

func TestIntegrateConfidence_BaselineLadder(t *testing.T) {
	tests := []struct {
		name    string
		p       float64
		effect  float64
		pattern study.Pattern
		want    confidence.Level
	}{
		{"strong p and effect", 0.005, 1.0, study.PatternMonotonicIncrease, confidence.LevelHigh},
		{"moderate p and effect", 0.03, 0.6, study.PatternThresholdIncrease, confidence.LevelModerate},
		{"weak p", 0.20, 1.0, study.PatternMonotonicIncrease, confidence.LevelLow},
		{"small effect", 0.001, 0.3, study.PatternMonotonicIncrease, confidence.LevelLow},
		{"strong stats, flat pattern", 0.001, 1.0, study.PatternFlat, confidence.LevelModerate},
		{"strong stats, inconsistent pattern", 0.001, 1.0, study.PatternInconsistent, confidence.LevelModerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := study.EndpointSummary{
				Pattern:       tt.pattern,
				MinPValue:     tt.p,
				MaxEffectSize: tt.effect,
			}
			result := IntegrateConfidence(IntegrationInput{Summary: summary})
			if result.Statistical != tt.want {
				t.Errorf("statistical baseline = %s, want %s", result.Statistical, tt.want)
			}
		})
	}
}
