package eci

import (
	"toxeval/domain/confidence"
	"toxeval/domain/noael"
	"toxeval/domain/study"

	"toxeval/internal/errors"
)

// EndpointEvaluation is the complete confidence pipeline output for one
// (endpoint, sex) pair
type EndpointEvaluation struct {
	Summary       study.EndpointSummary            `json:"summary"`
	Sex           study.Sex                        `json:"sex"`
	Pattern       study.Pattern                    `json:"pattern"` // post-reclassification
	NonMonotonic  confidence.NonMonotonicFlag      `json:"non_monotonic"`
	TrendValidity confidence.TrendTestCaveat       `json:"trend_validity"`
	Concordance   confidence.TrendConcordanceResult `json:"concordance"`
	Normalization *confidence.NormalizationCaveat  `json:"normalization,omitempty"`
	Confidence    confidence.IntegratedConfidence  `json:"confidence"`
	Contribution  noael.Contribution               `json:"contribution"`
}

// EvaluateEndpoint runs the four detectors, the integrator and the scorer
// over one endpoint's dose-response summaries. Pure and deterministic:
// identical inputs always produce identical output.
//
// Missing optional inputs (no Williams result, no trend p-value, no
// normalization context) degrade to not-triggered; a malformed dose-group
// series is the one fail-fast error.
func EvaluateEndpoint(data study.EndpointData) (*EndpointEvaluation, error) {
	if err := study.ValidateGroups(data.Groups); err != nil {
		return nil, errors.StudyMalformed("endpoint "+data.Summary.Label, err)
	}

	nonMonotonic := CheckNonMonotonic(data.Groups, data.Pairwise, data.Summary.Pattern)
	trendValidity := CheckTrendTestValidity(data.Groups, data.TrendPValue)
	concordance := CheckTrendConcordance(data.TrendPValue, data.Williams)
	normalization := ResolveNormalizationCaveat(data.Normalization)

	integrated := IntegrateConfidence(IntegrationInput{
		Summary:       data.Summary,
		NonMonotonic:  nonMonotonic,
		TrendValidity: trendValidity,
		Concordance:   concordance,
		Normalization: normalization,
	})

	contribution := ComputeNOAELContribution(ScoreInput{
		Integrated:       integrated,
		NonMonotonic:     nonMonotonic,
		Normalization:    normalization,
		TrendValidity:    trendValidity,
		Concordance:      concordance,
		TreatmentRelated: data.Summary.TreatmentRelated,
		Adverse:          data.Summary.Adverse,
	})

	pattern := data.Summary.Pattern
	if nonMonotonic.Triggered && nonMonotonic.Consequences.ReclassifiedPattern != "" {
		pattern = nonMonotonic.Consequences.ReclassifiedPattern
	}

	return &EndpointEvaluation{
		Summary:       data.Summary,
		Sex:           data.Sex,
		Pattern:       pattern,
		NonMonotonic:  nonMonotonic,
		TrendValidity: trendValidity,
		Concordance:   concordance,
		Normalization: normalization,
		Confidence:    integrated,
		Contribution:  contribution,
	}, nil
}

// OnsetDoseLevel returns the lowest dose level with a significant adjusted
// pairwise comparison, or 0 when no dose reaches significance. Used by the
// caller to place the endpoint on the dose axis for NOAEL derivation.
func OnsetDoseLevel(pairwise []study.PairwiseResult) int {
	onset := 0
	for _, pw := range pairwise {
		if pw.PValueAdj < PAIRWISE_ALPHA {
			if onset == 0 || pw.DoseLevel < onset {
				onset = pw.DoseLevel
			}
		}
	}
	return onset
}
