package eci

import (
	"fmt"

	"toxeval/domain/confidence"
	"toxeval/domain/study"
)

// CheckTrendConcordance flags disagreement between the Jonckheere-Terpstra
// trend test and the Williams step-down test.
//
// JT significant with Williams silent is the dangerous false-positive
// direction (JT is the more permissive test) and carries a one-step penalty.
// Williams significant with JT silent is recorded as discordant but not
// triggered: Williams is conservative, so that direction is not alarming.
func CheckTrendConcordance(trendP *float64, williams *study.WilliamsTrendResult) confidence.TrendConcordanceResult {
	result := confidence.TrendConcordanceResult{
		Outcome:   confidence.ConcordanceNotEvaluable,
		Rationale: "not evaluated",
	}

	if trendP == nil {
		result.Rationale = "no Jonckheere-Terpstra p-value supplied; concordance not evaluable"
		return result
	}
	stepDown := williams.HighestDoseStepDown()
	if stepDown == nil {
		result.Rationale = "no Williams step-down result supplied; concordance not evaluable"
		return result
	}

	result.Evaluated = true
	result.JTSignificant = *trendP < TREND_ALPHA
	result.WilliamsSignificant = stepDown.Significant

	switch {
	case result.JTSignificant == result.WilliamsSignificant:
		result.Outcome = confidence.ConcordanceConcordant
		agreement := "both non-significant"
		if result.JTSignificant {
			agreement = "both significant"
		}
		result.Rationale = fmt.Sprintf("Jonckheere-Terpstra and Williams agree (%s)", agreement)
	case result.JTSignificant:
		result.Outcome = confidence.ConcordanceJTOnly
		result.Triggered = true
		result.Rationale = fmt.Sprintf(
			"Jonckheere-Terpstra significant (p=%.4f) but Williams step-down is not; possible trend false positive",
			*trendP)
		result.Consequences = confidence.Consequences{
			ConfidencePenalty: 1,
			CaveatFlags:       []string{"trend_discordance_jt_only"},
		}
	default:
		result.Outcome = confidence.ConcordanceWilliamsOnly
		result.Rationale = "Williams step-down significant but Jonckheere-Terpstra is not; conservative-test-only signal, not penalized"
	}

	return result
}
