package eci

import (
	"fmt"
	"math"

	"toxeval/domain/confidence"
	"toxeval/domain/study"
)

// CheckTrendTestValidity flags variance heterogeneity that makes a trend
// p-value suspect.
//
// Two independent criteria: max(treated SD)/control SD and
// max(treated CV)/control CV, each against its own ~2x threshold. One
// criterion firing downgrades trend evidence without a numeric penalty;
// both firing adds a one-step penalty on top of the downgrade.
func CheckTrendTestValidity(groups []study.GroupStat, trendP *float64) confidence.TrendTestCaveat {
	caveat := confidence.TrendTestCaveat{
		Rationale: "not evaluated",
	}

	if trendP == nil {
		caveat.Rationale = "no trend p-value supplied; nothing to invalidate"
		return caveat
	}
	if len(groups) < 2 {
		caveat.Rationale = "no treated groups; nothing to compare against control"
		return caveat
	}

	control := groups[0]

	maxSD := 0.0
	maxCV := 0.0
	for _, g := range groups[1:] {
		if g.SD > maxSD {
			maxSD = g.SD
		}
		if cv, ok := coefficientOfVariation(g); ok && cv > maxCV {
			maxCV = cv
		}
	}

	if control.SD > 0 {
		caveat.SDRatio = maxSD / control.SD
		caveat.SDCriterionFired = caveat.SDRatio > SD_RATIO_THRESHOLD
	}
	if controlCV, ok := coefficientOfVariation(control); ok && controlCV > 0 {
		caveat.CVRatio = maxCV / controlCV
		caveat.CVCriterionFired = caveat.CVRatio > CV_RATIO_THRESHOLD
	}

	switch {
	case caveat.SDCriterionFired && caveat.CVCriterionFired:
		caveat.Triggered = true
		caveat.TrendEvidenceDowngraded = true
		caveat.Rationale = fmt.Sprintf(
			"variance heterogeneity on both criteria (SD ratio %.2f, CV ratio %.2f); trend p-value unreliable",
			caveat.SDRatio, caveat.CVRatio)
		caveat.Consequences = confidence.Consequences{
			ConfidencePenalty: 1,
			CaveatFlags:       []string{"trend_validity_sd_ratio", "trend_validity_cv_ratio"},
		}
	case caveat.SDCriterionFired || caveat.CVCriterionFired:
		criterion := "SD ratio"
		value := caveat.SDRatio
		flagName := "trend_validity_sd_ratio"
		if caveat.CVCriterionFired {
			criterion = "CV ratio"
			value = caveat.CVRatio
			flagName = "trend_validity_cv_ratio"
		}
		caveat.Triggered = true
		caveat.TrendEvidenceDowngraded = true
		// Evidence is suspect but not penalized numerically; the
		// integrator still holds trend validity to moderate.
		caveat.Rationale = fmt.Sprintf(
			"variance heterogeneity on one criterion (%s %.2f); trend evidence downgraded", criterion, value)
		caveat.Consequences = confidence.Consequences{
			ConfidencePenalty: 0,
			CaveatFlags:       []string{flagName},
		}
	default:
		caveat.Rationale = fmt.Sprintf(
			"variance homogeneous across groups (SD ratio %.2f, CV ratio %.2f)",
			caveat.SDRatio, caveat.CVRatio)
	}

	return caveat
}

// coefficientOfVariation returns SD/|mean|, false when the mean is zero
func coefficientOfVariation(g study.GroupStat) (float64, bool) {
	if g.Mean == 0 {
		return 0, false
	}
	return g.SD / math.Abs(g.Mean), true
}
