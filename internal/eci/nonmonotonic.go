package eci

import (
	"fmt"
	"math"

	"toxeval/domain/confidence"
	"toxeval/domain/study"
)

// CheckNonMonotonic flags a dose-response reversal above a peak response.
//
// It acts only on threshold-type patterns. It fires when the response peaks
// below the top dose, the top-dose response has fallen below half the peak,
// the peak is significant on the adjusted pairwise comparison, and the top
// dose is not. A triggered flag reclassifies the pattern to inconsistent and
// carries a one-step confidence penalty on the dose-response dimension.
func CheckNonMonotonic(groups []study.GroupStat, pairwise []study.PairwiseResult, pattern study.Pattern) confidence.NonMonotonicFlag {
	flag := confidence.NonMonotonicFlag{
		Rationale: "not evaluated",
	}

	if !pattern.IsThreshold() {
		flag.Rationale = fmt.Sprintf("pattern %q is not a threshold pattern; reversal detection does not apply", pattern)
		return flag
	}
	if len(groups) < 3 {
		// Control plus at least two treated groups are needed to see a
		// peak below the top dose.
		flag.Rationale = "fewer than two treated groups; reversal cannot be observed"
		return flag
	}

	controlMean := groups[0].Mean

	peakLevel := 0
	peakEffect := -1.0
	for _, g := range groups[1:] {
		effect := math.Abs(g.Mean - controlMean)
		if effect > peakEffect {
			peakEffect = effect
			peakLevel = g.DoseLevel
		}
	}

	highest := groups[len(groups)-1]
	highestEffect := math.Abs(highest.Mean - controlMean)

	flag.PeakDoseLevel = peakLevel
	flag.HighestDoseLevel = highest.DoseLevel
	flag.PeakEffect = peakEffect
	flag.HighestEffect = highestEffect

	if peakLevel == highest.DoseLevel {
		flag.ReversalRatio = 1.0
		flag.Rationale = "response peaks at the highest dose; no reversal"
		return flag
	}
	if peakEffect == 0 {
		// All treated means equal control; nothing to reverse from.
		flag.ReversalRatio = 1.0
		flag.Rationale = "no treated group deviates from control"
		return flag
	}

	flag.ReversalRatio = highestEffect / peakEffect
	flag.PeakSignificant = significantAt(pairwise, peakLevel)
	flag.HighestSignificant = significantAt(pairwise, highest.DoseLevel)

	switch {
	case flag.ReversalRatio >= REVERSAL_RATIO_THRESHOLD:
		flag.Rationale = fmt.Sprintf("top-dose response retains %.0f%% of the peak effect; below-threshold reversal",
			flag.ReversalRatio*100)
	case !flag.PeakSignificant:
		flag.Rationale = fmt.Sprintf("peak response at dose level %d is not significant (adjusted p >= %.2f); reversal not established",
			peakLevel, PAIRWISE_ALPHA)
	case flag.HighestSignificant:
		// A true, sustained threshold effect still significant at the top
		// dose must not be flagged.
		flag.Rationale = "top-dose response remains significant; effect is sustained, not reversed"
	default:
		flag.Triggered = true
		reversal := "partial"
		if flag.ReversalRatio == 0 {
			reversal = "complete"
		}
		flag.Rationale = fmt.Sprintf(
			"%s reversal above dose level %d: top-dose effect is %.0f%% of peak and no longer significant",
			reversal, peakLevel, flag.ReversalRatio*100)
		flag.Consequences = confidence.Consequences{
			ReclassifiedPattern: study.PatternInconsistent,
			ConfidencePenalty:   1,
			CaveatFlags:         []string{"non_monotonic_reversal"},
		}
	}

	return flag
}

// significantAt reports whether the adjusted pairwise p-value at a dose
// level is below PAIRWISE_ALPHA. A missing comparison counts as not
// significant.
func significantAt(pairwise []study.PairwiseResult, doseLevel int) bool {
	pw := study.FindPairwise(pairwise, doseLevel)
	if pw == nil {
		return false
	}
	return pw.PValueAdj < PAIRWISE_ALPHA
}
