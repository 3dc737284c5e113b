package eci

import (
	"fmt"

	"toxeval/domain/confidence"
	"toxeval/domain/noael"
)

// ScoreInput carries everything the contribution scorer looks at
type ScoreInput struct {
	Integrated       confidence.IntegratedConfidence
	NonMonotonic     confidence.NonMonotonicFlag
	Normalization    *confidence.NormalizationCaveat
	TrendValidity    confidence.TrendTestCaveat
	Concordance      confidence.TrendConcordanceResult
	TreatmentRelated bool
	Adverse          bool
}

// ComputeNOAELContribution converts an endpoint's integrated confidence and
// flags into a discrete evidentiary weight.
//
// Checked in order: a finding that is not treatment-related or not adverse
// is excluded outright; an inconsistent dose-response is never allowed to
// independently set a NOAEL, irrespective of any other confidence dimension;
// otherwise the weight follows the integrated level and the count of active
// caveats.
func ComputeNOAELContribution(in ScoreInput) noael.Contribution {
	caveats := collectCaveats(in)

	if !in.TreatmentRelated || !in.Adverse {
		return noael.Contribution{
			Weight:  noael.WeightExcluded,
			Label:   noael.LabelExcluded,
			Caveats: caveats,
		}
	}

	if in.NonMonotonic.Triggered {
		return contribution(noael.WeightSupporting, noael.LabelSupporting, caveats)
	}

	activeCaveats := 0
	if in.Normalization != nil && in.Normalization.Triggered {
		activeCaveats++
	}
	if in.TrendValidity.Triggered {
		activeCaveats++
	}
	if in.Concordance.Triggered {
		activeCaveats++
	}

	switch in.Integrated.Integrated {
	case confidence.LevelHigh:
		switch activeCaveats {
		case 0:
			return contribution(noael.WeightDetermining, noael.LabelDetermining, caveats)
		case 1:
			return contribution(noael.WeightContributing, noael.LabelContributing, caveats)
		default:
			return contribution(noael.WeightSupporting, noael.LabelSupporting, caveats)
		}
	case confidence.LevelModerate:
		if activeCaveats == 0 {
			return contribution(noael.WeightContributing, noael.LabelContributing, caveats)
		}
		return contribution(noael.WeightSupporting, noael.LabelSupporting, caveats)
	default:
		return contribution(noael.WeightSupporting, noael.LabelSupporting, caveats)
	}
}

// contribution finalizes the derived fields of a contribution
func contribution(weight float64, label noael.ContributionLabel, caveats []string) noael.Contribution {
	return noael.Contribution{
		Weight:                weight,
		Label:                 label,
		Caveats:               caveats,
		CanSetNOAEL:           weight >= noael.WeightContributing,
		RequiresCorroboration: weight == noael.WeightContributing,
	}
}

// collectCaveats renders a human-readable string for every triggered flag,
// whether or not it carried a numeric penalty
func collectCaveats(in ScoreInput) []string {
	var caveats []string
	if in.NonMonotonic.Triggered {
		caveats = append(caveats, fmt.Sprintf("non-monotonic dose-response: %s", in.NonMonotonic.Rationale))
	}
	if in.Normalization != nil && in.Normalization.Triggered {
		caveats = append(caveats, fmt.Sprintf("normalization ceiling: %s", in.Normalization.Rationale))
	}
	if in.TrendValidity.Triggered {
		caveats = append(caveats, fmt.Sprintf("trend test validity: %s", in.TrendValidity.Rationale))
	}
	if in.Concordance.Triggered {
		caveats = append(caveats, fmt.Sprintf("trend discordance: %s", in.Concordance.Rationale))
	}
	return caveats
}
