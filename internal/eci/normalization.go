package eci

import (
	"fmt"
	"strings"

	"toxeval/domain/confidence"
	"toxeval/domain/study"
)

// estrousConfoundedSpecimens are the female reproductive tissues whose
// weights swing with estrous cycle stage. An organ-weight finding in these
// tissues cannot support more than moderate confidence unless cycle staging
// or a confirmatory microscopic finding anchors it.
// Mammary gland is deliberately absent: it is hormone-responsive, but the
// confound this ceiling encodes is cycle-stage variability, not lactation.
var estrousConfoundedSpecimens = map[string]bool{
	"OVARY":              true,
	"OVARIES":            true,
	"UTERUS":             true,
	"UTERUS WITH CERVIX": true,
	"CERVIX UTERI":       true,
	"VAGINA":             true,
	"OVIDUCT":            true,
}

// ResolveNormalizationCaveat applies the biological-plausibility confidence
// ceiling for hormonally confounded organ contexts.
//
// Returns nil for non-reproductive organs and for a missing context: no
// caveat applies. For a confounded specimen, the ceiling on the
// treatment-related call is moderate unless estrous staging data or a
// confirmatory histopathology finding for the same organ is present.
func ResolveNormalizationCaveat(ctx *study.NormalizationContext) *confidence.NormalizationCaveat {
	if ctx == nil {
		return nil
	}
	specimen := strings.ToUpper(strings.TrimSpace(ctx.Specimen))
	if !estrousConfoundedSpecimens[specimen] {
		return nil
	}

	caveat := &confidence.NormalizationCaveat{
		Specimen:          ctx.Specimen,
		MissingStaging:    !ctx.EstrousStagingAvailable,
		HasConfirmatoryMI: len(ctx.ConfirmatoryMIFindings) > 0,
	}

	if ctx.EstrousStagingAvailable || caveat.HasConfirmatoryMI {
		anchor := "estrous staging data"
		if !ctx.EstrousStagingAvailable {
			anchor = fmt.Sprintf("confirmatory microscopic finding (%s)",
				strings.Join(ctx.ConfirmatoryMIFindings, ", "))
		}
		caveat.Rationale = fmt.Sprintf(
			"%s weight is cycle-stage sensitive, but %s anchors the finding; no confidence ceiling",
			ctx.Specimen, anchor)
		return caveat
	}

	ceiling := confidence.LevelModerate
	caveat.Triggered = true
	caveat.CeilingOnTR = &ceiling
	caveat.Rationale = fmt.Sprintf(
		"%s weight varies with estrous cycle stage; without staging data or a confirmatory microscopic finding, treatment-relatedness confidence is capped at moderate",
		ctx.Specimen)
	caveat.Consequences = confidence.Consequences{
		ConfidencePenalty: 1,
		CaveatFlags:       []string{"normalization_ceiling_estrous"},
	}
	return caveat
}
