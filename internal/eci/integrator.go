package eci

import (
	"math"

	"toxeval/domain/confidence"
	"toxeval/domain/study"
)

// IntegrationInput carries the endpoint summary and the four detector and
// resolver outputs into the confidence integration
type IntegrationInput struct {
	Summary       study.EndpointSummary
	NonMonotonic  confidence.NonMonotonicFlag
	TrendValidity confidence.TrendTestCaveat
	Concordance   confidence.TrendConcordanceResult
	Normalization *confidence.NormalizationCaveat
}

// IntegrateConfidence combines five confidence dimensions into one
// integrated rating and names the limiting factor.
//
// Each dimension starts from the statistical baseline and is then adjusted
// by its corresponding flag: biological is capped by the normalization
// ceiling, dose-response is downgraded by the non-monotonic penalty, trend
// validity by the variance-heterogeneity penalty (held to moderate even for
// the unpenalized single-criterion caveat), trend concordance by the
// discordance penalty. The integrated level is the minimum of the five;
// penalties on separate dimensions do not compound below that minimum.
func IntegrateConfidence(in IntegrationInput) confidence.IntegratedConfidence {
	baseline := statisticalBaseline(in.Summary)

	biological := baseline
	if in.Normalization != nil && in.Normalization.Triggered && in.Normalization.CeilingOnTR != nil {
		biological = biological.AtMost(*in.Normalization.CeilingOnTR)
	}

	doseResponse := baseline.Downgrade(in.NonMonotonic.Consequences.ConfidencePenalty)

	trendValidity := baseline.Downgrade(in.TrendValidity.Consequences.ConfidencePenalty)
	if in.TrendValidity.TrendEvidenceDowngraded {
		trendValidity = trendValidity.AtMost(confidence.LevelModerate)
	}

	trendConcordance := baseline.Downgrade(in.Concordance.Consequences.ConfidencePenalty)

	integrated := confidence.MinLevel(baseline, biological, doseResponse, trendValidity, trendConcordance)

	return confidence.IntegratedConfidence{
		Statistical:      baseline,
		Biological:       biological,
		DoseResponse:     doseResponse,
		TrendValidity:    trendValidity,
		TrendConcordance: trendConcordance,
		Integrated:       integrated,
		LimitingFactor:   limitingFactor(baseline, biological, doseResponse, trendValidity, trendConcordance, integrated),
	}
}

// statisticalBaseline seeds the confidence dimensions from p-value strength,
// effect-size magnitude and pattern informativeness
func statisticalBaseline(summary study.EndpointSummary) confidence.Level {
	effect := math.Abs(summary.MaxEffectSize)

	level := confidence.LevelLow
	if summary.MinPValue < BASELINE_MODERATE_P && effect >= BASELINE_MODERATE_D {
		level = confidence.LevelModerate
	}
	if summary.MinPValue < BASELINE_HIGH_P && effect >= BASELINE_HIGH_D {
		level = confidence.LevelHigh
	}

	// A flat or inconsistent declared pattern cannot carry full statistical
	// weight no matter how small the p-value.
	if !summary.Pattern.IsInformative() {
		level = level.Downgrade(1)
	}

	return level
}

// limitingFactor names the first dimension, in priority order, that equals
// the integrated level. All five at high means nothing limited the rating.
func limitingFactor(statistical, biological, doseResponse, trendValidity, trendConcordance, integrated confidence.Level) string {
	if integrated == confidence.LevelHigh {
		return confidence.LimitingFactorNone
	}
	ordered := []struct {
		name  string
		level confidence.Level
	}{
		{confidence.DimensionBiological, biological},
		{confidence.DimensionDoseResponse, doseResponse},
		{confidence.DimensionTrendValidity, trendValidity},
		{confidence.DimensionStatistical, statistical},
		{confidence.DimensionTrendConcordance, trendConcordance},
	}
	for _, dim := range ordered {
		if dim.level == integrated {
			return dim.name
		}
	}
	return confidence.LimitingFactorNone
}
