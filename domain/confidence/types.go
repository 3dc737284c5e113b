package confidence

import (
	"toxeval/domain/study"
)

// ============================================================================
// FLAG CONSEQUENCES (shared by every detector output)
// ============================================================================

// Consequences records what a triggered flag does to the endpoint's
// downstream interpretation.
// INVARIANT: ConfidencePenalty is 0 or 1 (one step down the Level order).
type Consequences struct {
	ReclassifiedPattern study.Pattern `json:"reclassified_pattern,omitempty"`
	ConfidencePenalty   int           `json:"confidence_penalty"`
	CaveatFlags         []string      `json:"caveat_flags,omitempty"`
}

// ============================================================================
// DETECTOR / RESOLVER OUTPUTS
// ============================================================================

// NonMonotonicFlag is the output of the dose-response reversal detector
type NonMonotonicFlag struct {
	Triggered          bool         `json:"triggered"`
	PeakDoseLevel      int          `json:"peak_dose_level"`
	HighestDoseLevel   int          `json:"highest_dose_level"`
	PeakEffect         float64      `json:"peak_effect"`
	HighestEffect      float64      `json:"highest_effect"`
	ReversalRatio      float64      `json:"reversal_ratio"` // 0 signals complete reversal
	PeakSignificant    bool         `json:"peak_significant"`
	HighestSignificant bool         `json:"highest_significant"`
	Rationale          string       `json:"rationale"`
	Consequences       Consequences `json:"consequences"`
}

// TrendTestCaveat is the output of the variance-heterogeneity check that can
// invalidate a trend-test p-value
type TrendTestCaveat struct {
	Triggered               bool         `json:"triggered"`
	SDRatio                 float64      `json:"sd_ratio"`
	CVRatio                 float64      `json:"cv_ratio"`
	SDCriterionFired        bool         `json:"sd_criterion_fired"`
	CVCriterionFired        bool         `json:"cv_criterion_fired"`
	TrendEvidenceDowngraded bool         `json:"trend_evidence_downgraded"`
	Rationale               string       `json:"rationale"`
	Consequences            Consequences `json:"consequences"`
}

// ConcordanceOutcome classifies the agreement between two trend tests
type ConcordanceOutcome string

const (
	ConcordanceConcordant   ConcordanceOutcome = "concordant"
	ConcordanceJTOnly       ConcordanceOutcome = "jt_only"
	ConcordanceWilliamsOnly ConcordanceOutcome = "williams_only"
	ConcordanceNotEvaluable ConcordanceOutcome = "not_evaluable"
)

// TrendConcordanceResult is the output of the JT-vs-Williams agreement check.
// A williams_only discordance is recorded but not triggered: Williams is the
// conservative test, so its solo significance is not the alarming direction.
type TrendConcordanceResult struct {
	Triggered           bool               `json:"triggered"`
	Evaluated           bool               `json:"evaluated"`
	Outcome             ConcordanceOutcome `json:"outcome"`
	JTSignificant       bool               `json:"jt_significant"`
	WilliamsSignificant bool               `json:"williams_significant"`
	Rationale           string             `json:"rationale"`
	Consequences        Consequences       `json:"consequences"`
}

// NormalizationCaveat is the output of the biological-plausibility resolver
// for hormonally confounded organ contexts. CeilingOnTR, when set, caps the
// integrated confidence of the endpoint's treatment-related call.
type NormalizationCaveat struct {
	Triggered         bool         `json:"triggered"`
	Specimen          string       `json:"specimen"`
	CeilingOnTR       *Level       `json:"ceiling_on_tr,omitempty"`
	MissingStaging    bool         `json:"missing_staging"`
	HasConfirmatoryMI bool         `json:"has_confirmatory_mi"`
	Rationale         string       `json:"rationale"`
	Consequences      Consequences `json:"consequences"`
}

// ============================================================================
// INTEGRATED CONFIDENCE
// ============================================================================

// Dimension names reported as the limiting factor, in priority order
const (
	DimensionBiological       = "biological"
	DimensionDoseResponse     = "dose_response"
	DimensionTrendValidity    = "trend_validity"
	DimensionStatistical      = "statistical"
	DimensionTrendConcordance = "trend_concordance"
	LimitingFactorNone        = "None"
)

// IntegratedConfidence combines the five confidence dimensions into one
// rating plus an explanation of which dimension limited it.
// INVARIANT: Integrated is never higher than any individual dimension.
type IntegratedConfidence struct {
	Statistical      Level  `json:"statistical"`
	Biological       Level  `json:"biological"`
	DoseResponse     Level  `json:"dose_response"`
	TrendValidity    Level  `json:"trend_validity"`
	TrendConcordance Level  `json:"trend_concordance"`
	Integrated       Level  `json:"integrated"`
	LimitingFactor   string `json:"limiting_factor"`
}
