package study

import (
	"fmt"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// Sex identifies the animal sex an endpoint summary applies to
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// Direction describes which way a treated group moves relative to control
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// Pattern classifies how response changes across ascending doses
type Pattern string

const (
	PatternMonotonicIncrease Pattern = "monotonic_increase"
	PatternMonotonicDecrease Pattern = "monotonic_decrease"
	PatternThresholdIncrease Pattern = "threshold_increase"
	PatternThresholdDecrease Pattern = "threshold_decrease"
	PatternNonMonotonic      Pattern = "non_monotonic"
	PatternInconsistent      Pattern = "inconsistent"
	PatternFlat              Pattern = "flat"
)

// IsThreshold reports whether the pattern is one of the threshold-type
// classifications the non-monotonic detector acts on
func (p Pattern) IsThreshold() bool {
	return p == PatternThresholdIncrease || p == PatternThresholdDecrease
}

// IsInformative reports whether the pattern carries dose-response information
// usable as statistical evidence (flat and inconsistent patterns do not)
func (p Pattern) IsInformative() bool {
	return p != PatternFlat && p != PatternInconsistent && p != ""
}

// GroupStat summarizes one dose group for one endpoint/sex.
// INVARIANTS:
// - Groups are ordered by ascending DoseLevel
// - DoseLevel 0 is always the control group
// - N > 0
type GroupStat struct {
	DoseLevel int     `json:"dose_level"`
	N         int     `json:"n"`
	Mean      float64 `json:"mean"`
	SD        float64 `json:"sd"`
	Median    float64 `json:"median"`
}

// PairwiseResult is one treated-vs-control comparison.
// One per non-control dose group; Statistic and CohensD are nil when the
// upstream test could not produce them (e.g. zero variance).
type PairwiseResult struct {
	DoseLevel int      `json:"dose_level"`
	PValue    float64  `json:"p_value"`
	PValueAdj float64  `json:"p_value_adj"`
	Statistic *float64 `json:"statistic,omitempty"`
	CohensD   *float64 `json:"cohens_d,omitempty"`
}

// WilliamsStepDown is one row of a Williams step-down sequence, highest
// dose first removed last (rows are ordered by ascending dose)
type WilliamsStepDown struct {
	DoseLabel     string  `json:"dose_label"`
	TestStatistic float64 `json:"test_statistic"`
	CriticalValue float64 `json:"critical_value"`
	PValue        float64 `json:"p_value"`
	Significant   bool    `json:"significant"`
}

// WilliamsTrendResult is the externally computed Williams trend test output
type WilliamsTrendResult struct {
	Direction            Direction          `json:"direction"`
	ConstrainedMeans     []float64          `json:"constrained_means"`
	StepDownResults      []WilliamsStepDown `json:"step_down_results"`
	MinimumEffectiveDose *string            `json:"minimum_effective_dose,omitempty"`
	PooledVariance       float64            `json:"pooled_variance"`
	PooledDF             float64            `json:"pooled_df"`
}

// HighestDoseStepDown returns the step-down row for the highest tested dose,
// or nil when the sequence is empty
func (w *WilliamsTrendResult) HighestDoseStepDown() *WilliamsStepDown {
	if w == nil || len(w.StepDownResults) == 0 {
		return nil
	}
	return &w.StepDownResults[len(w.StepDownResults)-1]
}

// EndpointSummary is the aggregate descriptor of one biological endpoint
type EndpointSummary struct {
	Label            string    `json:"label"`
	OrganSystem      string    `json:"organ_system"`
	Domain           string    `json:"domain"` // SEND domain code, e.g. LB, OM, MI
	Direction        Direction `json:"direction"`
	Pattern          Pattern   `json:"pattern"`
	MinPValue        float64   `json:"min_p_value"`
	MaxEffectSize    float64   `json:"max_effect_size"` // largest |Cohen's d| across doses
	TreatmentRelated bool      `json:"treatment_related"`
	Adverse          bool      `json:"adverse"`
	Sexes            []Sex     `json:"sexes"`
	TestCode         string    `json:"test_code,omitempty"`
	Specimen         string    `json:"specimen,omitempty"`
}

// NormalizationContext is the externally owned, precomputed organ-weight
// normalization context. The engine never computes it; it only reads the
// fields relevant to the biological-plausibility ceiling.
type NormalizationContext struct {
	Specimen                string   `json:"specimen"`
	EstrousStagingAvailable bool     `json:"estrous_staging_available"`
	ConfirmatoryMIFindings  []string `json:"confirmatory_mi_findings,omitempty"`
}

// EndpointData bundles every input the per-endpoint confidence pipeline
// consumes for one (endpoint, sex) pair
type EndpointData struct {
	Summary       EndpointSummary       `json:"summary"`
	Sex           Sex                   `json:"sex"`
	Groups        []GroupStat           `json:"groups"`
	Pairwise      []PairwiseResult      `json:"pairwise"`
	TrendPValue   *float64              `json:"trend_p_value,omitempty"`
	Williams      *WilliamsTrendResult  `json:"williams,omitempty"`
	Normalization *NormalizationContext `json:"normalization,omitempty"`
}

// ============================================================================
// VALIDATION
// ============================================================================

// ValidateGroups enforces the structural invariants of a dose-group series.
// This is the single fail-fast gate of the engine: no statistical claim can
// be made without at least a control and one treated group.
func ValidateGroups(groups []GroupStat) error {
	if len(groups) < 2 {
		return fmt.Errorf("need at least a control and one treated group, got %d", len(groups))
	}
	if groups[0].DoseLevel != 0 {
		return fmt.Errorf("first group must be control (dose level 0), got %d", groups[0].DoseLevel)
	}
	for i := 1; i < len(groups); i++ {
		if groups[i].DoseLevel <= groups[i-1].DoseLevel {
			return fmt.Errorf("dose levels must be strictly ascending: level %d follows %d",
				groups[i].DoseLevel, groups[i-1].DoseLevel)
		}
	}
	for _, g := range groups {
		if g.N <= 0 {
			return fmt.Errorf("group at dose level %d has invalid n=%d", g.DoseLevel, g.N)
		}
	}
	return nil
}

// FindPairwise looks up the comparison for a dose level, nil when absent
func FindPairwise(pairwise []PairwiseResult, doseLevel int) *PairwiseResult {
	for i := range pairwise {
		if pairwise[i].DoseLevel == doseLevel {
			return &pairwise[i]
		}
	}
	return nil
}
