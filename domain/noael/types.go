package noael

import (
	"toxeval/domain/study"
)

// ContributionLabel names the evidentiary role of an endpoint in the
// study-level NOAEL derivation
type ContributionLabel string

const (
	LabelExcluded     ContributionLabel = "excluded"
	LabelSupporting   ContributionLabel = "supporting"
	LabelContributing ContributionLabel = "contributing"
	LabelDetermining  ContributionLabel = "determining"
)

// Discrete evidentiary weights. Never interpolated.
const (
	WeightExcluded     = 0.0
	WeightSupporting   = 0.3
	WeightContributing = 0.7
	WeightDetermining  = 1.0
)

// Contribution is the discrete evidentiary weight an endpoint carries into
// the study-level derivation.
// INVARIANT: Weight is exactly one of 0.0, 0.3, 0.7, 1.0.
type Contribution struct {
	Weight                float64           `json:"weight"`
	Label                 ContributionLabel `json:"label"`
	Caveats               []string          `json:"caveats,omitempty"`
	CanSetNOAEL           bool              `json:"can_set_noael"`
	RequiresCorroboration bool              `json:"requires_corroboration"`
}

// WeightedEndpoint pairs an endpoint's onset dose with its contribution
type WeightedEndpoint struct {
	Endpoint     string       `json:"endpoint"`
	Organ        string       `json:"organ"`
	Domain       string       `json:"domain"`
	Sex          study.Sex    `json:"sex"`
	OnsetDose    float64      `json:"onset_dose"`
	Contribution Contribution `json:"noael_contribution"`
}

// Derivation is the study-level NOAEL/LOAEL determination.
// INVARIANT: NOAEL, when non-nil, is a tested dose strictly below LOAEL.
// LOAELBelowLowestTested marks the case where the adverse effect is already
// established at the lowest tested dose: the NOAEL is reported as below the
// lowest tested dose, never silently assumed to be the untested control.
type Derivation struct {
	NOAEL                  *float64           `json:"noael"`
	LOAEL                  *float64           `json:"loael"`
	LOAELBelowLowestTested bool               `json:"loael_below_lowest_tested"`
	DeterminingEndpoints   []WeightedEndpoint `json:"determining_endpoints"`
	ContributingEndpoints  []WeightedEndpoint `json:"contributing_endpoints"`
	SupportingEndpoints    []WeightedEndpoint `json:"supporting_endpoints"`
	Rationale              string             `json:"rationale"`
}
