package eci

import (
	"testing"

	"toxeval/domain/study"
)

func floatPtr(v float64) *float64 { return &v }

// heteroGroups builds a series with configurable control and treated SDs
// around stable means
func heteroGroups(controlMean, controlSD float64, treated ...[2]float64) []study.GroupStat {
	groups := []study.GroupStat{{DoseLevel: 0, N: 10, Mean: controlMean, SD: controlSD}}
	for i, t := range treated {
		groups = append(groups, study.GroupStat{DoseLevel: i + 1, N: 10, Mean: t[0], SD: t[1]})
	}
	return groups
}

func TestCheckTrendTestValidity_Homogeneous(t *testing.T) {
	groups := heteroGroups(10.0, 1.0, [2]float64{11.0, 1.1}, [2]float64{12.0, 1.2})

	caveat := CheckTrendTestValidity(groups, floatPtr(0.01))
	if caveat.Triggered {
		t.Errorf("homogeneous variance must not trigger, got %+v", caveat)
	}
	if caveat.TrendEvidenceDowngraded {
		t.Error("homogeneous variance must not downgrade trend evidence")
	}
}

func TestCheckTrendTestValidity_SDOnlyCriterion(t *testing.T) {
	// Treated SD is 3x control, but means scale with it so the CV ratio
	// stays under threshold.
	groups := heteroGroups(10.0, 1.0, [2]float64{11.0, 1.0}, [2]float64{19.0, 3.0})

	caveat := CheckTrendTestValidity(groups, floatPtr(0.01))
	if !caveat.Triggered {
		t.Fatalf("SD ratio 3.0 must trigger, got %+v", caveat)
	}
	if !caveat.SDCriterionFired || caveat.CVCriterionFired {
		t.Errorf("expected SD-only criterion, got SD=%v CV=%v", caveat.SDCriterionFired, caveat.CVCriterionFired)
	}
	if !caveat.TrendEvidenceDowngraded {
		t.Error("single criterion must downgrade trend evidence")
	}
	if caveat.Consequences.ConfidencePenalty != 0 {
		t.Errorf("single criterion penalty = %d, want 0", caveat.Consequences.ConfidencePenalty)
	}
}

func TestCheckTrendTestValidity_BothCriteria(t *testing.T) {
	// SD ratio 3.0 with a flat mean also pushes the CV ratio to 3.0.
	groups := heteroGroups(10.0, 1.0, [2]float64{10.5, 1.2}, [2]float64{10.0, 3.0})

	caveat := CheckTrendTestValidity(groups, floatPtr(0.01))
	if !caveat.Triggered {
		t.Fatalf("both criteria must trigger, got %+v", caveat)
	}
	if !caveat.SDCriterionFired || !caveat.CVCriterionFired {
		t.Errorf("expected both criteria fired, got SD=%v CV=%v", caveat.SDCriterionFired, caveat.CVCriterionFired)
	}
	if caveat.Consequences.ConfidencePenalty != 1 {
		t.Errorf("both criteria penalty = %d, want 1", caveat.Consequences.ConfidencePenalty)
	}
}

func TestCheckTrendTestValidity_NoTrendPValue(t *testing.T) {
	groups := heteroGroups(10.0, 1.0, [2]float64{10.0, 9.0})

	caveat := CheckTrendTestValidity(groups, nil)
	if caveat.Triggered {
		t.Errorf("missing trend p-value leaves nothing to invalidate, got %+v", caveat)
	}
}

func TestCheckTrendTestValidity_ZeroControlSD(t *testing.T) {
	// Degenerate control variance: ratio criteria degrade gracefully
	// instead of dividing by zero.
	groups := heteroGroups(10.0, 0.0, [2]float64{12.0, 2.0})

	caveat := CheckTrendTestValidity(groups, floatPtr(0.01))
	if caveat.SDCriterionFired {
		t.Errorf("SD criterion must not fire with zero control SD, got %+v", caveat)
	}
}

func TestCheckTrendTestValidity_ZeroControlMean(t *testing.T) {
	groups := []study.GroupStat{
		{DoseLevel: 0, N: 10, Mean: 0.0, SD: 1.0},
		{DoseLevel: 1, N: 10, Mean: 5.0, SD: 1.5},
	}
	caveat := CheckTrendTestValidity(groups, floatPtr(0.01))
	if caveat.CVCriterionFired {
		t.Errorf("CV criterion must not fire with zero control mean, got %+v", caveat)
	}
}
