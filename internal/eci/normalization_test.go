package eci

import (
	"testing"

	"toxeval/domain/confidence"
	"toxeval/domain/study"
)

func TestResolveNormalizationCaveat_NilContext(t *testing.T) {
	if caveat := ResolveNormalizationCaveat(nil); caveat != nil {
		t.Errorf("nil context must yield no caveat, got %+v", caveat)
	}
}

func TestResolveNormalizationCaveat_NonReproductiveOrgan(t *testing.T) {
	ctx := &study.NormalizationContext{Specimen: "LIVER"}
	if caveat := ResolveNormalizationCaveat(ctx); caveat != nil {
		t.Errorf("liver must yield no caveat, got %+v", caveat)
	}
}

func TestResolveNormalizationCaveat_CeilingApplied(t *testing.T) {
	ctx := &study.NormalizationContext{
		Specimen:                "OVARY",
		EstrousStagingAvailable: false,
	}
	caveat := ResolveNormalizationCaveat(ctx)
	if caveat == nil || !caveat.Triggered {
		t.Fatalf("unanchored ovary weight must trigger the ceiling, got %+v", caveat)
	}
	if caveat.CeilingOnTR == nil || *caveat.CeilingOnTR != confidence.LevelModerate {
		t.Errorf("ceiling = %v, want moderate", caveat.CeilingOnTR)
	}
	if !caveat.MissingStaging {
		t.Error("missing staging must be recorded")
	}
}

func TestResolveNormalizationCaveat_StagingLiftsCeiling(t *testing.T) {
	ctx := &study.NormalizationContext{
		Specimen:                "UTERUS",
		EstrousStagingAvailable: true,
	}
	caveat := ResolveNormalizationCaveat(ctx)
	if caveat == nil {
		t.Fatal("confounded specimen must still return a caveat record")
	}
	if caveat.Triggered || caveat.CeilingOnTR != nil {
		t.Errorf("staging data must lift the ceiling, got %+v", caveat)
	}
}

func TestResolveNormalizationCaveat_ConfirmatoryMILiftsCeiling(t *testing.T) {
	ctx := &study.NormalizationContext{
		Specimen:                "UTERUS",
		EstrousStagingAvailable: false,
		ConfirmatoryMIFindings:  []string{"endometrial hyperplasia"},
	}
	caveat := ResolveNormalizationCaveat(ctx)
	if caveat == nil {
		t.Fatal("confounded specimen must still return a caveat record")
	}
	if caveat.Triggered || caveat.CeilingOnTR != nil {
		t.Errorf("confirmatory MI finding must lift the ceiling, got %+v", caveat)
	}
	if !caveat.HasConfirmatoryMI {
		t.Error("confirmatory MI presence must be recorded")
	}
}

func TestResolveNormalizationCaveat_SpecimenCaseInsensitive(t *testing.T) {
	ctx := &study.NormalizationContext{Specimen: " ovary "}
	caveat := ResolveNormalizationCaveat(ctx)
	if caveat == nil || !caveat.Triggered {
		t.Errorf("specimen matching must normalize case and whitespace, got %+v", caveat)
	}
}
