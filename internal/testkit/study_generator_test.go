package testkit

import (
	"reflect"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	config := DefaultStudyConfig()
	profiles := []EndpointProfile{MonotoneLiverProfile(), FlatBodyWeightProfile()}

	first, err := NewStudyGenerator(config).Generate(profiles)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	second, err := NewStudyGenerator(config).Generate(profiles)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("same seed and profiles should yield identical studies")
	}
}

func TestGenerateShape(t *testing.T) {
	config := DefaultStudyConfig()
	raw, err := NewStudyGenerator(config).Generate([]EndpointProfile{MonotoneLiverProfile()})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	wantRows := (len(config.DoseValues) + 1) * config.SubjectsPerDose
	if len(raw.Measurements) != wantRows {
		t.Errorf("expected %d measurements, got %d", wantRows, len(raw.Measurements))
	}
	if raw.StudyID != config.StudyID {
		t.Errorf("expected study ID %s, got %s", config.StudyID, raw.StudyID)
	}
	if doses := raw.DoseValues(); !reflect.DeepEqual(doses, config.DoseValues) {
		t.Errorf("expected doses %v, got %v", config.DoseValues, doses)
	}
}

func TestGenerateRejectsBadProfile(t *testing.T) {
	config := DefaultStudyConfig()
	profile := MonotoneLiverProfile()
	profile.GroupShift = []float64{0, 1} // wrong length

	if _, err := NewStudyGenerator(config).Generate([]EndpointProfile{profile}); err == nil {
		t.Error("expected error for mismatched GroupShift length")
	}
}
