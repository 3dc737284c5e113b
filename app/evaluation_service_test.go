package app

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toxeval/domain/noael"
	"toxeval/internal/testkit"
)

func generateStudy(t *testing.T, profiles ...testkit.EndpointProfile) *StudyEvaluation {
	t.Helper()
	raw, err := testkit.NewStudyGenerator(testkit.DefaultStudyConfig()).Generate(profiles)
	require.NoError(t, err)

	evaluation, err := NewEvaluationService().EvaluateRaw(context.Background(), raw)
	require.NoError(t, err)
	return evaluation
}

func findEndpoint(t *testing.T, evaluation *StudyEvaluation, label string) EvaluatedEndpoint {
	t.Helper()
	for _, ep := range evaluation.Endpoints {
		if ep.Evaluation.Summary.Label == label {
			return ep
		}
	}
	t.Fatalf("endpoint %s not found", label)
	return EvaluatedEndpoint{}
}

func TestEvaluateRawDeterminingLiverEndpoint(t *testing.T) {
	evaluation := generateStudy(t,
		testkit.MonotoneLiverProfile(),
		testkit.FlatBodyWeightProfile(),
	)

	require.Len(t, evaluation.Endpoints, 2)
	require.NotNil(t, evaluation.Derivation)

	alt := findEndpoint(t, evaluation, "ALT")
	assert.Equal(t, noael.LabelDetermining, alt.Weighted.Contribution.Label,
		"a strong monotone effect with no caveats should determine the NOAEL")
	assert.Equal(t, 2.0, alt.Weighted.OnsetDose)

	bw := findEndpoint(t, evaluation, "BODY WEIGHT")
	assert.NotEqual(t, noael.LabelDetermining, bw.Weighted.Contribution.Label,
		"a flat endpoint must never determine the NOAEL")

	// The liver effect is already present at the lowest tested dose.
	require.NotNil(t, evaluation.Derivation.LOAEL)
	assert.Equal(t, 2.0, *evaluation.Derivation.LOAEL)
	assert.True(t, evaluation.Derivation.LOAELBelowLowestTested)
	assert.Nil(t, evaluation.Derivation.NOAEL)
}

func TestEvaluateRawEstrousNormalizationCaveat(t *testing.T) {
	evaluation := generateStudy(t, testkit.OvaryWeightProfile())

	ovary := findEndpoint(t, evaluation, "OVARY WEIGHT")
	require.NotNil(t, ovary.Evaluation.Normalization)
	assert.True(t, ovary.Evaluation.Normalization.Triggered,
		"ovary weight without estrous staging should trigger the normalization caveat")
	assert.Equal(t, noael.WeightSupporting, ovary.Weighted.Contribution.Weight,
		"confidence capped at moderate plus an active caveat should yield supporting")
}

func TestEvaluateRawDeterministicDerivation(t *testing.T) {
	first := generateStudy(t, testkit.MonotoneLiverProfile(), testkit.FlatBodyWeightProfile())
	second := generateStudy(t, testkit.MonotoneLiverProfile(), testkit.FlatBodyWeightProfile())

	if !reflect.DeepEqual(first.Derivation, second.Derivation) {
		t.Error("identical input studies should yield identical derivations")
	}
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestEvaluateRawRejectsEmptyStudy(t *testing.T) {
	_, err := NewEvaluationService().EvaluateRaw(context.Background(), nil)
	assert.Error(t, err)
}

func TestBuildReportBelowLowestTestedPhrasing(t *testing.T) {
	evaluation := generateStudy(t, testkit.MonotoneLiverProfile())

	report := BuildReport(evaluation)
	assert.True(t, strings.Contains(report, "below the lowest tested dose"),
		"report must state the NOAEL explicitly when the LOAEL is the lowest tested dose")
	assert.Contains(t, report, string(evaluation.StudyID))
	assert.Contains(t, report, "## Endpoint Confidence Detail")

	// Deterministic rendering.
	assert.Equal(t, report, BuildReport(evaluation))
}
