package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toxeval/domain/study"
)

const csvFixture = `study_id,endpoint,organ_system,domain,test_code,specimen,sex,dose_level,dose,subject_id,value
S-001,ALT,HEPATIC,LB,ALT,,M,0,0,S01,41.2
S-001,ALT,HEPATIC,LB,ALT,,M,0,0,S02,39.8
S-001,ALT,HEPATIC,LB,ALT,,M,1,2,S11,48.1
S-001,ALT,HEPATIC,LB,ALT,,M,2,20,S21,58.9
S-001,ALT,HEPATIC,LB,ALT,,M,3,200,S31,76.4
S-001,ALT,HEPATIC,LB,ALT,,M,3,200,S32,not-a-number
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "study.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadStudyCSV(t *testing.T) {
	reader := NewStudyReader(writeFixture(t, csvFixture))
	raw, err := reader.ReadStudy()
	require.NoError(t, err)

	assert.Equal(t, "S-001", raw.StudyID)
	assert.Len(t, raw.Measurements, 5, "the unparseable row should be skipped, not fatal")
	assert.Equal(t, []float64{2, 20, 200}, raw.DoseValues())

	first := raw.Measurements[0]
	assert.Equal(t, "ALT", first.Endpoint)
	assert.Equal(t, study.SexMale, first.Sex)
	assert.Equal(t, 0, first.DoseLevel)
	assert.Equal(t, 41.2, first.Value)
}

func TestReadStudyMissingColumn(t *testing.T) {
	fixture := "study_id,endpoint\nS-001,ALT\n"
	reader := NewStudyReader(writeFixture(t, fixture))

	_, err := reader.ReadStudy()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestReadStudyNoParseableRows(t *testing.T) {
	fixture := csvFixture[:len("study_id,endpoint,organ_system,domain,test_code,specimen,sex,dose_level,dose,subject_id,value\n")] +
		"S-001,ALT,HEPATIC,LB,ALT,,M,x,0,S01,41.2\n"
	reader := NewStudyReader(writeFixture(t, fixture))

	_, err := reader.ReadStudy()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parseable measurements")
}

func TestReadStudyFileNotFound(t *testing.T) {
	reader := NewStudyReader("/nonexistent/study.csv")
	_, err := reader.ReadStudy()
	assert.Error(t, err)
}

func TestGroupByEndpointDeterministicOrder(t *testing.T) {
	raw := &RawStudy{Measurements: []Measurement{
		{Endpoint: "BW", Sex: study.SexMale},
		{Endpoint: "ALT", Sex: study.SexFemale},
		{Endpoint: "ALT", Sex: study.SexMale},
	}}

	groups, byGroup := raw.GroupByEndpoint()
	require.Len(t, groups, 3)
	assert.Equal(t, "ALT", groups[0].Endpoint)
	assert.Equal(t, study.SexFemale, groups[0].Sex)
	assert.Equal(t, "ALT", groups[1].Endpoint)
	assert.Equal(t, study.SexMale, groups[1].Sex)
	assert.Equal(t, "BW", groups[2].Endpoint)
	for _, g := range groups {
		assert.NotEmpty(t, byGroup[g])
	}
}
