package excel

import (
	"sort"

	"toxeval/domain/study"
)

// Measurement is one per-subject observation row from a study workbook
type Measurement struct {
	StudyID     string
	Endpoint    string
	OrganSystem string
	Domain      string
	TestCode    string
	Specimen    string
	Sex         study.Sex
	DoseLevel   int
	Dose        float64
	SubjectID   string
	Value       float64
}

// RawStudy is the parsed content of one study workbook
type RawStudy struct {
	StudyID      string
	Measurements []Measurement
}

// EndpointGroup identifies one (endpoint, sex) measurement series
type EndpointGroup struct {
	Endpoint    string
	OrganSystem string
	Domain      string
	TestCode    string
	Specimen    string
	Sex         study.Sex
}

// DoseValues returns the ordered ascending list of tested non-control doses
func (r *RawStudy) DoseValues() []float64 {
	seen := make(map[float64]bool)
	var doses []float64
	for _, m := range r.Measurements {
		if m.DoseLevel == 0 || seen[m.Dose] {
			continue
		}
		seen[m.Dose] = true
		doses = append(doses, m.Dose)
	}
	sort.Float64s(doses)
	return doses
}

// GroupByEndpoint partitions measurements into per-(endpoint, sex) series
// with deterministic ordering
func (r *RawStudy) GroupByEndpoint() ([]EndpointGroup, map[EndpointGroup][]Measurement) {
	byGroup := make(map[EndpointGroup][]Measurement)
	for _, m := range r.Measurements {
		key := EndpointGroup{
			Endpoint:    m.Endpoint,
			OrganSystem: m.OrganSystem,
			Domain:      m.Domain,
			TestCode:    m.TestCode,
			Specimen:    m.Specimen,
			Sex:         m.Sex,
		}
		byGroup[key] = append(byGroup[key], m)
	}

	groups := make([]EndpointGroup, 0, len(byGroup))
	for key := range byGroup {
		groups = append(groups, key)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Endpoint != groups[j].Endpoint {
			return groups[i].Endpoint < groups[j].Endpoint
		}
		return groups[i].Sex < groups[j].Sex
	})
	return groups, byGroup
}
