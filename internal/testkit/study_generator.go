package testkit

import (
	"fmt"
	"math/rand"

	"toxeval/adapters/excel"
	"toxeval/domain/study"
)

// StudyGeneratorConfig configures the synthetic study generator
type StudyGeneratorConfig struct {
	StudyID         string    `json:"study_id"`
	DoseValues      []float64 `json:"dose_values"`
	SubjectsPerDose int       `json:"subjects_per_dose"`
	Seed            int64     `json:"seed"`
}

// DefaultStudyConfig returns a four-group design with ten subjects per dose
func DefaultStudyConfig() StudyGeneratorConfig {
	return StudyGeneratorConfig{
		StudyID:         "STUDY-SYNTH-001",
		DoseValues:      []float64{2, 20, 200},
		SubjectsPerDose: 10,
		Seed:            42,
	}
}

// EndpointProfile describes the dose-response shape of one synthetic
// endpoint. GroupShift holds the mean shift per dose group, control first;
// its length must be len(DoseValues)+1.
type EndpointProfile struct {
	Endpoint    string
	OrganSystem string
	Domain      string
	TestCode    string
	Specimen    string
	Sex         study.Sex
	Baseline    float64
	Noise       float64
	GroupShift  []float64
}

// StudyGenerator produces deterministic synthetic dose-response studies
type StudyGenerator struct {
	config StudyGeneratorConfig
	rng    *rand.Rand
}

// NewStudyGenerator creates a study generator with a fixed seed
func NewStudyGenerator(config StudyGeneratorConfig) *StudyGenerator {
	return &StudyGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds a raw study from the given endpoint profiles. Identical
// config and profiles always yield identical measurements.
func (g *StudyGenerator) Generate(profiles []EndpointProfile) (*excel.RawStudy, error) {
	if len(g.config.DoseValues) == 0 {
		return nil, fmt.Errorf("study config has no dose values")
	}
	if g.config.SubjectsPerDose < 2 {
		return nil, fmt.Errorf("study config needs at least 2 subjects per dose")
	}

	raw := &excel.RawStudy{StudyID: g.config.StudyID}
	for _, profile := range profiles {
		if len(profile.GroupShift) != len(g.config.DoseValues)+1 {
			return nil, fmt.Errorf("endpoint %s: GroupShift needs %d entries, got %d",
				profile.Endpoint, len(g.config.DoseValues)+1, len(profile.GroupShift))
		}
		raw.Measurements = append(raw.Measurements, g.generateEndpoint(profile)...)
	}
	if len(raw.Measurements) == 0 {
		return nil, fmt.Errorf("no endpoint profiles given")
	}
	return raw, nil
}

// generateEndpoint generates all subject measurements for one endpoint
func (g *StudyGenerator) generateEndpoint(profile EndpointProfile) []excel.Measurement {
	var measurements []excel.Measurement
	for level := 0; level <= len(g.config.DoseValues); level++ {
		dose := 0.0
		if level > 0 {
			dose = g.config.DoseValues[level-1]
		}
		for subject := 0; subject < g.config.SubjectsPerDose; subject++ {
			value := profile.Baseline + profile.GroupShift[level] + g.rng.NormFloat64()*profile.Noise
			measurements = append(measurements, excel.Measurement{
				StudyID:     g.config.StudyID,
				Endpoint:    profile.Endpoint,
				OrganSystem: profile.OrganSystem,
				Domain:      profile.Domain,
				TestCode:    profile.TestCode,
				Specimen:    profile.Specimen,
				Sex:         profile.Sex,
				DoseLevel:   level,
				Dose:        dose,
				SubjectID:   fmt.Sprintf("%s-%s-%d-%02d", profile.Endpoint, profile.Sex, level, subject+1),
				Value:       value,
			})
		}
	}
	return measurements
}

// MonotoneLiverProfile is a strong monotone increase in a liver enzyme,
// the canonical determining endpoint
func MonotoneLiverProfile() EndpointProfile {
	return EndpointProfile{
		Endpoint:    "ALT",
		OrganSystem: "HEPATIC",
		Domain:      "LB",
		TestCode:    "ALT",
		Sex:         study.SexMale,
		Baseline:    40,
		Noise:       3,
		GroupShift:  []float64{0, 8, 18, 35},
	}
}

// FlatBodyWeightProfile shows no treatment effect at any dose
func FlatBodyWeightProfile() EndpointProfile {
	return EndpointProfile{
		Endpoint:    "BODY WEIGHT",
		OrganSystem: "GENERAL",
		Domain:      "BW",
		TestCode:    "BW",
		Sex:         study.SexMale,
		Baseline:    250,
		Noise:       8,
		GroupShift:  []float64{0, 0, 0, 0},
	}
}

// MidDosePeakProfile peaks at the middle dose and collapses at the top,
// the shape the non-monotonic detector exists for
func MidDosePeakProfile() EndpointProfile {
	return EndpointProfile{
		Endpoint:    "CHOLESTEROL",
		OrganSystem: "HEPATIC",
		Domain:      "LB",
		TestCode:    "CHOL",
		Sex:         study.SexMale,
		Baseline:    80,
		Noise:       4,
		GroupShift:  []float64{0, 6, 25, 3},
	}
}

// OvaryWeightProfile is an estrous-cycle-sensitive organ weight endpoint
func OvaryWeightProfile() EndpointProfile {
	return EndpointProfile{
		Endpoint:    "OVARY WEIGHT",
		OrganSystem: "REPRODUCTIVE",
		Domain:      "OM",
		TestCode:    "OVWT",
		Specimen:    "OVARY",
		Sex:         study.SexFemale,
		Baseline:    0.12,
		Noise:       0.01,
		GroupShift:  []float64{0, 0.005, 0.02, 0.04},
	}
}
