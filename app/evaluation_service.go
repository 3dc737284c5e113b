package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"toxeval/adapters/excel"
	adapterstats "toxeval/adapters/stats"
	"toxeval/domain/core"
	"toxeval/domain/noael"
	"toxeval/domain/study"
	"toxeval/internal"
	"toxeval/internal/eci"
	"toxeval/internal/errors"
)

// EvaluatedEndpoint pairs the confidence pipeline output with the weighted
// endpoint handed to the NOAEL deriver
type EvaluatedEndpoint struct {
	Evaluation *eci.EndpointEvaluation `json:"evaluation"`
	Weighted   noael.WeightedEndpoint  `json:"weighted"`
}

// StudyEvaluation is the complete output of one evaluation run
type StudyEvaluation struct {
	RunID       core.RunID            `json:"run_id"`
	StudyID     core.StudyID          `json:"study_id"`
	Fingerprint core.StudyFingerprint `json:"fingerprint"`
	DoseValues  []float64             `json:"dose_values"`
	Endpoints   []EvaluatedEndpoint   `json:"endpoints"`
	Derivation  *noael.Derivation     `json:"derivation"`
	CreatedAt   core.Timestamp        `json:"created_at"`
}

// RunSummary is a persisted run's listing row
type RunSummary struct {
	RunID     core.RunID     `json:"run_id"`
	StudyID   core.StudyID   `json:"study_id"`
	NOAEL     *float64       `json:"noael"`
	LOAEL     *float64       `json:"loael"`
	CreatedAt core.Timestamp `json:"created_at"`
}

// EvaluationService orchestrates the full study evaluation: raw
// measurements through the statistical producer, the per-endpoint
// confidence pipeline, and the study-level NOAEL derivation
type EvaluationService struct {
	logger      *internal.Logger
	concurrency int
}

// NewEvaluationService creates an evaluation service
func NewEvaluationService() *EvaluationService {
	return &EvaluationService{
		logger:      internal.DefaultLogger,
		concurrency: 4,
	}
}

// WithConcurrency sets how many endpoints are evaluated in parallel
func (s *EvaluationService) WithConcurrency(n int) *EvaluationService {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// EvaluateRaw evaluates a raw measurement study end to end
func (s *EvaluationService) EvaluateRaw(ctx context.Context, raw *excel.RawStudy) (*StudyEvaluation, error) {
	if raw == nil || len(raw.Measurements) == 0 {
		return nil, errors.StudyMalformed("study has no measurements", nil)
	}

	doseValues := raw.DoseValues()
	if len(doseValues) == 0 {
		return nil, errors.StudyMalformed("study has no non-control dose groups", nil)
	}

	groups, byGroup := raw.GroupByEndpoint()
	s.logger.Info("evaluating study %s: %d endpoint series over doses %v",
		raw.StudyID, len(groups), doseValues)

	endpointData := make([]study.EndpointData, 0, len(groups))
	for _, key := range groups {
		data, err := s.prepareEndpoint(key, byGroup[key])
		if err != nil {
			return nil, errors.Wrapf(err, "preparing endpoint %s/%s", key.Endpoint, key.Sex)
		}
		endpointData = append(endpointData, *data)
	}

	return s.Evaluate(ctx, core.StudyID(raw.StudyID), doseValues, endpointData)
}

// Evaluate runs the confidence pipeline over prepared endpoint data and
// derives the study NOAEL/LOAEL. Endpoints are evaluated concurrently;
// each evaluation is pure, so execution order never affects the result.
func (s *EvaluationService) Evaluate(ctx context.Context, studyID core.StudyID, doseValues []float64, endpoints []study.EndpointData) (*StudyEvaluation, error) {
	if len(endpoints) == 0 {
		return nil, errors.StudyMalformed("no endpoints to evaluate", nil)
	}

	doseByLevel := make(map[int]float64, len(doseValues))
	for i, d := range doseValues {
		doseByLevel[i+1] = d
	}

	evaluated := make([]EvaluatedEndpoint, len(endpoints))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range endpoints {
		i := i
		g.Go(func() error {
			data := endpoints[i]
			eval, err := eci.EvaluateEndpoint(data)
			if err != nil {
				return err
			}

			onset := onsetDose(data, doseByLevel, doseValues)
			weighted := noael.WeightedEndpoint{
				Endpoint:     data.Summary.Label,
				Organ:        data.Summary.OrganSystem,
				Domain:       data.Summary.Domain,
				Sex:          data.Sex,
				OnsetDose:    onset,
				Contribution: eval.Contribution,
			}

			mu.Lock()
			evaluated[i] = EvaluatedEndpoint{Evaluation: eval, Weighted: weighted}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	weighted := make([]noael.WeightedEndpoint, len(evaluated))
	endpointKeys := make([]string, len(evaluated))
	for i, ep := range evaluated {
		weighted[i] = ep.Weighted
		endpointKeys[i] = core.NewEndpointKey(ep.Weighted.Endpoint, string(ep.Weighted.Sex)).String()
	}

	derivation, err := eci.DeriveWeightedNOAEL(weighted, doseValues)
	if err != nil {
		return nil, err
	}

	evaluation := &StudyEvaluation{
		RunID:       core.RunID(core.NewID()),
		StudyID:     studyID,
		Fingerprint: core.ComputeStudyFingerprint(studyID, doseValues, endpointKeys),
		DoseValues:  doseValues,
		Endpoints:   evaluated,
		Derivation:  derivation,
		CreatedAt:   core.Now(),
	}

	s.logger.Info("study %s evaluated: %s", studyID, derivation.Rationale)
	return evaluation, nil
}

// prepareEndpoint runs the upstream statistical producer over one
// (endpoint, sex) measurement series
func (s *EvaluationService) prepareEndpoint(key excel.EndpointGroup, measurements []excel.Measurement) (*study.EndpointData, error) {
	samples := groupSamples(measurements)

	groups, err := adapterstats.ComputeGroupStats(samples)
	if err != nil {
		return nil, err
	}
	pairwise, err := adapterstats.ComputePairwise(samples)
	if err != nil {
		return nil, err
	}
	trendP, err := adapterstats.JonckheereTerpstra(samples)
	if err != nil {
		return nil, err
	}
	direction := adapterstats.SummarizeDirection(groups)
	williams, err := adapterstats.WilliamsStepDownTest(samples, direction)
	if err != nil {
		return nil, err
	}

	pattern := adapterstats.ClassifyPattern(groups, pairwise)

	minP := 1.0
	maxEffect := 0.0
	for _, pw := range pairwise {
		if pw.PValueAdj < minP {
			minP = pw.PValueAdj
		}
		if pw.CohensD != nil && absFloat(*pw.CohensD) > absFloat(maxEffect) {
			maxEffect = *pw.CohensD
		}
	}

	// Treatment-relatedness and adversity normally come from the study
	// pathologist; absent that call, a significant informative pattern is
	// treated as both.
	treatmentRelated := minP < 0.05 && pattern.IsInformative()

	summary := study.EndpointSummary{
		Label:            key.Endpoint,
		OrganSystem:      key.OrganSystem,
		Domain:           key.Domain,
		Direction:        direction,
		Pattern:          pattern,
		MinPValue:        minP,
		MaxEffectSize:    maxEffect,
		TreatmentRelated: treatmentRelated,
		Adverse:          treatmentRelated,
		Sexes:            []study.Sex{key.Sex},
		TestCode:         key.TestCode,
		Specimen:         key.Specimen,
	}

	var normalization *study.NormalizationContext
	if key.Specimen != "" {
		normalization = &study.NormalizationContext{Specimen: key.Specimen}
	}

	return &study.EndpointData{
		Summary:       summary,
		Sex:           key.Sex,
		Groups:        groups,
		Pairwise:      pairwise,
		TrendPValue:   &trendP,
		Williams:      williams,
		Normalization: normalization,
	}, nil
}

// onsetDose maps the lowest significant dose level to its dose value; an
// endpoint with no significant dose sits at the top tested dose so it can
// never drag the LOAEL down
func onsetDose(data study.EndpointData, doseByLevel map[int]float64, doseValues []float64) float64 {
	level := eci.OnsetDoseLevel(data.Pairwise)
	if level == 0 {
		return doseValues[len(doseValues)-1]
	}
	if dose, ok := doseByLevel[level]; ok {
		return dose
	}
	return doseValues[len(doseValues)-1]
}

// groupSamples buckets measurements into ordered dose-group sample sets
func groupSamples(measurements []excel.Measurement) []adapterstats.GroupSamples {
	byLevel := make(map[int]*adapterstats.GroupSamples)
	for _, m := range measurements {
		g, ok := byLevel[m.DoseLevel]
		if !ok {
			g = &adapterstats.GroupSamples{DoseLevel: m.DoseLevel, Dose: m.Dose}
			byLevel[m.DoseLevel] = g
		}
		g.Values = append(g.Values, m.Value)
	}

	levels := make([]int, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	samples := make([]adapterstats.GroupSamples, 0, len(levels))
	for _, level := range levels {
		samples = append(samples, *byLevel[level])
	}
	return samples
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// FormatDose renders a dose value for reports
func FormatDose(d *float64) string {
	if d == nil {
		return "not established"
	}
	return fmt.Sprintf("%g", *d)
}
