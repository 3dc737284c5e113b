package stats

import (
	"fmt"
	"math"

	"toxeval/domain/study"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// GroupSamples holds the raw per-subject values of one dose group for one
// endpoint/sex
type GroupSamples struct {
	DoseLevel int
	Dose      float64
	Values    []float64
}

// ComputeGroupStats summarizes raw dose-group samples into the GroupStat
// series the confidence engine consumes. Groups must arrive ordered by
// ascending dose level with the control (level 0) first.
func ComputeGroupStats(samples []GroupSamples) ([]study.GroupStat, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("need at least a control and one treated group, got %d", len(samples))
	}

	groups := make([]study.GroupStat, 0, len(samples))
	for _, s := range samples {
		if len(s.Values) == 0 {
			return nil, fmt.Errorf("dose level %d has no measurements", s.DoseLevel)
		}
		mean, _ := stats.Mean(s.Values)
		sd, _ := stats.StandardDeviationSample(s.Values)
		median, _ := stats.Median(s.Values)
		groups = append(groups, study.GroupStat{
			DoseLevel: s.DoseLevel,
			N:         len(s.Values),
			Mean:      mean,
			SD:        sd,
			Median:    median,
		})
	}

	if err := study.ValidateGroups(groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ComputePairwise runs Welch's t-test for each treated group against
// control, with a Bonferroni-style adjustment across the family of treated
// comparisons (a conservative stand-in for Dunnett's procedure). Effect
// sizes are Cohen's d on the pooled standard deviation.
func ComputePairwise(samples []GroupSamples) ([]study.PairwiseResult, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("need at least a control and one treated group, got %d", len(samples))
	}

	control := samples[0].Values
	comparisons := len(samples) - 1

	results := make([]study.PairwiseResult, 0, comparisons)
	for _, s := range samples[1:] {
		pw := study.PairwiseResult{DoseLevel: s.DoseLevel, PValue: 1.0, PValueAdj: 1.0}

		if len(control) >= 2 && len(s.Values) >= 2 {
			tStat, p := welchTTest(s.Values, control)
			if !math.IsNaN(tStat) {
				stat := tStat
				pw.Statistic = &stat
				pw.PValue = p
				pw.PValueAdj = math.Min(1.0, p*float64(comparisons))
			}
			if d, ok := cohensD(s.Values, control); ok {
				pw.CohensD = &d
			}
		}
		results = append(results, pw)
	}
	return results, nil
}

// welchTTest returns the Welch t-statistic and two-sided p-value for
// treated vs control
func welchTTest(treated, control []float64) (float64, float64) {
	n1 := float64(len(treated))
	n2 := float64(len(control))
	mean1, _ := stats.Mean(treated)
	mean2, _ := stats.Mean(control)
	var1, _ := stats.SampleVariance(treated)
	var2, _ := stats.SampleVariance(control)

	se := math.Sqrt(var1/n1 + var2/n2)
	if se == 0 {
		return math.NaN(), 1.0
	}
	tStat := (mean1 - mean2) / se

	// Welch-Satterthwaite degrees of freedom
	df := math.Pow(var1/n1+var2/n2, 2) /
		(math.Pow(var1/n1, 2)/(n1-1) + math.Pow(var2/n2, 2)/(n2-1))
	if df <= 0 || math.IsNaN(df) {
		return math.NaN(), 1.0
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - dist.CDF(math.Abs(tStat)))
	return tStat, p
}

// cohensD returns the standardized mean difference on the pooled SD
func cohensD(treated, control []float64) (float64, bool) {
	n1 := float64(len(treated))
	n2 := float64(len(control))
	if n1 < 2 || n2 < 2 {
		return 0, false
	}
	mean1, _ := stats.Mean(treated)
	mean2, _ := stats.Mean(control)
	var1, _ := stats.SampleVariance(treated)
	var2, _ := stats.SampleVariance(control)

	pooledSD := math.Sqrt(((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2))
	if pooledSD == 0 {
		return 0, false
	}
	return (mean1 - mean2) / pooledSD, true
}

// ClassifyPattern assigns a dose-response pattern from the group means and
// adjusted pairwise significance. Heuristic classification: monotone mean
// series are monotonic; a significant effect that plateaus after an onset
// dose is a threshold pattern; a peak followed by decline is non-monotonic;
// no significant comparison at all is flat.
func ClassifyPattern(groups []study.GroupStat, pairwise []study.PairwiseResult) study.Pattern {
	if len(groups) < 2 {
		return study.PatternFlat
	}

	anySignificant := false
	for _, pw := range pairwise {
		if pw.PValueAdj < 0.05 {
			anySignificant = true
			break
		}
	}
	if !anySignificant {
		return study.PatternFlat
	}

	increasing := true
	decreasing := true
	for i := 1; i < len(groups); i++ {
		if groups[i].Mean < groups[i-1].Mean {
			increasing = false
		}
		if groups[i].Mean > groups[i-1].Mean {
			decreasing = false
		}
	}
	if increasing {
		return study.PatternMonotonicIncrease
	}
	if decreasing {
		return study.PatternMonotonicDecrease
	}

	// Locate the extreme treated response relative to control.
	controlMean := groups[0].Mean
	peakIdx := 1
	peakEffect := math.Abs(groups[1].Mean - controlMean)
	for i := 2; i < len(groups); i++ {
		effect := math.Abs(groups[i].Mean - controlMean)
		if effect > peakEffect {
			peakEffect = effect
			peakIdx = i
		}
	}
	highestEffect := math.Abs(groups[len(groups)-1].Mean - controlMean)

	if peakIdx < len(groups)-1 && peakEffect > 0 && highestEffect/peakEffect < 0.5 {
		return study.PatternNonMonotonic
	}

	// Non-monotone means but a retained top-dose effect: a threshold-type
	// response with plateau noise.
	if groups[len(groups)-1].Mean >= controlMean {
		return study.PatternThresholdIncrease
	}
	return study.PatternThresholdDecrease
}

// SummarizeDirection reports which way the top-dose response moved
func SummarizeDirection(groups []study.GroupStat) study.Direction {
	if len(groups) >= 2 && groups[len(groups)-1].Mean < groups[0].Mean {
		return study.DirectionDecrease
	}
	return study.DirectionIncrease
}
