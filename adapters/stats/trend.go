package stats

import (
	"fmt"
	"math"

	"toxeval/domain/study"

	"gonum.org/v1/gonum/stat/distuv"
)

// JonckheereTerpstra runs the nonparametric trend test across ordered dose
// groups using the normal approximation with tie correction omitted (ties
// counted as half-wins). Returns the two-sided p-value.
func JonckheereTerpstra(samples []GroupSamples) (float64, error) {
	if len(samples) < 2 {
		return 0, fmt.Errorf("need at least two groups for a trend test, got %d", len(samples))
	}

	jt := 0.0
	total := 0
	sumCubeTerm := 0.0
	for _, s := range samples {
		n := len(s.Values)
		if n == 0 {
			return 0, fmt.Errorf("dose level %d has no measurements", s.DoseLevel)
		}
		total += n
		sumCubeTerm += float64(n) * float64(n) * (2.0*float64(n) + 3.0)
	}

	for i := 0; i < len(samples); i++ {
		for j := i + 1; j < len(samples); j++ {
			for _, x := range samples[i].Values {
				for _, y := range samples[j].Values {
					switch {
					case y > x:
						jt += 1.0
					case y == x:
						jt += 0.5
					}
				}
			}
		}
	}

	nTotal := float64(total)
	sumSq := 0.0
	for _, s := range samples {
		n := float64(len(s.Values))
		sumSq += n * n
	}

	mean := (nTotal*nTotal - sumSq) / 4.0
	variance := (nTotal*nTotal*(2.0*nTotal+3.0) - sumCubeTerm) / 72.0
	if variance <= 0 {
		return 1.0, nil
	}

	z := (jt - mean) / math.Sqrt(variance)
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	p := 2 * (1 - normal.CDF(math.Abs(z)))
	return p, nil
}

// WilliamsStepDownTest runs a Williams-type step-down trend test: group
// means are amalgamated under the monotonicity constraint (pool-adjacent-
// violators), then each dose is compared against control from the top down
// until the first non-significant dose. Critical values use the Student's t
// quantile as a close stand-in for Williams' tabulated t-bar.
func WilliamsStepDownTest(samples []GroupSamples, direction study.Direction) (*study.WilliamsTrendResult, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("need at least a control and one treated group, got %d", len(samples))
	}

	means := make([]float64, len(samples))
	weights := make([]float64, len(samples))
	pooledSS := 0.0
	pooledDF := 0.0
	for i, s := range samples {
		if len(s.Values) == 0 {
			return nil, fmt.Errorf("dose level %d has no measurements", s.DoseLevel)
		}
		sum := 0.0
		for _, v := range s.Values {
			sum += v
		}
		means[i] = sum / float64(len(s.Values))
		weights[i] = float64(len(s.Values))

		for _, v := range s.Values {
			diff := v - means[i]
			pooledSS += diff * diff
		}
		pooledDF += float64(len(s.Values) - 1)
	}
	if pooledDF <= 0 {
		return nil, fmt.Errorf("insufficient degrees of freedom for pooled variance")
	}
	pooledVar := pooledSS / pooledDF

	constrained := isotonicMeans(means, weights, direction)

	result := &study.WilliamsTrendResult{
		Direction:        direction,
		ConstrainedMeans: constrained,
		PooledVariance:   pooledVar,
		PooledDF:         pooledDF,
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: pooledDF}
	tCrit := tDist.Quantile(0.95) // one-sided alpha 0.05

	controlMean := means[0]
	controlN := weights[0]

	rows := make([]study.WilliamsStepDown, len(samples)-1)
	stillSignificant := true
	var minEffective *string
	// Step down from the highest dose; once a dose fails, every dose below
	// it is non-significant by construction.
	for i := len(samples) - 1; i >= 1; i-- {
		se := math.Sqrt(pooledVar * (1.0/weights[i] + 1.0/controlN))
		tStat := 0.0
		if se > 0 {
			tStat = (constrained[i] - controlMean) / se
			if direction == study.DirectionDecrease {
				tStat = -tStat
			}
		}

		p := 1 - tDist.CDF(tStat)
		significant := stillSignificant && tStat > tCrit
		if !significant {
			stillSignificant = false
		}

		label := fmt.Sprintf("%g", samples[i].Dose)
		rows[i-1] = study.WilliamsStepDown{
			DoseLabel:     label,
			TestStatistic: tStat,
			CriticalValue: tCrit,
			PValue:        p,
			Significant:   significant,
		}
		if significant {
			l := label
			minEffective = &l
		}
	}

	result.StepDownResults = rows
	result.MinimumEffectiveDose = minEffective
	return result, nil
}

// isotonicMeans applies pool-adjacent-violators to enforce the hypothesized
// monotone ordering on the treated group means, weighted by group size.
// The control mean (index 0) is left unconstrained.
func isotonicMeans(means, weights []float64, direction study.Direction) []float64 {
	n := len(means)
	constrained := make([]float64, n)
	copy(constrained, means)
	if n < 3 {
		return constrained
	}

	sign := 1.0
	if direction == study.DirectionDecrease {
		sign = -1.0
	}

	type block struct {
		value  float64
		weight float64
		count  int
	}
	blocks := make([]block, 0, n-1)
	for i := 1; i < n; i++ {
		blocks = append(blocks, block{value: sign * means[i], weight: weights[i], count: 1})
		// Merge backwards while the ordering is violated.
		for len(blocks) >= 2 {
			last := blocks[len(blocks)-1]
			prev := blocks[len(blocks)-2]
			if prev.value <= last.value {
				break
			}
			merged := block{
				value:  (prev.value*prev.weight + last.value*last.weight) / (prev.weight + last.weight),
				weight: prev.weight + last.weight,
				count:  prev.count + last.count,
			}
			blocks = blocks[:len(blocks)-2]
			blocks = append(blocks, merged)
		}
	}

	idx := 1
	for _, b := range blocks {
		for k := 0; k < b.count; k++ {
			constrained[idx] = sign * b.value
			idx++
		}
	}
	return constrained
}
