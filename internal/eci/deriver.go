package eci

import (
	"fmt"
	"sort"

	"toxeval/domain/noael"

	"toxeval/internal/errors"
)

// DeriveWeightedNOAEL aggregates weighted endpoints across dose levels into
// the study NOAEL/LOAEL determination.
//
// Determining endpoints set the LOAEL at their minimum onset dose.
// Contributing endpoints require corroboration: a dose constrains the LOAEL
// only when two or more contributing endpoints share it (or a contributing
// endpoint shares it with a determining endpoint, which the determining
// branch already covers). A single uncorroborated contributing endpoint and
// all supporting endpoints never constrain the LOAEL.
//
// doseValues is the ordered ascending list of tested non-control doses.
func DeriveWeightedNOAEL(endpoints []noael.WeightedEndpoint, doseValues []float64) (*noael.Derivation, error) {
	if len(doseValues) == 0 {
		return nil, errors.InvalidInput("at least one tested dose is required to derive a NOAEL")
	}
	for i := 1; i < len(doseValues); i++ {
		if doseValues[i] <= doseValues[i-1] {
			return nil, errors.InvalidInput("tested doses must be strictly ascending")
		}
	}

	var determining, contributing, supporting []noael.WeightedEndpoint
	for _, ep := range endpoints {
		switch ep.Contribution.Label {
		case noael.LabelDetermining:
			determining = append(determining, ep)
		case noael.LabelContributing:
			contributing = append(contributing, ep)
		case noael.LabelSupporting:
			supporting = append(supporting, ep)
		}
		// excluded endpoints carry no evidentiary weight at all
	}

	derivation := &noael.Derivation{
		DeterminingEndpoints: determining,
		SupportingEndpoints:  supporting,
	}

	var loael *float64
	switch {
	case len(determining) > 0:
		min := determining[0].OnsetDose
		for _, ep := range determining[1:] {
			if ep.OnsetDose < min {
				min = ep.OnsetDose
			}
		}
		loael = &min
	case len(contributing) > 0:
		if dose, ok := minCorroboratedDose(contributing); ok {
			loael = &dose
		}
	}

	// Contributing endpoints are reported only when corroborated: either by
	// another contributing endpoint at the same onset dose or by any
	// determining endpoint at that dose.
	derivation.ContributingEndpoints = corroboratedContributing(contributing, determining)

	derivation.LOAEL = loael
	if loael == nil {
		// Study shows no adverse effect up to the top tested dose.
		top := doseValues[len(doseValues)-1]
		derivation.NOAEL = &top
		derivation.Rationale = fmt.Sprintf(
			"no determining endpoint and no corroborated contributing dose; NOAEL is the highest tested dose (%g)", top)
		return derivation, nil
	}

	// NOAEL is the tested dose immediately below the LOAEL. When the LOAEL
	// is already the lowest tested dose there is no tested dose below it:
	// reported explicitly, never silently assumed to be the untested control.
	var below *float64
	for i := range doseValues {
		if doseValues[i] < *loael {
			below = &doseValues[i]
		}
	}
	if below == nil {
		derivation.LOAELBelowLowestTested = true
		derivation.Rationale = fmt.Sprintf(
			"LOAEL %g is the lowest tested dose; NOAEL is below the lowest tested dose", *loael)
		return derivation, nil
	}

	derivation.NOAEL = below
	derivation.Rationale = fmt.Sprintf("LOAEL %g; NOAEL %g is the next lower tested dose", *loael, *below)
	return derivation, nil
}

// minCorroboratedDose returns the lowest onset dose shared by two or more
// contributing endpoints
func minCorroboratedDose(contributing []noael.WeightedEndpoint) (float64, bool) {
	counts := make(map[float64]int)
	for _, ep := range contributing {
		counts[ep.OnsetDose]++
	}

	var doses []float64
	for dose, n := range counts {
		if n >= 2 {
			doses = append(doses, dose)
		}
	}
	if len(doses) == 0 {
		return 0, false
	}
	sort.Float64s(doses)
	return doses[0], true
}

// corroboratedContributing filters contributing endpoints down to those with
// a corroborator at the same onset dose
func corroboratedContributing(contributing, determining []noael.WeightedEndpoint) []noael.WeightedEndpoint {
	counts := make(map[float64]int)
	for _, ep := range contributing {
		counts[ep.OnsetDose]++
	}
	determiningDoses := make(map[float64]bool)
	for _, ep := range determining {
		determiningDoses[ep.OnsetDose] = true
	}

	var corroborated []noael.WeightedEndpoint
	for _, ep := range contributing {
		if counts[ep.OnsetDose] >= 2 || determiningDoses[ep.OnsetDose] {
			corroborated = append(corroborated, ep)
		}
	}
	return corroborated
}
