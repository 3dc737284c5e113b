package app

import (
	"fmt"
	"strings"

	"toxeval/domain/noael"
)

// BuildReport renders a study evaluation as a deterministic markdown
// report: same evaluation in, same bytes out. The API layer renders this
// to HTML; the CLI prints it verbatim.
func BuildReport(evaluation *StudyEvaluation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Study Evaluation Report: %s\n\n", evaluation.StudyID)
	fmt.Fprintf(&b, "- Run: `%s`\n", evaluation.RunID)
	fmt.Fprintf(&b, "- Input fingerprint: `%s`\n", evaluation.Fingerprint)
	fmt.Fprintf(&b, "- Tested doses: %s\n\n", formatDoses(evaluation.DoseValues))

	d := evaluation.Derivation
	b.WriteString("## NOAEL / LOAEL Determination\n\n")
	if d.LOAELBelowLowestTested {
		fmt.Fprintf(&b, "- **LOAEL**: %s (lowest tested dose)\n", FormatDose(d.LOAEL))
		b.WriteString("- **NOAEL**: below the lowest tested dose\n")
	} else {
		fmt.Fprintf(&b, "- **LOAEL**: %s\n", FormatDose(d.LOAEL))
		fmt.Fprintf(&b, "- **NOAEL**: %s\n", FormatDose(d.NOAEL))
	}
	fmt.Fprintf(&b, "\n%s\n\n", d.Rationale)

	writeEndpointList(&b, "Determining endpoints", d.DeterminingEndpoints)
	writeEndpointList(&b, "Contributing endpoints (corroborated)", d.ContributingEndpoints)
	writeEndpointList(&b, "Supporting endpoints", d.SupportingEndpoints)

	b.WriteString("## Endpoint Confidence Detail\n\n")
	b.WriteString("| Endpoint | Sex | Pattern | Integrated | Limiting factor | Weight | Caveats |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, ep := range evaluation.Endpoints {
		eval := ep.Evaluation
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %.1f | %d |\n",
			eval.Summary.Label, eval.Sex, eval.Pattern,
			eval.Confidence.Integrated, eval.Confidence.LimitingFactor,
			ep.Weighted.Contribution.Weight, len(ep.Weighted.Contribution.Caveats))
	}
	b.WriteString("\n")

	caveatsWritten := false
	for _, ep := range evaluation.Endpoints {
		for _, caveat := range ep.Weighted.Contribution.Caveats {
			if !caveatsWritten {
				b.WriteString("## Caveats\n\n")
				caveatsWritten = true
			}
			fmt.Fprintf(&b, "- **%s (%s)**: %s\n", ep.Evaluation.Summary.Label, ep.Evaluation.Sex, caveat)
		}
	}
	if caveatsWritten {
		b.WriteString("\n")
	}

	return b.String()
}

func writeEndpointList(b *strings.Builder, title string, endpoints []noael.WeightedEndpoint) {
	if len(endpoints) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, ep := range endpoints {
		fmt.Fprintf(b, "- %s (%s, %s), onset dose %g, weight %.1f\n",
			ep.Endpoint, ep.Organ, ep.Sex, ep.OnsetDose, ep.Contribution.Weight)
	}
	b.WriteString("\n")
}

func formatDoses(doses []float64) string {
	parts := make([]string, len(doses))
	for i, d := range doses {
		parts[i] = fmt.Sprintf("%g", d)
	}
	return strings.Join(parts, ", ")
}
