package diagnosis

import (
	"sort"
	"strings"

	"github.com/sensoryx/medagent/core"
)

// The routing and extraction heuristics below are part of the observable
// contract of the pipeline; their keyword lists and thresholds must not be
// changed without flagging a behavior change.

type specialtyRule struct {
	specialty core.AgentKind
	keywords  []string
}

var specialtyRules = []specialtyRule{
	{core.AgentCardiology, []string{"heart", "cardiac", "chest"}},
	{core.AgentNeurology, []string{"head", "neuro", "brain", "migraine"}},
	{core.AgentGastroenterology, []string{"stomach", "abdominal", "digest", "gerd"}},
}

// defaultSpecialties is consulted when the triage narrative matches no
// specialty keywords.
var defaultSpecialties = []core.AgentKind{core.AgentCardiology, core.AgentNeurology}

// ExtractSpecialties derives the phase-2 candidate specialty set from the
// triage narrative by case-insensitive keyword matching.
func ExtractSpecialties(triageNarrative string) []core.AgentKind {
	narrative := strings.ToLower(triageNarrative)

	var specialties []core.AgentKind
	for _, rule := range specialtyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(narrative, kw) {
				specialties = append(specialties, rule.specialty)
				break
			}
		}
	}
	if len(specialties) == 0 {
		return append([]core.AgentKind(nil), defaultSpecialties...)
	}
	return specialties
}

// Condition is one coarse condition/treatment pair extracted from specialist
// narratives for the financial phase.
type Condition struct {
	Condition string `json:"condition"`
	Treatment string `json:"treatment"`
}

// ExtractConditions scans each specialist narrative for condition keywords,
// in a fixed precedence (migraine, then gerd, then cardiac). When nothing
// matches across all narratives it returns the general/standard-care pair.
// Specialties are visited in sorted order so output is deterministic.
func ExtractConditions(specialists map[string]core.Assessment) []Condition {
	keys := make([]string, 0, len(specialists))
	for k := range specialists {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var conditions []Condition
	for _, k := range keys {
		narrative := strings.ToLower(specialists[k].Narrative)
		switch {
		case strings.Contains(narrative, "migraine"):
			conditions = append(conditions, Condition{Condition: "Migraine", Treatment: "Triptans medication"})
		case strings.Contains(narrative, "gerd"):
			conditions = append(conditions, Condition{Condition: "GERD", Treatment: "Proton pump inhibitors"})
		case strings.Contains(narrative, "cardiac"), strings.Contains(narrative, "heart"):
			conditions = append(conditions, Condition{Condition: "Cardiac Event", Treatment: "Emergency care"})
		}
	}

	if len(conditions) == 0 {
		return []Condition{{Condition: "General", Treatment: "Standard care"}}
	}
	return conditions
}

// assessmentExcerptLimit bounds each narrative forwarded to the coordinator
// so the synthesis prompt stays a manageable size.
const assessmentExcerptLimit = 300

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// formatAssessments renders every prior narrative for the coordinator phase.
func formatAssessments(triage core.Assessment, specialists map[string]core.Assessment, financial core.Assessment) string {
	var b strings.Builder
	b.WriteString("\nTRIAGE: ")
	b.WriteString(truncate(triage.Narrative, assessmentExcerptLimit))

	keys := make([]string, 0, len(specialists))
	for k := range specialists {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("\n")
		b.WriteString(strings.ToUpper(k))
		b.WriteString(": ")
		b.WriteString(truncate(specialists[k].Narrative, assessmentExcerptLimit))
	}

	b.WriteString("\nFINANCIAL: ")
	b.WriteString(truncate(financial.Narrative, assessmentExcerptLimit))
	return b.String()
}

func formatConditions(conditions []Condition) string {
	var b strings.Builder
	for _, c := range conditions {
		b.WriteString("- ")
		b.WriteString(c.Condition)
		b.WriteString(" (")
		b.WriteString(c.Treatment)
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
