package diagnosis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sensoryx/medagent/core"
)

func TestExtractSpecialties(t *testing.T) {
	tests := []struct {
		name      string
		narrative string
		want      []core.AgentKind
	}{
		{
			name:      "cardiac keywords",
			narrative: "Chest pain radiating to the left arm, possible cardiac origin.",
			want:      []core.AgentKind{core.AgentCardiology},
		},
		{
			name:      "neurological keywords",
			narrative: "Classic migraine presentation with aura.",
			want:      []core.AgentKind{core.AgentNeurology},
		},
		{
			name:      "multiple specialties",
			narrative: "Heart palpitations alongside persistent stomach discomfort.",
			want:      []core.AgentKind{core.AgentCardiology, core.AgentGastroenterology},
		},
		{
			name:      "case insensitive",
			narrative: "POSSIBLE GERD, RECOMMEND ENDOSCOPY",
			want:      []core.AgentKind{core.AgentGastroenterology},
		},
		{
			name:      "no match falls back to default pair",
			narrative: "General fatigue, no specific findings.",
			want:      []core.AgentKind{core.AgentCardiology, core.AgentNeurology},
		},
		{
			name:      "empty narrative",
			narrative: "",
			want:      []core.AgentKind{core.AgentCardiology, core.AgentNeurology},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSpecialties(tt.narrative))
		})
	}
}

func TestExtractConditions(t *testing.T) {
	specialists := map[string]core.Assessment{
		"neurology":        {Narrative: "Findings consistent with migraine with aura."},
		"gastroenterology": {Narrative: "Symptoms suggest GERD; recommend acid suppression."},
		"cardiology":       {Narrative: "No acute findings."},
	}

	conditions := ExtractConditions(specialists)

	// Sorted specialty order: cardiology yields nothing, then gastro, then neuro.
	assert.Equal(t, []Condition{
		{Condition: "GERD", Treatment: "Proton pump inhibitors"},
		{Condition: "Migraine", Treatment: "Triptans medication"},
	}, conditions)
}

// Migraine wins over cardiac mentions within the same narrative.
func TestExtractConditionsPrecedence(t *testing.T) {
	specialists := map[string]core.Assessment{
		"neurology": {Narrative: "Migraine likely; cardiac causes ruled out."},
	}

	assert.Equal(t, []Condition{
		{Condition: "Migraine", Treatment: "Triptans medication"},
	}, ExtractConditions(specialists))
}

func TestExtractConditionsCardiac(t *testing.T) {
	specialists := map[string]core.Assessment{
		"cardiology": {Narrative: "Presentation concerning for acute cardiac event."},
	}

	assert.Equal(t, []Condition{
		{Condition: "Cardiac Event", Treatment: "Emergency care"},
	}, ExtractConditions(specialists))
}

func TestExtractConditionsGeneralFallback(t *testing.T) {
	specialists := map[string]core.Assessment{
		"cardiology": {Narrative: "Nothing remarkable."},
	}

	assert.Equal(t, []Condition{
		{Condition: "General", Treatment: "Standard care"},
	}, ExtractConditions(specialists))

	assert.Equal(t, []Condition{
		{Condition: "General", Treatment: "Standard care"},
	}, ExtractConditions(nil))
}

func TestFormatAssessmentsTruncates(t *testing.T) {
	long := strings.Repeat("a", 400)
	out := formatAssessments(
		core.Assessment{Narrative: long},
		map[string]core.Assessment{"neurology": {Narrative: "short"}},
		core.Assessment{Narrative: "cost summary"},
	)

	assert.Contains(t, out, "TRIAGE: "+strings.Repeat("a", assessmentExcerptLimit)+"...")
	assert.Contains(t, out, "NEUROLOGY: short")
	assert.Contains(t, out, "FINANCIAL: cost summary")
	assert.NotContains(t, out, strings.Repeat("a", assessmentExcerptLimit+1))
}

func TestFormatConditions(t *testing.T) {
	out := formatConditions([]Condition{
		{Condition: "Migraine", Treatment: "Triptans medication"},
		{Condition: "GERD", Treatment: "Proton pump inhibitors"},
	})

	assert.Equal(t, "- Migraine (Triptans medication)\n- GERD (Proton pump inhibitors)", out)
}
