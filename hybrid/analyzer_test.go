package hybrid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensoryx/medagent/diagnosis"
	"github.com/sensoryx/medagent/gateway"
	"github.com/sensoryx/medagent/model"
)

func TestDiagnosisAnalyzerCondensesPipeline(t *testing.T) {
	gen := model.NewMockGenerator()
	gen.AddResponse("Triage Specialist", "Headache pattern, neurology consult advised.")
	gen.AddResponse("Neurologist", "Migraine is the leading diagnosis.")
	analyzer := NewDiagnosisAnalyzer(diagnosis.New(gen, gateway.NewStaticGateway()))

	ai, err := analyzer.Analyze(context.Background(), "throbbing headache with nausea", map[string]any{"user_id": "u1"}, "medium")
	require.NoError(t, err)

	assert.Equal(t, "Migraine", ai.PrimaryDiagnosis)
	assert.Equal(t, 0.80, ai.Confidence)
	assert.Equal(t, "Triptans medication", ai.RecommendedTreatment)
	assert.Equal(t, "medium", ai.Urgency)
	assert.Empty(t, ai.EscalationReason)

	require.NotEmpty(t, ai.Differentials)
	assert.Equal(t, "Migraine", ai.Differentials[0].Condition)
	assert.Equal(t, 0.80, ai.Differentials[0].Probability)

	assert.Contains(t, ai.AgentsConsulted, "triage")
	assert.Contains(t, ai.AgentsConsulted, "neurology")
	assert.Contains(t, ai.AgentsConsulted, "financial")
	assert.Contains(t, ai.AgentsConsulted, "coordinator")
}

func TestDiagnosisAnalyzerDegradesOnPipelineErrors(t *testing.T) {
	gen := model.NewMockGenerator()
	gen.FailWith(errors.New("provider down"))
	analyzer := NewDiagnosisAnalyzer(diagnosis.New(gen, gateway.NewStaticGateway()))

	ai, err := analyzer.Analyze(context.Background(), "unclear symptoms", nil, "low")
	require.NoError(t, err)

	// Every narrative errored: general fallback minus the failure penalty.
	assert.Equal(t, "General", ai.PrimaryDiagnosis)
	assert.InDelta(t, 0.45, ai.Confidence, 0.001)
	assert.Equal(t, "Partial pipeline failure - human validation recommended", ai.EscalationReason)
}

func TestDiagnosisAnalyzerPropagatesRunError(t *testing.T) {
	analyzer := NewDiagnosisAnalyzer(diagnosis.New(model.NewMockGenerator(), gateway.NewStaticGateway()))

	_, err := analyzer.Analyze(context.Background(), "", nil, "low")
	require.Error(t, err)
}

func TestStaticAnalyzer(t *testing.T) {
	ai, err := StaticAnalyzer{}.Analyze(context.Background(), "headache", nil, "medium")
	require.NoError(t, err)

	assert.Equal(t, "Tension Headache", ai.PrimaryDiagnosis)
	assert.Equal(t, 0.78, ai.Confidence)
	assert.Equal(t, "medium", ai.Urgency)
	assert.Len(t, ai.Differentials, 3)
}
