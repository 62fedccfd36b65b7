package diagnosis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensoryx/medagent/core"
	"github.com/sensoryx/medagent/gateway"
	"github.com/sensoryx/medagent/model"
)

// selectiveGenerator fails calls whose system prompt contains failMatch and
// delegates the rest to the mock.
type selectiveGenerator struct {
	*model.MockGenerator
	failMatch string
}

func (g *selectiveGenerator) GenerateText(ctx context.Context, systemPrompt, userContext string) (string, error) {
	if strings.Contains(systemPrompt, g.failMatch) {
		return "", errors.New("provider timeout")
	}
	return g.MockGenerator.GenerateText(ctx, systemPrompt, userContext)
}

func TestRunRequiresSymptoms(t *testing.T) {
	orch := New(model.NewMockGenerator(), gateway.NewStaticGateway())

	_, err := orch.Run(context.Background(), "", nil, "u1")
	require.Error(t, err)
}

func TestRunFullPipeline(t *testing.T) {
	gen := model.NewMockGenerator()
	gen.AddResponse("Triage Specialist", "High urgency. Chest pain suggests a cardiac workup.")
	gen.AddResponse("Cardiologist", "Likely cardiac event, recommend emergency care.")
	gen.AddResponse("Financial Advisor", "Emergency care is high cost; insurance applies.")
	gen.AddResponse("Coordinator", "Unified plan: immediate emergency department referral.")

	orch := New(gen, gateway.NewStaticGateway())

	result, err := orch.Run(context.Background(), "crushing chest pain radiating to left arm", map[string]any{"age": 58}, "user42")
	require.NoError(t, err)

	assert.Equal(t, "user42", result.RequesterID)
	assert.False(t, result.Triage.Error)

	// Triage narrative mentions chest and cardiac, so only cardiology is consulted.
	require.Len(t, result.Specialists, 1)
	cardio, ok := result.Specialists["cardiology"]
	require.True(t, ok)
	assert.Equal(t, "Likely cardiac event, recommend emergency care.", cardio.Narrative)

	assert.Contains(t, result.Financial.Narrative, "insurance")
	assert.Contains(t, result.Synthesis.Narrative, "Unified plan")

	// Known requester: triage performs both the search and the timeline lookup.
	assert.Equal(t, []string{gateway.ToolSearchSymptoms, gateway.ToolPatientTimeline}, result.Triage.ToolsInvoked)
	// Coordinator reasons only over prior assessments.
	assert.Empty(t, result.Synthesis.ToolsInvoked)
}

func TestRunAnonymousSkipsTimeline(t *testing.T) {
	gen := model.NewMockGenerator()
	orch := New(gen, gateway.NewStaticGateway())

	result, err := orch.Run(context.Background(), "headache", nil, "")
	require.NoError(t, err)

	assert.Equal(t, AnonymousRequester, result.RequesterID)
	assert.Equal(t, []string{gateway.ToolSearchSymptoms}, result.Triage.ToolsInvoked)
}

func TestRunSpecialistKeysAreConsultable(t *testing.T) {
	gen := model.NewMockGenerator()
	gen.AddResponse("Triage Specialist", "Heart symptoms with brain fog and stomach upset.")
	orch := New(gen, gateway.NewStaticGateway())

	result, err := orch.Run(context.Background(), "mixed symptoms", nil, "u1")
	require.NoError(t, err)

	require.Len(t, result.Specialists, 3)
	valid := make(map[string]bool)
	for _, sp := range core.ConsultableSpecialties {
		valid[string(sp)] = true
	}
	for key := range result.Specialists {
		assert.True(t, valid[key], key)
	}
}

// A failed specialist records an errored assessment; the run still completes
// with all four phases present.
func TestRunTolerantOfSpecialistFailure(t *testing.T) {
	mock := model.NewMockGenerator()
	mock.AddResponse("Triage Specialist", "Chest pain and migraine history, consult both.")
	mock.AddResponse("Neurologist", "Migraine is the most likely diagnosis.")
	gen := &selectiveGenerator{MockGenerator: mock, failMatch: "Cardiologist"}

	orch := New(gen, gateway.NewStaticGateway())

	result, err := orch.Run(context.Background(), "chest pain with migraines", nil, "u1")
	require.NoError(t, err)

	require.Len(t, result.Specialists, 2)
	assert.True(t, result.Specialists["cardiology"].Error)
	assert.Equal(t, "provider timeout", result.Specialists["cardiology"].ErrorMessage)
	assert.False(t, result.Specialists["neurology"].Error)

	assert.False(t, result.Financial.Error)
	assert.False(t, result.Synthesis.Error)
}

func TestRunConditionsDriveFinancialPhase(t *testing.T) {
	gen := model.NewMockGenerator()
	gen.AddResponse("Triage Specialist", "Stomach symptoms, gastroenterology consult.")
	gen.AddResponse("Gastroenterologist", "GERD confirmed by symptom pattern.")
	orch := New(gen, gateway.NewStaticGateway())

	result, err := orch.Run(context.Background(), "burning stomach pain", nil, "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{gateway.ToolTreatmentCost}, result.Financial.ToolsInvoked)
}
