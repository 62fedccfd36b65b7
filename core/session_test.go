package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHybridSession(t *testing.T) {
	sess := NewHybridSession("hybrid_1", map[string]any{"user_id": "u1"})

	assert.Equal(t, "hybrid_1", sess.ID)
	assert.Equal(t, StageAIAnalyzing, sess.Stage)
	assert.Equal(t, sess.CreatedAt, sess.UpdatedAt)
	assert.Empty(t, sess.History)
}

func TestAppendEntryBumpsUpdatedAt(t *testing.T) {
	sess := NewHybridSession("hybrid_1", nil)
	ts := time.Now().Add(time.Minute)

	sess.AppendEntry(Entry{Timestamp: ts, Actor: ActorSystem, Message: "escalated"})

	require.Len(t, sess.History, 1)
	assert.Equal(t, ts, sess.UpdatedAt)
}

func TestCloneIsolation(t *testing.T) {
	sess := NewHybridSession("hybrid_1", map[string]any{"user_id": "u1"})
	sess.AIAnalysis = &AIAnalysis{
		PrimaryDiagnosis: "Migraine",
		Differentials:    []Differential{{Condition: "Migraine", Probability: 0.8}},
		RedFlags:         []string{"sudden onset"},
	}
	sess.AppendEntry(Entry{
		Timestamp: time.Now(),
		Actor:     ActorSystem,
		Message:   "escalated",
		Metadata:  map[string]any{"reason": "low confidence"},
	})

	clone := sess.Clone()
	clone.PatientData["user_id"] = "u2"
	clone.AIAnalysis.PrimaryDiagnosis = "Stroke"
	clone.AIAnalysis.Differentials[0].Probability = 0.1
	clone.History[0].Metadata["reason"] = "changed"
	clone.Stage = StageCompleted

	assert.Equal(t, "u1", sess.PatientData["user_id"])
	assert.Equal(t, "Migraine", sess.AIAnalysis.PrimaryDiagnosis)
	assert.Equal(t, 0.8, sess.AIAnalysis.Differentials[0].Probability)
	assert.Equal(t, "low confidence", sess.History[0].Metadata["reason"])
	assert.Equal(t, StageAIAnalyzing, sess.Stage)
}

func TestKnownActor(t *testing.T) {
	for _, actor := range []string{ActorPatient, ActorAIAgent, ActorHumanDoctor, ActorSystem} {
		assert.True(t, KnownActor(actor), actor)
	}
	assert.False(t, KnownActor("nurse"))
	assert.False(t, KnownActor(""))
}
