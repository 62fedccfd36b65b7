package core

import "time"

// Stage is the collaboration state of a hybrid session.
//
// Lifecycle: ai_analyzing → human_review_pending → human_reviewing →
// {consensus_reached | disagreement} → completed. A session that needs no
// human review goes ai_analyzing → completed directly; an escalation request
// reopens a completed session at human_review_pending.
type Stage string

const (
	StageAIAnalyzing        Stage = "ai_analyzing"
	StageHumanReviewPending Stage = "human_review_pending"
	StageHumanReviewing     Stage = "human_reviewing"
	StageConsensusReached   Stage = "consensus_reached"
	StageDisagreement       Stage = "disagreement"
	StageCompleted          Stage = "completed"
)

// Transcript actors.
const (
	ActorPatient     = "patient"
	ActorAIAgent     = "ai_agent"
	ActorHumanDoctor = "human_doctor"
	ActorSystem      = "system"
)

// KnownActor reports whether actor is one of the four transcript actors.
func KnownActor(actor string) bool {
	switch actor {
	case ActorPatient, ActorAIAgent, ActorHumanDoctor, ActorSystem:
		return true
	}
	return false
}

// Entry is one message in a session's append-only conversation history.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Actor     string         `json:"actor"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ConfidenceScores tracks the AI, human and blended session confidence,
// all in [0,1].
type ConfidenceScores struct {
	AI     float64 `json:"ai"`
	Human  float64 `json:"human"`
	Hybrid float64 `json:"hybrid"`
}

// HybridSession is a long-lived collaboration record pairing an AI assessment
// with an optional human review. Its mutable state is owned exclusively by
// the hybrid session manager; callers mutate it only through manager
// operations, never directly.
type HybridSession struct {
	ID                  string           `json:"session_id"`
	PatientData         map[string]any   `json:"patient_data,omitempty"`
	Stage               Stage            `json:"stage"`
	AIAnalysis          *AIAnalysis      `json:"ai_analysis,omitempty"`
	HumanReview         *HumanReview     `json:"human_review,omitempty"`
	FinalRecommendation *Recommendation  `json:"final_recommendation,omitempty"`
	Confidence          ConfidenceScores `json:"confidence_scores"`
	History             []Entry          `json:"conversation_history"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// NewHybridSession creates a session in the ai_analyzing stage.
func NewHybridSession(id string, patientData map[string]any) *HybridSession {
	now := time.Now()
	return &HybridSession{
		ID:          id,
		PatientData: patientData,
		Stage:       StageAIAnalyzing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AppendEntry appends a transcript entry and bumps the update timestamp.
func (s *HybridSession) AppendEntry(e Entry) {
	s.History = append(s.History, e)
	s.UpdatedAt = e.Timestamp
}

// Clone returns a deep copy so stores can hand out snapshots without
// exposing internal state to callers.
func (s *HybridSession) Clone() *HybridSession {
	c := *s

	if s.PatientData != nil {
		c.PatientData = make(map[string]any, len(s.PatientData))
		for k, v := range s.PatientData {
			c.PatientData[k] = v
		}
	}
	if s.AIAnalysis != nil {
		ai := *s.AIAnalysis
		ai.Differentials = append([]Differential(nil), s.AIAnalysis.Differentials...)
		ai.RedFlags = append([]string(nil), s.AIAnalysis.RedFlags...)
		ai.AgentsConsulted = append([]string(nil), s.AIAnalysis.AgentsConsulted...)
		c.AIAnalysis = &ai
	}
	if s.HumanReview != nil {
		hr := *s.HumanReview
		hr.Modifications = append([]string(nil), s.HumanReview.Modifications...)
		hr.NextSteps = append([]string(nil), s.HumanReview.NextSteps...)
		c.HumanReview = &hr
	}
	if s.FinalRecommendation != nil {
		fr := *s.FinalRecommendation
		fr.AIInsights.Differentials = append([]Differential(nil), s.FinalRecommendation.AIInsights.Differentials...)
		fr.NextSteps = append([]string(nil), s.FinalRecommendation.NextSteps...)
		if s.FinalRecommendation.HumanValidation != nil {
			hv := *s.FinalRecommendation.HumanValidation
			hv.Modifications = append([]string(nil), s.FinalRecommendation.HumanValidation.Modifications...)
			fr.HumanValidation = &hv
		}
		c.FinalRecommendation = &fr
	}
	c.History = make([]Entry, len(s.History))
	for i, e := range s.History {
		ce := e
		if e.Metadata != nil {
			ce.Metadata = make(map[string]any, len(e.Metadata))
			for k, v := range e.Metadata {
				ce.Metadata[k] = v
			}
		}
		c.History[i] = ce
	}

	return &c
}
