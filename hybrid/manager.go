// Package hybrid owns the human-AI collaboration track: long-lived sessions
// pairing an AI analysis with an optional human-doctor review, the
// escalation policy deciding which cases need human attention, and the
// confidence blending between both tracks. All session mutation goes through
// the Manager; the injected Store serializes mutating operations per session.
package hybrid

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sensoryx/medagent/core"
	"github.com/sensoryx/medagent/gateway"
	"github.com/sensoryx/medagent/logging"
)

// Options configure a Manager.
type Options struct {
	Logger logging.Logger
	// Clock overrides time.Now for tests.
	Clock func() time.Time
}

// Manager drives hybrid collaboration sessions.
type Manager struct {
	store    Store
	analyzer Analyzer
	gw       gateway.Gateway
	logger   logging.Logger
	now      func() time.Time
}

// NewManager constructs a session manager.
func NewManager(store Store, analyzer Analyzer, gw gateway.Gateway, optFns ...func(o *Options)) *Manager {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Clock:  time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{
		store:    store,
		analyzer: analyzer,
		gw:       gw,
		logger:   opts.Logger,
		now:      opts.Clock,
	}
}

// StartResult is the outcome of starting a session.
type StartResult struct {
	SessionID         string           `json:"session_id"`
	Stage             core.Stage       `json:"stage"`
	AIAnalysis        *core.AIAnalysis `json:"ai_analysis"`
	NeedsHumanReview  bool             `json:"needs_human_review"`
	EstimatedWaitTime string           `json:"estimated_wait_time"`
	CollaborationType string           `json:"collaboration_type"`
}

// StartSession creates a session, obtains the AI analysis and applies the
// escalation policy. Sessions needing human review land in
// human_review_pending with a system transcript entry recording the reason;
// otherwise the session completes immediately with the AI recommendation.
func (m *Manager) StartSession(ctx context.Context, patientData map[string]any, symptoms, urgency string) (*StartResult, error) {
	if symptoms == "" {
		return nil, fmt.Errorf("symptom description is required")
	}
	if urgency == "" {
		urgency = "medium"
	}

	sess := core.NewHybridSession("hybrid_"+uuid.NewString(), patientData)

	ai, err := m.analyzer.Analyze(ctx, symptoms, patientData, urgency)
	if err != nil {
		return nil, fmt.Errorf("ai analysis: %w", err)
	}
	sess.AIAnalysis = ai
	sess.Confidence.AI = ai.Confidence

	needsHuman := ShouldEscalate(ai, urgency)
	if needsHuman {
		sess.Stage = core.StageHumanReviewPending
		reason := ai.EscalationReason
		if reason == "" {
			reason = defaultEscalationReason
		}
		sess.AppendEntry(core.Entry{
			Timestamp: m.now(),
			Actor:     core.ActorSystem,
			Message:   "AI analysis complete. Escalating to human doctor for validation.",
			Metadata:  map[string]any{"reason": reason},
		})
	} else {
		sess.Stage = core.StageCompleted
		sess.FinalRecommendation = RecommendationFromAnalysis(ai)
	}

	if err := m.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	m.logger.Info("hybrid session started",
		"session_id", sess.ID, "stage", sess.Stage, "needs_human_review", needsHuman)

	result := &StartResult{
		SessionID:         sess.ID,
		Stage:             sess.Stage,
		AIAnalysis:        ai,
		NeedsHumanReview:  needsHuman,
		EstimatedWaitTime: "0 minutes",
		CollaborationType: "ai_only",
	}
	if needsHuman {
		result.EstimatedWaitTime = "5-15 minutes"
		result.CollaborationType = "hybrid"
	}
	return result, nil
}

// ReviewResult is the outcome of a human review submission.
type ReviewResult struct {
	SessionID      string               `json:"session_id"`
	Stage          core.Stage           `json:"stage"`
	Recommendation *core.Recommendation `json:"hybrid_recommendation"`
	Consensus      bool                 `json:"consensus"`
	Confidence     float64              `json:"confidence"`
}

// SubmitHumanReview stores the doctor's review, blends it with the AI
// analysis into the hybrid recommendation and settles the session in
// consensus_reached or disagreement. It is only accepted while a human
// review is pending or in progress; reopening a completed session requires
// RequestHumanEscalation.
func (m *Manager) SubmitHumanReview(ctx context.Context, sessionID, doctorID, doctorName string, review core.HumanReview) (*ReviewResult, error) {
	var result ReviewResult

	sess, err := m.store.Update(ctx, sessionID, func(sess *core.HybridSession) error {
		switch sess.Stage {
		case core.StageHumanReviewPending, core.StageHumanReviewing:
		default:
			return &core.InvalidStageError{Op: "submit_human_review", Stage: sess.Stage}
		}

		sess.Stage = core.StageHumanReviewing

		review.DoctorID = doctorID
		review.DoctorName = doctorName
		review.Timestamp = m.now()
		if review.Confidence == 0 {
			review.Confidence = defaultHumanConfidenceScore
		}
		sess.HumanReview = &review

		rec := BlendRecommendation(sess.AIAnalysis, &review)
		consensus := CheckConsensus(sess.AIAnalysis, &review)
		if consensus {
			sess.Stage = core.StageConsensusReached
		} else {
			sess.Stage = core.StageDisagreement
		}
		sess.FinalRecommendation = rec
		sess.Confidence.Human = review.Confidence
		sess.Confidence.Hybrid = round2(sess.Confidence.AI*sessionAIWeight + sess.Confidence.Human*sessionHumanWeight)

		sess.AppendEntry(core.Entry{
			Timestamp: m.now(),
			Actor:     core.ActorHumanDoctor,
			Message:   "review_submitted",
			Metadata: map[string]any{
				"doctor_name":    doctorName,
				"agrees_with_ai": consensus,
			},
		})

		result = ReviewResult{
			SessionID:      sess.ID,
			Stage:          sess.Stage,
			Recommendation: rec,
			Consensus:      consensus,
			Confidence:     sess.Confidence.Hybrid,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("human review submitted",
		"session_id", sess.ID, "doctor_id", doctorID, "stage", sess.Stage, "consensus", result.Consensus)

	return &result, nil
}

// MessageResult is the outcome of adding a collaboration message.
type MessageResult struct {
	SessionID  string     `json:"session_id"`
	Entry      core.Entry `json:"message_added"`
	AIResponse string     `json:"ai_response,omitempty"`
	Stage      core.Stage `json:"current_stage"`
}

// AddCollaborationMessage appends a message to the session transcript. A
// patient message arriving while the human review is still pending also
// receives an immediate AI quick response, keeping the patient engaged
// without blocking on human availability.
func (m *Manager) AddCollaborationMessage(ctx context.Context, sessionID, actor, message string, metadata map[string]any) (*MessageResult, error) {
	if !core.KnownActor(actor) {
		return nil, fmt.Errorf("unknown actor %q", actor)
	}

	var result MessageResult

	_, err := m.store.Update(ctx, sessionID, func(sess *core.HybridSession) error {
		entry := core.Entry{
			Timestamp: m.now(),
			Actor:     actor,
			Message:   message,
			Metadata:  metadata,
		}
		sess.AppendEntry(entry)

		result = MessageResult{SessionID: sess.ID, Entry: entry, Stage: sess.Stage}

		if actor == core.ActorPatient && sess.Stage == core.StageHumanReviewPending {
			response := QuickResponse(message, sess.AIAnalysis)
			sess.AppendEntry(core.Entry{
				Timestamp: m.now(),
				Actor:     core.ActorAIAgent,
				Message:   response,
				Metadata:  map[string]any{"type": "quick_response"},
			})
			result.AIResponse = response
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Escalation is the outcome of a human escalation request.
type Escalation struct {
	SessionID             string               `json:"session_id"`
	Status                string               `json:"escalation_status"`
	Priority              string               `json:"priority"`
	SuggestedDoctor       *gateway.DoctorMatch `json:"suggested_doctor,omitempty"`
	EstimatedResponseTime string               `json:"estimated_response_time"`
}

// RequestHumanEscalation routes a case to human review. A completed session
// reopens at human_review_pending; the escalation is recorded in the
// transcript with a computed priority tier, and a suggested human reviewer
// is looked up through the doctor-matching collaborator.
func (m *Manager) RequestHumanEscalation(ctx context.Context, sessionID, reason, patientMessage string) (*Escalation, error) {
	var (
		priority string
		symptoms string
		urgency  = "medium"
	)

	sess, err := m.store.Update(ctx, sessionID, func(sess *core.HybridSession) error {
		if sess.Stage == core.StageCompleted {
			sess.Stage = core.StageHumanReviewPending
		}

		priority = DeterminePriority(reason, sess.AIAnalysis)
		if sess.AIAnalysis != nil {
			symptoms = sess.AIAnalysis.Symptoms
			if sess.AIAnalysis.Urgency != "" {
				urgency = sess.AIAnalysis.Urgency
			}
		}

		metadata := map[string]any{
			"action":   "escalation_requested",
			"reason":   reason,
			"priority": priority,
		}
		if patientMessage != "" {
			metadata["patient_message"] = patientMessage
		}
		sess.AppendEntry(core.Entry{
			Timestamp: m.now(),
			Actor:     core.ActorSystem,
			Message:   "Human escalation requested.",
			Metadata:  metadata,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	escalation := &Escalation{
		SessionID:             sess.ID,
		Status:                "pending",
		Priority:              priority,
		EstimatedResponseTime: "10-30 minutes",
	}

	match, err := m.gw.MatchDoctor(ctx, symptoms, urgency, sess.PatientData)
	if err != nil {
		// Doctor matching is advisory; the escalation itself already stands.
		m.logger.Warn("doctor matching failed", "session_id", sessionID, "error", err.Error())
	} else {
		escalation.SuggestedDoctor = &match
	}

	m.logger.Info("human escalation requested",
		"session_id", sessionID, "priority", priority)

	return escalation, nil
}

// Timeline summarizes the collaboration timing of a session.
type Timeline struct {
	Started         time.Time `json:"started"`
	LastUpdated     time.Time `json:"last_updated"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// Status is a read-only snapshot of a session.
type Status struct {
	SessionID           string                `json:"session_id"`
	Stage               core.Stage            `json:"stage"`
	AIAnalysis          *core.AIAnalysis      `json:"ai_analysis,omitempty"`
	HumanReview         *core.HumanReview     `json:"human_review,omitempty"`
	FinalRecommendation *core.Recommendation  `json:"final_recommendation,omitempty"`
	Confidence          core.ConfidenceScores `json:"confidence_scores"`
	History             []core.Entry          `json:"conversation_history"`
	Timeline            Timeline              `json:"collaboration_timeline"`
}

// GetStatus returns the current snapshot of a session.
func (m *Manager) GetStatus(ctx context.Context, sessionID string) (*Status, error) {
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Status{
		SessionID:           sess.ID,
		Stage:               sess.Stage,
		AIAnalysis:          sess.AIAnalysis,
		HumanReview:         sess.HumanReview,
		FinalRecommendation: sess.FinalRecommendation,
		Confidence:          sess.Confidence,
		History:             sess.History,
		Timeline: Timeline{
			Started:         sess.CreatedAt,
			LastUpdated:     sess.UpdatedAt,
			DurationMinutes: m.now().Sub(sess.CreatedAt).Minutes(),
		},
	}, nil
}
