// Package medagent provides a high-level façade over the diagnostic
// orchestrator and the hybrid session manager. Most applications interact
// with this package by:
//  1. Creating a MedAgent via New() (optionally overriding the generator,
//     gateway, store or analyzer)
//  2. Running diagnoses (RunDiagnosis) and driving collaboration sessions
//     (StartSession, SubmitHumanReview, AddCollaborationMessage,
//     RequestHumanEscalation, GetStatus)
//
// All defaults are safe for local development and testing: a degraded
// deterministic generator, the static reference gateway and an in-memory
// session store. Production deployments supply a provider-backed generator,
// real collaborator gateways, a durable store and a structured logger.
package medagent

import (
	"context"

	"github.com/sensoryx/medagent/core"
	"github.com/sensoryx/medagent/diagnosis"
	"github.com/sensoryx/medagent/gateway"
	"github.com/sensoryx/medagent/hybrid"
	"github.com/sensoryx/medagent/logging"
	"github.com/sensoryx/medagent/model"
)

// Options configure a MedAgent instance.
type Options struct {
	Generator model.Generator
	Gateway   gateway.Gateway
	Store     hybrid.Store
	// Analyzer overrides the default pipeline-backed analyzer used by the
	// hybrid track.
	Analyzer hybrid.Analyzer
	Logger   logging.Logger
}

// MedAgent aggregates the diagnostic pipeline and the hybrid session track.
type MedAgent struct {
	orchestrator *diagnosis.Orchestrator
	sessions     *hybrid.Manager
}

// New creates a MedAgent with optional overrides. Any unset collaborator is
// initialized with its in-process default.
func New(optFns ...func(o *Options)) *MedAgent {
	opts := Options{
		Generator: model.NewFallbackGenerator(),
		Gateway:   gateway.NewStaticGateway(),
		Store:     hybrid.NewInMemoryStore(),
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	orch := diagnosis.New(opts.Generator, opts.Gateway, func(o *diagnosis.Options) {
		o.Logger = opts.Logger
	})

	analyzer := opts.Analyzer
	if analyzer == nil {
		analyzer = hybrid.NewDiagnosisAnalyzer(orch)
	}

	mgr := hybrid.NewManager(opts.Store, analyzer, opts.Gateway, func(o *hybrid.Options) {
		o.Logger = opts.Logger
	})

	return &MedAgent{orchestrator: orch, sessions: mgr}
}

// Orchestrator exposes the diagnostic pipeline.
func (m *MedAgent) Orchestrator() *diagnosis.Orchestrator { return m.orchestrator }

// Sessions exposes the hybrid session manager.
func (m *MedAgent) Sessions() *hybrid.Manager { return m.sessions }

// RunDiagnosis executes the four-phase multi-agent pipeline.
func (m *MedAgent) RunDiagnosis(ctx context.Context, symptoms string, patientData map[string]any, requesterID string) (*core.DiagnosticResult, error) {
	return m.orchestrator.Run(ctx, symptoms, patientData, requesterID)
}

// StartSession starts a hybrid collaboration session.
func (m *MedAgent) StartSession(ctx context.Context, patientData map[string]any, symptoms, urgency string) (*hybrid.StartResult, error) {
	return m.sessions.StartSession(ctx, patientData, symptoms, urgency)
}

// SubmitHumanReview records a doctor's validation of the AI analysis.
func (m *MedAgent) SubmitHumanReview(ctx context.Context, sessionID, doctorID, doctorName string, review core.HumanReview) (*hybrid.ReviewResult, error) {
	return m.sessions.SubmitHumanReview(ctx, sessionID, doctorID, doctorName, review)
}

// AddCollaborationMessage appends a message to a session transcript.
func (m *MedAgent) AddCollaborationMessage(ctx context.Context, sessionID, actor, message string, metadata map[string]any) (*hybrid.MessageResult, error) {
	return m.sessions.AddCollaborationMessage(ctx, sessionID, actor, message, metadata)
}

// RequestHumanEscalation routes a session to human review.
func (m *MedAgent) RequestHumanEscalation(ctx context.Context, sessionID, reason, patientMessage string) (*hybrid.Escalation, error) {
	return m.sessions.RequestHumanEscalation(ctx, sessionID, reason, patientMessage)
}

// GetStatus returns a session snapshot.
func (m *MedAgent) GetStatus(ctx context.Context, sessionID string) (*hybrid.Status, error) {
	return m.sessions.GetStatus(ctx, sessionID)
}
