package hybrid

import (
	"context"
	"time"

	"github.com/sensoryx/medagent/core"
	"github.com/sensoryx/medagent/diagnosis"
)

// Analyzer produces the structured AI analysis attached to a new session.
type Analyzer interface {
	Analyze(ctx context.Context, symptoms string, patientData map[string]any, urgency string) (*core.AIAnalysis, error)
}

// DiagnosisAnalyzer runs the multi-agent diagnostic pipeline and condenses
// its result into a session analysis. Primary diagnosis and treatment come
// from the condition extraction over the specialist narratives; confidence
// degrades when parts of the pipeline errored.
type DiagnosisAnalyzer struct {
	orch *diagnosis.Orchestrator
}

// NewDiagnosisAnalyzer wraps an orchestrator.
func NewDiagnosisAnalyzer(orch *diagnosis.Orchestrator) *DiagnosisAnalyzer {
	return &DiagnosisAnalyzer{orch: orch}
}

var _ Analyzer = (*DiagnosisAnalyzer)(nil)

const (
	pipelineBaseConfidence    = 0.80
	pipelineErrorPenalty      = 0.15
	pipelineGeneralConfidence = 0.60
)

// Analyze implements Analyzer.
func (a *DiagnosisAnalyzer) Analyze(ctx context.Context, symptoms string, patientData map[string]any, urgency string) (*core.AIAnalysis, error) {
	requesterID := diagnosis.AnonymousRequester
	if v, ok := patientData["user_id"].(string); ok && v != "" {
		requesterID = v
	}

	result, err := a.orch.Run(ctx, symptoms, patientData, requesterID)
	if err != nil {
		return nil, err
	}

	conditions := diagnosis.ExtractConditions(result.Specialists)
	primary := conditions[0]

	confidence := pipelineBaseConfidence
	if primary.Condition == "General" {
		confidence = pipelineGeneralConfidence
	}
	errored := result.Triage.Error || result.Financial.Error || result.Synthesis.Error
	for _, sp := range result.Specialists {
		errored = errored || sp.Error
	}
	reason := ""
	if errored {
		confidence -= pipelineErrorPenalty
		reason = "Partial pipeline failure - human validation recommended"
	}

	differentials := make([]core.Differential, 0, len(conditions))
	remaining := 1.0 - confidence
	for i, c := range conditions {
		p := confidence
		if i > 0 {
			p = remaining / float64(len(conditions)-1)
		}
		differentials = append(differentials, core.Differential{Condition: c.Condition, Probability: p})
	}

	consulted := append([]string{string(core.AgentTriage)}, result.SpecialtiesConsulted()...)
	consulted = append(consulted, string(core.AgentFinancial), string(core.AgentCoordinator))

	return &core.AIAnalysis{
		Symptoms:             symptoms,
		PrimaryDiagnosis:     primary.Condition,
		Confidence:           confidence,
		Differentials:        differentials,
		Urgency:              urgency,
		RecommendedTreatment: primary.Treatment,
		EscalationReason:     reason,
		AgentsConsulted:      consulted,
		Timestamp:            time.Now(),
	}, nil
}

// StaticAnalyzer returns a fixed moderate-confidence analysis. It keeps the
// hybrid track functional when no diagnostic pipeline is wired, and gives
// tests a stable baseline.
type StaticAnalyzer struct{}

var _ Analyzer = (*StaticAnalyzer)(nil)

// Analyze implements Analyzer.
func (StaticAnalyzer) Analyze(_ context.Context, symptoms string, _ map[string]any, urgency string) (*core.AIAnalysis, error) {
	return &core.AIAnalysis{
		Symptoms:         symptoms,
		PrimaryDiagnosis: "Tension Headache",
		Confidence:       0.78,
		Differentials: []core.Differential{
			{Condition: "Tension Headache", Probability: 0.78},
			{Condition: "Migraine", Probability: 0.15},
			{Condition: "Sinus Infection", Probability: 0.07},
		},
		Urgency:              urgency,
		RecommendedTreatment: "Rest, hydration, OTC pain relief",
		EscalationReason:     "Moderate confidence - human validation recommended",
		AgentsConsulted:      []string{"symptom_analyzer", "treatment_recommender", "risk_assessor"},
		Timestamp:            time.Now(),
	}, nil
}
