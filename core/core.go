// Package core defines the shared domain types for the diagnostic pipeline
// and the hybrid collaboration track: specialist assessments, aggregated
// diagnostic results, AI analyses, human reviews and blended recommendations.
// All types are plain data; behavior lives in the diagnosis and hybrid packages.
package core

import "time"

// AgentKind identifies one of the specialist personas participating in a
// diagnostic run.
type AgentKind string

const (
	AgentTriage           AgentKind = "triage"
	AgentCardiology       AgentKind = "cardiology"
	AgentNeurology        AgentKind = "neurology"
	AgentGastroenterology AgentKind = "gastroenterology"
	AgentFinancial        AgentKind = "financial"
	AgentCoordinator      AgentKind = "coordinator"
)

// ConsultableSpecialties lists the specialties eligible for the phase-2
// fan-out. DiagnosticResult.Specialists keys are always a subset of these.
var ConsultableSpecialties = []AgentKind{
	AgentCardiology,
	AgentNeurology,
	AgentGastroenterology,
}

// Assessment is the output of a single specialist invocation. It is created
// once per orchestration phase and immutable thereafter.
type Assessment struct {
	Agent        AgentKind `json:"agent"`
	Narrative    string    `json:"narrative"`
	ToolsInvoked []string  `json:"tools_invoked,omitempty"`
	Error        bool      `json:"error,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	// Fallback marks narratives produced by the degraded generator when no
	// language-model provider is configured.
	Fallback bool `json:"fallback,omitempty"`
}

// DiagnosticResult aggregates the output of one full orchestration run.
// Financial and Synthesis are always present, possibly marked as errored.
type DiagnosticResult struct {
	Symptoms    string                `json:"patient_symptoms"`
	PatientData map[string]any        `json:"patient_data,omitempty"`
	RequesterID string                `json:"requester_id,omitempty"`
	Triage      Assessment            `json:"triage_assessment"`
	Specialists map[string]Assessment `json:"specialist_consultations"`
	Financial   Assessment            `json:"financial_analysis"`
	Synthesis   Assessment            `json:"final_diagnosis"`
}

// SpecialtiesConsulted returns the specialty keys of the fan-out phase.
func (r *DiagnosticResult) SpecialtiesConsulted() []string {
	keys := make([]string, 0, len(r.Specialists))
	for k := range r.Specialists {
		keys = append(keys, k)
	}
	return keys
}

// Differential is one candidate condition with its estimated probability.
type Differential struct {
	Condition   string  `json:"condition"`
	Probability float64 `json:"probability"`
}

// AIAnalysis is the structured AI output attached to a hybrid session.
type AIAnalysis struct {
	Symptoms             string         `json:"symptoms"`
	PrimaryDiagnosis     string         `json:"primary_diagnosis"`
	Confidence           float64        `json:"confidence"`
	Differentials        []Differential `json:"differential_diagnoses"`
	Urgency              string         `json:"urgency_level"`
	RecommendedTreatment string         `json:"recommended_treatment"`
	RedFlags             []string       `json:"red_flags,omitempty"`
	EscalationReason     string         `json:"escalation_reason,omitempty"`
	AgentsConsulted      []string       `json:"ai_agents_consulted,omitempty"`
	Timestamp            time.Time      `json:"analysis_timestamp"`
}

// HumanReview is the structured doctor output validating an AI analysis.
type HumanReview struct {
	DoctorID         string    `json:"doctor_id"`
	DoctorName       string    `json:"doctor_name"`
	Diagnosis        string    `json:"diagnosis,omitempty"`
	Confidence       float64   `json:"confidence,omitempty"`
	TreatmentPlan    string    `json:"treatment_plan,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	Modifications    []string  `json:"modifications,omitempty"`
	NextSteps        []string  `json:"next_steps,omitempty"`
	FollowUpRequired bool      `json:"follow_up_required,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// AIInsights carries the AI side of a blended recommendation.
type AIInsights struct {
	Differentials []Differential `json:"differential_diagnoses,omitempty"`
	AIConfidence  float64        `json:"ai_confidence"`
}

// HumanValidation carries the human side of a blended recommendation.
type HumanValidation struct {
	DoctorNotes      string   `json:"doctor_notes,omitempty"`
	DoctorConfidence float64  `json:"doctor_confidence"`
	Modifications    []string `json:"modifications_from_ai,omitempty"`
}

// Recommendation is the unified hybrid outcome. On the AI-only path it is a
// projection of the AI analysis; after a human review it blends both sources
// with human fields taking precedence when present.
type Recommendation struct {
	Diagnosis        string           `json:"diagnosis"`
	Confidence       float64          `json:"confidence"`
	TreatmentPlan    string           `json:"treatment_plan"`
	AIInsights       AIInsights       `json:"ai_insights"`
	HumanValidation  *HumanValidation `json:"human_validation,omitempty"`
	Consensus        bool             `json:"consensus"`
	NextSteps        []string         `json:"next_steps,omitempty"`
	FollowUpRequired bool             `json:"follow_up_required"`
	Timestamp        time.Time        `json:"timestamp"`
}
