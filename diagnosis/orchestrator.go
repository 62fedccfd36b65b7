// Package diagnosis drives the fixed four-phase diagnostic pipeline:
// triage, specialist fan-out, financial analysis and coordinator synthesis.
// Each phase is independently fault-tolerant: a failed specialist records
// an errored assessment and the run continues.
package diagnosis

import (
	"context"
	"fmt"
	"sync"

	"github.com/sensoryx/medagent/core"
	"github.com/sensoryx/medagent/gateway"
	"github.com/sensoryx/medagent/logging"
	"github.com/sensoryx/medagent/model"
	"github.com/sensoryx/medagent/specialist"
)

// AnonymousRequester is the sentinel requester id for callers with no
// patient history; the triage phase skips the timeline lookup for it.
const AnonymousRequester = "anonymous"

const (
	triageSearchTopK     = 10
	specialistSearchTopK = 5
	timelineDays         = 90
	maxCostedConditions  = 3
)

// Options configure an Orchestrator.
type Options struct {
	Logger logging.Logger
}

// Orchestrator executes the multi-agent diagnostic process.
type Orchestrator struct {
	agents map[core.AgentKind]*specialist.Agent
	logger logging.Logger
}

// New builds an orchestrator with one agent per persona, all sharing the
// given generator and gateway.
func New(gen model.Generator, gw gateway.Gateway, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	kinds := []core.AgentKind{
		core.AgentTriage,
		core.AgentCardiology,
		core.AgentNeurology,
		core.AgentGastroenterology,
		core.AgentFinancial,
		core.AgentCoordinator,
	}
	agents := make(map[core.AgentKind]*specialist.Agent, len(kinds))
	for _, kind := range kinds {
		agents[kind] = specialist.New(kind, gen, gw, func(o *specialist.Options) {
			o.Logger = opts.Logger
		})
	}

	return &Orchestrator{agents: agents, logger: opts.Logger}
}

// Run executes the four phases and returns the aggregated result. The only
// error conditions are invalid input and context cancellation; specialist
// and tool failures are recorded inline and never abort the run.
func (o *Orchestrator) Run(ctx context.Context, symptoms string, patientData map[string]any, requesterID string) (*core.DiagnosticResult, error) {
	if symptoms == "" {
		return nil, fmt.Errorf("symptom description is required")
	}
	if requesterID == "" {
		requesterID = AnonymousRequester
	}

	patientContext := buildPatientContext(symptoms, patientData, requesterID)

	// Phase 1: triage.
	triageCalls := []gateway.ToolCall{
		{Tool: gateway.ToolSearchSymptoms, Args: map[string]any{
			"query": symptoms, "top_k": triageSearchTopK, "specialty": gateway.SpecialtyAll,
		}},
	}
	if requesterID != AnonymousRequester {
		triageCalls = append(triageCalls, gateway.ToolCall{
			Tool: gateway.ToolPatientTimeline,
			Args: map[string]any{"user_id": requesterID, "days": timelineDays},
		})
	}
	triage := o.agents[core.AgentTriage].Invoke(ctx, patientContext, triageCalls)
	o.logger.Info("triage completed", "error", triage.Error)

	// Phase 2: specialist fan-out. The consultations are independent of one
	// another and run concurrently; all results are collected before the
	// financial phase starts.
	specialties := ExtractSpecialties(triage.Narrative)
	specialistContext := patientContext + "\n\nTriage Assessment:\n" + triage.Narrative

	var (
		mu          sync.Mutex
		wg          sync.WaitGroup
		specialists = make(map[string]core.Assessment, len(specialties))
	)
	for _, sp := range specialties {
		agent, ok := o.agents[sp]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(sp core.AgentKind, agent *specialist.Agent) {
			defer wg.Done()
			assessment := agent.Invoke(ctx, specialistContext, []gateway.ToolCall{
				{Tool: gateway.ToolSearchSymptoms, Args: map[string]any{
					"query": symptoms, "top_k": specialistSearchTopK, "specialty": string(sp),
				}},
			})
			mu.Lock()
			specialists[string(sp)] = assessment
			mu.Unlock()
		}(sp, agent)
	}
	wg.Wait()
	o.logger.Info("specialist consultations completed", "count", len(specialists))

	// Phase 3: financial analysis over the extracted conditions.
	conditions := ExtractConditions(specialists)
	costCalls := make([]gateway.ToolCall, 0, maxCostedConditions)
	for i, c := range conditions {
		if i == maxCostedConditions {
			break
		}
		costCalls = append(costCalls, gateway.ToolCall{
			Tool: gateway.ToolTreatmentCost,
			Args: map[string]any{"condition": c.Condition, "treatment": c.Treatment},
		})
	}
	financial := o.agents[core.AgentFinancial].Invoke(ctx,
		patientContext+"\n\nProposed Diagnoses:\n"+formatConditions(conditions),
		costCalls,
	)

	// Phase 4: coordinator synthesis, no tool calls.
	synthesis := o.agents[core.AgentCoordinator].Invoke(ctx,
		patientContext+"\n\nAll Specialist Assessments:\n"+formatAssessments(triage, specialists, financial),
		nil,
	)
	o.logger.Info("diagnosis run completed",
		"specialists", len(specialists),
		"financial_error", financial.Error,
		"synthesis_error", synthesis.Error,
	)

	return &core.DiagnosticResult{
		Symptoms:    symptoms,
		PatientData: patientData,
		RequesterID: requesterID,
		Triage:      triage,
		Specialists: specialists,
		Financial:   financial,
		Synthesis:   synthesis,
	}, nil
}

func buildPatientContext(symptoms string, patientData map[string]any, requesterID string) string {
	data := "No additional data provided"
	if len(patientData) > 0 {
		data = fmt.Sprintf("%v", patientData)
	}
	return fmt.Sprintf("Patient Symptoms: %s\n\nPatient Data: %s\nUser ID: %s", symptoms, data, requesterID)
}
