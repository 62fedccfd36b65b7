// Package gateway defines the uniform interface to external medical lookups:
// symptom similarity search, patient timelines, treatment-cost estimates,
// financial-risk calculation and human-doctor matching. The gateway is pure
// request/response and holds no state; every production implementation is an
// external collaborator behind this boundary.
package gateway

import (
	"context"
	"fmt"
	"strings"
)

// Tool names routable through Execute.
const (
	ToolSearchSymptoms  = "search_symptoms"
	ToolPatientTimeline = "get_patient_timeline"
	ToolTreatmentCost   = "analyze_treatment_cost"
	ToolFinancialRisk   = "calculate_financial_risk"
	ToolMatchDoctor     = "match_doctor"
)

// SpecialtyAll disables the specialty filter on symptom search.
const SpecialtyAll = "all"

// SymptomMatch is one historically similar case returned by symptom search.
type SymptomMatch struct {
	Description string  `json:"description"`
	Condition   string  `json:"condition"`
	Treatment   string  `json:"treatment"`
	Similarity  float64 `json:"similarity"`
}

// TimelineBucket is one time-bucketed symptom summary from the patient
// history warehouse.
type TimelineBucket struct {
	Period   string   `json:"period"`
	Symptoms []string `json:"symptoms"`
	Summary  string   `json:"summary"`
}

// CostEstimate is the projected cost range for one condition/treatment pair.
type CostEstimate struct {
	Min              float64 `json:"min"`
	Max              float64 `json:"max"`
	Average          float64 `json:"average"`
	InsuranceCovered bool    `json:"insurance_covered"`
}

// RiskReport summarizes a patient's financial exposure for a treatment.
type RiskReport struct {
	Level          string   `json:"level"`
	MonthsOfIncome float64  `json:"months_of_income"`
	Options        []string `json:"options,omitempty"`
}

// DoctorMatch is a suggested human reviewer for an escalated case.
type DoctorMatch struct {
	DoctorID     string  `json:"doctor_id"`
	Name         string  `json:"name"`
	Specialty    string  `json:"specialty"`
	Availability string  `json:"availability"`
	Rating       float64 `json:"rating,omitempty"`
}

// Gateway is the collaborator boundary for all external lookups.
type Gateway interface {
	SearchSymptoms(ctx context.Context, query string, topK int, specialty string) ([]SymptomMatch, error)
	PatientTimeline(ctx context.Context, userID string, days int) ([]TimelineBucket, error)
	TreatmentCost(ctx context.Context, condition, treatment string) (CostEstimate, error)
	FinancialRisk(ctx context.Context, monthlyIncome, existingDebt, treatmentCost float64) (RiskReport, error)
	MatchDoctor(ctx context.Context, symptoms, urgency string, patientData map[string]any) (DoctorMatch, error)
}

// ToolCall is one requested lookup, addressed by tool name with loosely
// typed arguments so callers can pass plain structured data.
type ToolCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult pairs a tool call with its outcome. A failed lookup is recorded
// inline; it never aborts the invoking agent.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Err    error  `json:"-"`
}

// Execute dispatches a single tool call against the gateway. Unknown tool
// names and argument coercion problems are reported through ToolResult.Err,
// consistent with individual lookup failures.
func Execute(ctx context.Context, g Gateway, call ToolCall) ToolResult {
	res := ToolResult{Tool: call.Tool}

	switch call.Tool {
	case ToolSearchSymptoms:
		query := stringArg(call.Args, "query", "")
		if query == "" {
			res.Err = fmt.Errorf("%s: missing query", call.Tool)
			return res
		}
		matches, err := g.SearchSymptoms(ctx,
			query,
			intArg(call.Args, "top_k", 5),
			stringArg(call.Args, "specialty", SpecialtyAll),
		)
		res.Result, res.Err = matches, err
	case ToolPatientTimeline:
		userID := stringArg(call.Args, "user_id", "")
		if userID == "" {
			res.Err = fmt.Errorf("%s: missing user_id", call.Tool)
			return res
		}
		buckets, err := g.PatientTimeline(ctx, userID, intArg(call.Args, "days", 90))
		res.Result, res.Err = buckets, err
	case ToolTreatmentCost:
		estimate, err := g.TreatmentCost(ctx,
			stringArg(call.Args, "condition", ""),
			stringArg(call.Args, "treatment", ""),
		)
		res.Result, res.Err = estimate, err
	case ToolFinancialRisk:
		report, err := g.FinancialRisk(ctx,
			floatArg(call.Args, "monthly_income", 0),
			floatArg(call.Args, "existing_debt", 0),
			floatArg(call.Args, "treatment_cost", 0),
		)
		res.Result, res.Err = report, err
	case ToolMatchDoctor:
		match, err := g.MatchDoctor(ctx,
			stringArg(call.Args, "symptoms", ""),
			stringArg(call.Args, "urgency", "medium"),
			nil,
		)
		res.Result, res.Err = match, err
	default:
		res.Err = fmt.Errorf("unknown tool %q", call.Tool)
	}

	return res
}

// resultRenderLimit bounds how much of each tool result reaches the model
// context.
const resultRenderLimit = 500

// RenderResults formats tool outcomes for inclusion in an agent's model
// context. Failed lookups are rendered as such; partial tool data is
// acceptable to the agents.
func RenderResults(results []ToolResult) string {
	if len(results) == 0 {
		return "No database queries performed."
	}

	var b strings.Builder
	for _, tr := range results {
		b.WriteString("\nTool: ")
		b.WriteString(tr.Tool)
		if tr.Err != nil {
			b.WriteString("\nResults: lookup failed: ")
			b.WriteString(tr.Err.Error())
			b.WriteString("\n")
			continue
		}
		rendered := fmt.Sprintf("%v", tr.Result)
		if len(rendered) > resultRenderLimit {
			rendered = rendered[:resultRenderLimit] + "..."
		}
		b.WriteString("\nResults: ")
		b.WriteString(rendered)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

func floatArg(args map[string]any, key string, def float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}
