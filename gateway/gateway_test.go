package gateway

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteSearchSymptoms(t *testing.T) {
	gw := NewStaticGateway()

	res := Execute(context.Background(), gw, ToolCall{
		Tool: ToolSearchSymptoms,
		Args: map[string]any{"query": "crushing chest pain", "top_k": 3, "specialty": "cardiology"},
	})

	require.NoError(t, res.Err)
	matches, ok := res.Result.([]SymptomMatch)
	require.True(t, ok)
	require.NotEmpty(t, matches)
	assert.LessOrEqual(t, len(matches), 3)
	assert.Equal(t, "Cardiac Event", matches[0].Condition)
}

func TestExecuteSearchSymptomsMissingQuery(t *testing.T) {
	res := Execute(context.Background(), NewStaticGateway(), ToolCall{Tool: ToolSearchSymptoms})

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "missing query")
}

func TestExecutePatientTimeline(t *testing.T) {
	gw := NewStaticGateway()

	res := Execute(context.Background(), gw, ToolCall{
		Tool: ToolPatientTimeline,
		Args: map[string]any{"user_id": "u1", "days": 90},
	})
	require.NoError(t, res.Err)

	missing := Execute(context.Background(), gw, ToolCall{Tool: ToolPatientTimeline})
	require.Error(t, missing.Err)
	assert.Contains(t, missing.Err.Error(), "missing user_id")
}

func TestExecuteUnknownTool(t *testing.T) {
	res := Execute(context.Background(), NewStaticGateway(), ToolCall{Tool: "order_labs"})

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "unknown tool")
}

// JSON-decoded arguments arrive as float64; the dispatcher must coerce them.
func TestExecuteCoercesNumericArgs(t *testing.T) {
	res := Execute(context.Background(), NewStaticGateway(), ToolCall{
		Tool: ToolSearchSymptoms,
		Args: map[string]any{"query": "headache", "top_k": float64(1)},
	})

	require.NoError(t, res.Err)
	matches := res.Result.([]SymptomMatch)
	assert.LessOrEqual(t, len(matches), 1)
}

func TestRenderResultsEmpty(t *testing.T) {
	assert.Equal(t, "No database queries performed.", RenderResults(nil))
}

func TestRenderResultsError(t *testing.T) {
	res := Execute(context.Background(), NewStaticGateway(), ToolCall{Tool: "order_labs"})

	rendered := RenderResults([]ToolResult{res})
	assert.Contains(t, rendered, "Tool: order_labs")
	assert.Contains(t, rendered, "lookup failed:")
}

func TestRenderResultsTruncation(t *testing.T) {
	long := ToolResult{Tool: ToolSearchSymptoms, Result: strings.Repeat("x", 800)}

	rendered := RenderResults([]ToolResult{long})
	assert.Contains(t, rendered, "...")
	assert.Less(t, len(rendered), 700)
}

func TestStaticSearchSpecialtyFilter(t *testing.T) {
	gw := NewStaticGateway()

	matches, err := gw.SearchSymptoms(context.Background(), "burning chest pain after meals", 10, "gastroenterology")
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.NotEqual(t, "Cardiac Event", m.Condition)
	}

	all, err := gw.SearchSymptoms(context.Background(), "burning chest pain after meals", 10, SpecialtyAll)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(all), len(matches))
}

func TestStaticTreatmentCostFallback(t *testing.T) {
	gw := NewStaticGateway()

	known, err := gw.TreatmentCost(context.Background(), "Migraine", "Triptans medication")
	require.NoError(t, err)
	assert.Equal(t, 180.0, known.Average)

	unknown, err := gw.TreatmentCost(context.Background(), "Rare Syndrome", "")
	require.NoError(t, err)
	assert.Equal(t, staticCosts["general"], unknown)
}

func TestStaticFinancialRiskTiers(t *testing.T) {
	gw := NewStaticGateway()
	ctx := context.Background()

	tests := []struct {
		name       string
		income     float64
		debt       float64
		cost       float64
		wantLevel  string
		wantOption bool
	}{
		{"low", 5000, 0, 2000, "low", false},
		{"moderate", 5000, 5000, 10000, "moderate", true},
		{"high", 3000, 10000, 20000, "high", true},
		{"no income", 0, 0, 1000, "unknown", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := gw.FinancialRisk(ctx, tt.income, tt.debt, tt.cost)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, report.Level)
			assert.Equal(t, tt.wantOption, len(report.Options) > 0)
		})
	}
}

func TestStaticMatchDoctor(t *testing.T) {
	gw := NewStaticGateway()
	ctx := context.Background()

	urgent, err := gw.MatchDoctor(ctx, "chest pain", "emergency", nil)
	require.NoError(t, err)
	assert.Equal(t, "Urgent Care", urgent.Specialty)

	neuro, err := gw.MatchDoctor(ctx, "recurring migraine attacks", "medium", nil)
	require.NoError(t, err)
	assert.Equal(t, "Neurology", neuro.Specialty)

	general, err := gw.MatchDoctor(ctx, "mild fatigue", "low", nil)
	require.NoError(t, err)
	assert.Equal(t, "dr001", general.DoctorID)
}
