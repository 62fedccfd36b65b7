package hybrid

import (
	"strings"

	"github.com/sensoryx/medagent/core"
)

// Escalation thresholds. These values are part of the observable contract;
// do not tune them without flagging a behavior change.
const (
	escalationConfidenceFloor   = 0.70
	ambiguityProbabilityFloor   = 0.20
	ambiguityDifferentialLimit  = 2
	defaultEscalationReason     = "Complex case requiring human expertise"
	defaultHumanConfidenceScore = 0.90
)

// ShouldEscalate decides whether a case needs human attention. It is
// stateless and side-effect-free. Escalate when any of the following holds:
// AI confidence below 0.70, urgency high or emergency, at least one red
// flag, or more than two differential diagnoses with individual probability
// above 0.20 (genuine diagnostic ambiguity).
func ShouldEscalate(ai *core.AIAnalysis, urgency string) bool {
	if ai == nil {
		return true
	}
	if ai.Confidence < escalationConfidenceFloor {
		return true
	}
	if urgency == "high" || urgency == "emergency" {
		return true
	}
	if len(ai.RedFlags) > 0 {
		return true
	}
	ambiguous := 0
	for _, d := range ai.Differentials {
		if d.Probability > ambiguityProbabilityFloor {
			ambiguous++
		}
	}
	return ambiguous > ambiguityDifferentialLimit
}

// Escalation priority tiers.
const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

// DeterminePriority derives the escalation priority tier from the textual
// reason and the urgency of the existing AI analysis. Urgency wins over
// reason keywords.
func DeterminePriority(reason string, ai *core.AIAnalysis) string {
	urgency := "medium"
	if ai != nil && ai.Urgency != "" {
		urgency = ai.Urgency
	}
	r := strings.ToLower(reason)

	switch {
	case urgency == "high" || urgency == "emergency":
		return PriorityUrgent
	case strings.Contains(r, "pain") || strings.Contains(r, "worsening"):
		return PriorityHigh
	case strings.Contains(r, "second opinion"):
		return PriorityNormal
	default:
		return PriorityLow
	}
}
