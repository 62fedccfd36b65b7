package hybrid

import (
	"math"
	"strings"
	"time"

	"github.com/sensoryx/medagent/core"
)

// Confidence blend weights. The recommendation-level and session-level
// blends differ deliberately: one weights the recommendation content's
// confidence, the other the session's overall confidence. Both ratios are
// preserved exactly as observed behavior; unifying them needs product
// sign-off.
const (
	recommendationAIWeight    = 0.3
	recommendationHumanWeight = 0.7
	sessionAIWeight           = 0.4
	sessionHumanWeight        = 0.6
)

// CheckConsensus reports whether the AI and human diagnoses agree, using
// case-insensitive substring containment in either direction. This is a
// deliberately coarse heuristic; no NLP similarity is applied.
func CheckConsensus(ai *core.AIAnalysis, review *core.HumanReview) bool {
	if ai == nil || review == nil {
		return false
	}
	a := strings.ToLower(ai.PrimaryDiagnosis)
	h := strings.ToLower(review.Diagnosis)
	return strings.Contains(h, a) || strings.Contains(a, h)
}

// BlendRecommendation combines AI and human insights into the unified hybrid
// recommendation. Human fields take precedence when provided; confidence is
// the 0.3/0.7 AI/human blend rounded to two decimals.
func BlendRecommendation(ai *core.AIAnalysis, review *core.HumanReview) *core.Recommendation {
	diagnosis := review.Diagnosis
	if diagnosis == "" && ai != nil {
		diagnosis = ai.PrimaryDiagnosis
	}
	treatment := review.TreatmentPlan
	if treatment == "" && ai != nil {
		treatment = ai.RecommendedTreatment
	}

	aiConfidence := 0.0
	var differentials []core.Differential
	if ai != nil {
		aiConfidence = ai.Confidence
		differentials = ai.Differentials
	}
	humanConfidence := review.Confidence
	if humanConfidence == 0 {
		humanConfidence = defaultHumanConfidenceScore
	}

	return &core.Recommendation{
		Diagnosis:     diagnosis,
		Confidence:    round2(aiConfidence*recommendationAIWeight + humanConfidence*recommendationHumanWeight),
		TreatmentPlan: treatment,
		AIInsights: core.AIInsights{
			Differentials: differentials,
			AIConfidence:  aiConfidence,
		},
		HumanValidation: &core.HumanValidation{
			DoctorNotes:      review.Notes,
			DoctorConfidence: humanConfidence,
			Modifications:    review.Modifications,
		},
		Consensus:        CheckConsensus(ai, review),
		NextSteps:        review.NextSteps,
		FollowUpRequired: review.FollowUpRequired,
		Timestamp:        time.Now(),
	}
}

// RecommendationFromAnalysis projects an AI analysis into a recommendation
// for the AI-only completion path.
func RecommendationFromAnalysis(ai *core.AIAnalysis) *core.Recommendation {
	return &core.Recommendation{
		Diagnosis:     ai.PrimaryDiagnosis,
		Confidence:    ai.Confidence,
		TreatmentPlan: ai.RecommendedTreatment,
		AIInsights: core.AIInsights{
			Differentials: ai.Differentials,
			AIConfidence:  ai.Confidence,
		},
		Timestamp: time.Now(),
	}
}

// QuickResponse synthesizes an immediate AI acknowledgment to a patient
// message while the human review is still pending, using simple intent
// matching over the message text.
func QuickResponse(patientMessage string, ai *core.AIAnalysis) string {
	q := strings.ToLower(patientMessage)

	switch {
	case strings.Contains(q, "how long"):
		return "Based on the initial analysis, most cases see improvement within 2-3 days with proper treatment. A human doctor is reviewing your case for confirmation."
	case strings.Contains(q, "serious") || strings.Contains(q, "worried"):
		return "Your symptoms don't show immediate red flags, but a human doctor is reviewing to provide expert validation. You should see their response shortly."
	case strings.Contains(q, "cost"):
		return "Treatment costs vary, but we can provide estimates once the human doctor confirms the diagnosis. Typically ranges from $50-$200 for this type of condition."
	default:
		diagnosis := "pending"
		if ai != nil && ai.PrimaryDiagnosis != "" {
			diagnosis = ai.PrimaryDiagnosis
		}
		return "A human doctor is currently reviewing the AI analysis. They'll provide expert validation shortly. In the meantime, the AI assessment suggests: " + diagnosis
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
