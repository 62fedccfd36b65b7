package gateway

import (
	"context"
	"sort"
	"strings"
)

// StaticGateway serves deterministic reference data from process memory. It
// backs local development, demos and tests; production deployments swap in
// implementations talking to the vector index, warehouse and pricing APIs.
type StaticGateway struct{}

// NewStaticGateway constructs the in-memory reference gateway.
func NewStaticGateway() *StaticGateway { return &StaticGateway{} }

var _ Gateway = (*StaticGateway)(nil)

type staticCase struct {
	description string
	condition   string
	treatment   string
	specialty   string
	keywords    []string
}

var staticCases = []staticCase{
	{"Crushing chest pain radiating to the left arm with shortness of breath", "Cardiac Event", "Emergency care", "cardiology", []string{"chest", "heart", "cardiac", "arm", "breath"}},
	{"Intermittent palpitations and lightheadedness at rest", "Arrhythmia", "Cardiology referral, Holter monitoring", "cardiology", []string{"palpitation", "heart", "dizzy", "lighthead"}},
	{"Throbbing one-sided headache with nausea and light sensitivity", "Migraine", "Triptans medication", "neurology", []string{"headache", "migraine", "nausea", "light", "head"}},
	{"Band-like pressure headache worsening through the workday", "Tension Headache", "Rest, hydration, OTC pain relief", "neurology", []string{"headache", "pressure", "stress", "head"}},
	{"Sudden numbness on one side with slurred speech", "Stroke", "Emergency care", "neurology", []string{"numb", "speech", "brain", "stroke", "face"}},
	{"Burning chest discomfort after meals, worse lying down", "GERD", "Proton pump inhibitors", "gastroenterology", []string{"burning", "reflux", "stomach", "meal", "gerd", "chest"}},
	{"Cramping abdominal pain with bloating and irregular bowel habits", "IBS", "Dietary modification, antispasmodics", "gastroenterology", []string{"abdominal", "cramp", "bloat", "bowel", "stomach"}},
	{"Persistent nausea and vomiting with epigastric tenderness", "Gastritis", "Acid suppression, dietary changes", "gastroenterology", []string{"nausea", "vomit", "stomach", "epigastric"}},
}

var staticCosts = map[string]CostEstimate{
	"migraine":         {Min: 50, Max: 400, Average: 180, InsuranceCovered: true},
	"tension headache": {Min: 20, Max: 150, Average: 60, InsuranceCovered: true},
	"gerd":             {Min: 40, Max: 350, Average: 140, InsuranceCovered: true},
	"cardiac event":    {Min: 5000, Max: 75000, Average: 22000, InsuranceCovered: true},
	"general":          {Min: 50, Max: 300, Average: 120, InsuranceCovered: false},
}

var staticDoctors = []DoctorMatch{
	{DoctorID: "dr001", Name: "Dr. Sarah Johnson", Specialty: "General Practitioner", Availability: "Available in 15 min", Rating: 4.8},
	{DoctorID: "dr002", Name: "Dr. Michael Chen", Specialty: "Internal Medicine", Availability: "Available in 30 min", Rating: 4.9},
	{DoctorID: "dr004", Name: "Dr. David Kim", Specialty: "Neurology", Availability: "Available tomorrow", Rating: 4.9},
	{DoctorID: "dr005", Name: "Dr. Jennifer Williams", Specialty: "Urgent Care", Availability: "Available now", Rating: 4.6},
}

// SearchSymptoms scores the reference corpus by keyword overlap with the
// query, optionally filtered by specialty, and returns the topK matches in
// descending similarity order.
func (g *StaticGateway) SearchSymptoms(_ context.Context, query string, topK int, specialty string) ([]SymptomMatch, error) {
	if topK <= 0 {
		topK = 5
	}
	q := strings.ToLower(query)

	var matches []SymptomMatch
	for _, c := range staticCases {
		if specialty != "" && specialty != SpecialtyAll && c.specialty != specialty {
			continue
		}
		hits := 0
		for _, kw := range c.keywords {
			if strings.Contains(q, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		matches = append(matches, SymptomMatch{
			Description: c.description,
			Condition:   c.condition,
			Treatment:   c.treatment,
			Similarity:  float64(hits) / float64(len(c.keywords)),
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// PatientTimeline returns an empty history for unknown users; the static
// gateway tracks no longitudinal data.
func (g *StaticGateway) PatientTimeline(_ context.Context, userID string, days int) ([]TimelineBucket, error) {
	return []TimelineBucket{
		{Period: "recent", Symptoms: nil, Summary: "No recorded symptom history for this patient."},
	}, nil
}

// TreatmentCost looks up the reference pricing table, falling back to the
// general bracket for unknown conditions.
func (g *StaticGateway) TreatmentCost(_ context.Context, condition, treatment string) (CostEstimate, error) {
	if est, ok := staticCosts[strings.ToLower(condition)]; ok {
		return est, nil
	}
	return staticCosts["general"], nil
}

// FinancialRisk grades exposure by how many months of income the treatment
// consumes after existing debt.
func (g *StaticGateway) FinancialRisk(_ context.Context, monthlyIncome, existingDebt, treatmentCost float64) (RiskReport, error) {
	if monthlyIncome <= 0 {
		return RiskReport{Level: "unknown", Options: []string{"Income required for risk assessment"}}, nil
	}
	months := (treatmentCost + existingDebt) / monthlyIncome
	report := RiskReport{MonthsOfIncome: months}
	switch {
	case months < 1:
		report.Level = "low"
	case months < 4:
		report.Level = "moderate"
		report.Options = []string{"Payment plan"}
	default:
		report.Level = "high"
		report.Options = []string{"Payment plan", "Financial assistance program"}
	}
	return report, nil
}

// MatchDoctor prefers urgent-care availability for high urgency cases and a
// specialty match otherwise.
func (g *StaticGateway) MatchDoctor(_ context.Context, symptoms, urgency string, _ map[string]any) (DoctorMatch, error) {
	if urgency == "high" || urgency == "emergency" {
		return staticDoctors[3], nil
	}
	s := strings.ToLower(symptoms)
	for _, kw := range []string{"head", "migraine", "neuro"} {
		if strings.Contains(s, kw) {
			return staticDoctors[2], nil
		}
	}
	return staticDoctors[0], nil
}
