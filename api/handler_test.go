package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensoryx/medagent/diagnosis"
	"github.com/sensoryx/medagent/gateway"
	"github.com/sensoryx/medagent/hybrid"
	"github.com/sensoryx/medagent/logging"
	"github.com/sensoryx/medagent/model"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	gen := model.NewMockGenerator()
	gen.AddResponse("Triage Specialist", "Headache pattern, neurology consult advised.")
	gen.AddResponse("Neurologist", "Migraine is the leading diagnosis.")

	gw := gateway.NewStaticGateway()
	orch := diagnosis.New(gen, gw)
	mgr := hybrid.NewManager(hybrid.NewInMemoryStore(), hybrid.StaticAnalyzer{}, gw)

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(orch, mgr, logging.NoOpLogger{}))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestDiagnosisEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/diagnosis", `{"symptoms": "throbbing headache with nausea"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "throbbing headache with nausea", body["patient_symptoms"])
	assert.NotNil(t, body["triage_assessment"])
	assert.NotNil(t, body["specialist_consultations"])
	assert.NotNil(t, body["final_diagnosis"])
}

func TestDiagnosisEndpointBadJSON(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/diagnosis", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHybridSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// The static analyzer reports moderate confidence at medium urgency, so
	// the session completes on the AI-only path.
	resp, started := postJSON(t, srv.URL+"/hybrid/start", `{"symptoms": "headache", "urgency": "medium"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID, _ := started["session_id"].(string)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "completed", started["stage"])
	assert.Equal(t, false, started["needs_human_review"])

	// Completed sessions reject direct reviews.
	resp, body := postJSON(t, srv.URL+"/hybrid/"+sessionID+"/review",
		`{"doctor_id": "dr001", "doctor_name": "Dr. Sarah Johnson", "review": {"diagnosis": "Migraine"}}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "not allowed in stage")

	// Escalation reopens the session for review.
	resp, escalation := postJSON(t, srv.URL+"/hybrid/"+sessionID+"/escalate", `{"reason": "symptoms are worsening"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pending", escalation["escalation_status"])
	assert.Equal(t, "high", escalation["priority"])

	resp, review := postJSON(t, srv.URL+"/hybrid/"+sessionID+"/review",
		`{"doctor_id": "dr001", "doctor_name": "Dr. Sarah Johnson", "review": {"diagnosis": "Tension Headache"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "consensus_reached", review["stage"])
	assert.Equal(t, true, review["consensus"])

	statusResp, err := http.Get(srv.URL + "/hybrid/" + sessionID)
	require.NoError(t, err)
	defer statusResp.Body.Close()
	require.Equal(t, http.StatusOK, statusResp.StatusCode)
	var status map[string]any
	require.NoError(t, json.NewDecoder(statusResp.Body).Decode(&status))
	assert.Equal(t, "consensus_reached", status["stage"])
	assert.NotNil(t, status["final_recommendation"])
}

func TestHybridStartEscalation(t *testing.T) {
	srv := newTestServer(t)

	resp, started := postJSON(t, srv.URL+"/hybrid/start", `{"symptoms": "severe headache", "urgency": "high"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "human_review_pending", started["stage"])
	assert.Equal(t, true, started["needs_human_review"])
	assert.Equal(t, "hybrid", started["collaboration_type"])
}

func TestHybridMessageEndpoint(t *testing.T) {
	srv := newTestServer(t)

	_, started := postJSON(t, srv.URL+"/hybrid/start", `{"symptoms": "severe headache", "urgency": "high"}`)
	sessionID := started["session_id"].(string)

	resp, body := postJSON(t, srv.URL+"/hybrid/"+sessionID+"/message",
		`{"actor": "patient", "message": "how long will this take?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["ai_response"], "improvement within 2-3 days")
}

func TestHybridUnknownSession(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/hybrid/hybrid_missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
