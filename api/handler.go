// Package api exposes the diagnostic and hybrid-session operations as JSON
// HTTP endpoints. It is a thin transport layer; all behavior lives in the
// diagnosis and hybrid packages.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sensoryx/medagent/core"
	"github.com/sensoryx/medagent/diagnosis"
	"github.com/sensoryx/medagent/hybrid"
	"github.com/sensoryx/medagent/logging"
)

// Handler serves the core operations.
type Handler struct {
	orch   *diagnosis.Orchestrator
	mgr    *hybrid.Manager
	logger logging.Logger
}

// NewHandler constructs the API handler.
func NewHandler(orch *diagnosis.Orchestrator, mgr *hybrid.Manager, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Handler{orch: orch, mgr: mgr, logger: logger}
}

// RegisterRoutes mounts all endpoints on r.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/diagnosis", h.RunDiagnosis)
	r.Route("/hybrid", func(r chi.Router) {
		r.Post("/start", h.StartSession)
		r.Get("/{sessionID}", h.GetStatus)
		r.Post("/{sessionID}/review", h.SubmitReview)
		r.Post("/{sessionID}/message", h.AddMessage)
		r.Post("/{sessionID}/escalate", h.RequestEscalation)
	})
}

type diagnosisRequest struct {
	Symptoms    string         `json:"symptoms"`
	PatientData map[string]any `json:"patient_data,omitempty"`
	RequesterID string         `json:"requester_id,omitempty"`
}

// RunDiagnosis executes the four-phase pipeline.
func (h *Handler) RunDiagnosis(w http.ResponseWriter, r *http.Request) {
	var req diagnosisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.orch.Run(r.Context(), req.Symptoms, req.PatientData, req.RequesterID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type startSessionRequest struct {
	Symptoms    string         `json:"symptoms"`
	PatientData map[string]any `json:"patient_data,omitempty"`
	Urgency     string         `json:"urgency,omitempty"`
}

// StartSession starts a hybrid collaboration session.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.mgr.StartSession(r.Context(), req.PatientData, req.Symptoms, req.Urgency)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, result)
}

type reviewRequest struct {
	DoctorID   string           `json:"doctor_id"`
	DoctorName string           `json:"doctor_name"`
	Review     core.HumanReview `json:"review"`
}

// SubmitReview records a human doctor's review.
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.mgr.SubmitHumanReview(r.Context(), chi.URLParam(r, "sessionID"), req.DoctorID, req.DoctorName, req.Review)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type messageRequest struct {
	Actor    string         `json:"actor"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AddMessage appends a collaboration message.
func (h *Handler) AddMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.mgr.AddCollaborationMessage(r.Context(), chi.URLParam(r, "sessionID"), req.Actor, req.Message, req.Metadata)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type escalationRequest struct {
	Reason         string `json:"reason"`
	PatientMessage string `json:"patient_message,omitempty"`
}

// RequestEscalation routes a session to human review.
func (h *Handler) RequestEscalation(w http.ResponseWriter, r *http.Request) {
	var req escalationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.mgr.RequestHumanEscalation(r.Context(), chi.URLParam(r, "sessionID"), req.Reason, req.PatientMessage)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// GetStatus returns the session snapshot.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.mgr.GetStatus(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var stageErr *core.InvalidStageError
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &stageErr):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("request failed", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response encoding failed", "error", err.Error())
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
