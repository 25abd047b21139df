package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"prepdeck/internal/apperr"
	"prepdeck/internal/model"
	"prepdeck/internal/service"
	"prepdeck/internal/transport/rest/middleware"
)

// InterviewHandler handles the interview lifecycle endpoints
type InterviewHandler struct {
	interviewSvc *service.InterviewService
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(interviewSvc *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviewSvc: interviewSvc}
}

// StartRequest is the request body for starting an interview
type StartRequest struct {
	Role            string                `json:"role"`
	ExperienceLevel model.ExperienceLevel `json:"experienceLevel"`
	Mode            model.InterviewMode   `json:"mode"`
	MaxQuestions    int                   `json:"maxQuestions,omitempty"`
}

// Start handles POST /v1/interviews
func (h *InterviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	out, err := h.interviewSvc.StartInterview(r.Context(), &service.StartInterviewInput{
		UserID:          middleware.GetUserID(r.Context()),
		Role:            req.Role,
		ExperienceLevel: req.ExperienceLevel,
		Mode:            req.Mode,
		MaxQuestions:    req.MaxQuestions,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, out)
}

// SubmitAnswerRequest is the request body for submitting an answer
type SubmitAnswerRequest struct {
	AnswerText string               `json:"answerText"`
	VoiceMeta  *model.VoiceMetadata `json:"voiceMeta,omitempty"`
}

// SubmitAnswer handles POST /v1/interviews/{id}/answers
func (h *InterviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	session, err := h.ownedSession(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	out, err := h.interviewSvc.SubmitAnswer(r.Context(), &service.SubmitAnswerInput{
		SessionID:  session.ID,
		AnswerText: req.AnswerText,
		VoiceMeta:  req.VoiceMeta,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, out)
}

// Complete handles POST /v1/interviews/{id}/complete
func (h *InterviewHandler) Complete(w http.ResponseWriter, r *http.Request) {
	session, err := h.ownedSession(r)
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := h.interviewSvc.CompleteInterview(r.Context(), session.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{"report": report})
}

// Abandon handles POST /v1/interviews/{id}/abandon
func (h *InterviewHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	session, err := h.ownedSession(r)
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.interviewSvc.AbandonSession(r.Context(), session.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{"status": updated.Status})
}

// Get handles GET /v1/interviews/{id}
func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.ownedSession(r)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, session)
}

// GetActive handles GET /v1/interviews/active — the reload guard's probe for a
// resumable session.
func (h *InterviewHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	session, err := h.interviewSvc.GetActiveSession(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{"session": session})
}

// ownedSession fetches the addressed session and hides sessions belonging to
// other users behind NOT_FOUND.
func (h *InterviewHandler) ownedSession(r *http.Request) (*model.Session, error) {
	id := mux.Vars(r)["id"]
	session, err := h.interviewSvc.GetSession(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if session.UserID != middleware.GetUserID(r.Context()) {
		return nil, apperr.New(apperr.KindNotFound, "session %s not found", id)
	}
	return session, nil
}
