package rest_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"prepdeck/internal/config"
	"prepdeck/internal/metrics"
	"prepdeck/internal/model"
	"prepdeck/internal/repository"
	"prepdeck/internal/service"
	"prepdeck/internal/transport/rest"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	aiCfg := config.DefaultAIConfig()
	aiCfg.APIKey = "" // local question bank + heuristic evaluator

	policy := config.DefaultPolicy()
	interviewSvc := service.NewInterviewService(
		repository.NewMemorySessionRepo(),
		nil,
		service.NewGeneratorService(aiCfg),
		service.NewEvaluatorService(aiCfg),
		nil,
		service.NewReportService(policy),
		policy,
		metrics.NewMetrics(),
	)

	return rest.NewRouter(&rest.Container{
		AuthService:      service.NewAuthService(testSecret),
		InterviewService: interviewSvc,
		Metrics:          metrics.NewMetrics(),
	})
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	claims := &model.CandidateClaims{UserID: userID}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, srv http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var env envelope
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("invalid envelope %q: %v", w.Body.String(), err)
		}
	}
	return w, &env
}

func startBody() map[string]interface{} {
	return map[string]interface{}{
		"role":            "Backend Engineer",
		"experienceLevel": "Mid",
		"mode":            "text",
		"maxQuestions":    2,
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequiresAuth(t *testing.T) {
	srv := newTestServer(t)
	w, _ := doJSON(t, srv, http.MethodPost, "/v1/interviews", "", startBody())
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestInterviewLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := tokenFor(t, "user-1")

	// Start
	w, env := doJSON(t, srv, http.MethodPost, "/v1/interviews", token, startBody())
	if w.Code != http.StatusCreated || !env.Success {
		t.Fatalf("start: code=%d body=%s", w.Code, w.Body.String())
	}
	var started struct {
		SessionID     string                   `json:"sessionId"`
		FirstQuestion *model.GeneratedQuestion `json:"firstQuestion"`
	}
	if err := json.Unmarshal(env.Data, &started); err != nil {
		t.Fatal(err)
	}
	if started.SessionID == "" || started.FirstQuestion == nil {
		t.Fatalf("missing session id or first question: %s", env.Data)
	}

	// Second start conflicts; the kind drives the resume-or-abandon prompt.
	w, env = doJSON(t, srv, http.MethodPost, "/v1/interviews", token, startBody())
	if w.Code != http.StatusConflict || env.Error == nil || env.Error.Kind != "CONFLICT" {
		t.Fatalf("expected CONFLICT envelope, got code=%d body=%s", w.Code, w.Body.String())
	}

	// Active session probe for the reload guard.
	w, env = doJSON(t, srv, http.MethodGet, "/v1/interviews/active", token, nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("active: code=%d body=%s", w.Code, w.Body.String())
	}

	// Answer both questions; the second completes the session.
	answerPath := fmt.Sprintf("/v1/interviews/%s/answers", started.SessionID)
	answer := map[string]interface{}{"answerText": "an answer with enough substance to be scored by the evaluator"}

	w, env = doJSON(t, srv, http.MethodPost, answerPath, token, answer)
	if w.Code != http.StatusOK {
		t.Fatalf("first answer: code=%d body=%s", w.Code, w.Body.String())
	}

	w, env = doJSON(t, srv, http.MethodPost, answerPath, token, answer)
	if w.Code != http.StatusOK {
		t.Fatalf("second answer: code=%d body=%s", w.Code, w.Body.String())
	}
	var submitted struct {
		NextQuestion *model.GeneratedQuestion `json:"nextQuestion"`
		Status       model.SessionStatus      `json:"status"`
		Report       *model.FinalReport       `json:"report"`
	}
	if err := json.Unmarshal(env.Data, &submitted); err != nil {
		t.Fatal(err)
	}
	if submitted.NextQuestion != nil || submitted.Status != model.SessionCompleted || submitted.Report == nil {
		t.Fatalf("final answer should complete with a report: %s", env.Data)
	}

	// The completed session accepts no further answers.
	w, env = doJSON(t, srv, http.MethodPost, answerPath, token, answer)
	if w.Code != http.StatusConflict || env.Error == nil || env.Error.Kind != "INVALID_STATE" {
		t.Fatalf("expected INVALID_STATE, got code=%d body=%s", w.Code, w.Body.String())
	}

	// Completed session is fetchable with its report.
	w, env = doJSON(t, srv, http.MethodGet, "/v1/interviews/"+started.SessionID, token, nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("get: code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestSubmitEmptyAnswerRejected(t *testing.T) {
	srv := newTestServer(t)
	token := tokenFor(t, "user-1")

	_, env := doJSON(t, srv, http.MethodPost, "/v1/interviews", token, startBody())
	var started struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(env.Data, &started); err != nil {
		t.Fatal(err)
	}

	w, env := doJSON(t, srv, http.MethodPost, "/v1/interviews/"+started.SessionID+"/answers", token,
		map[string]interface{}{"answerText": "   "})
	if w.Code != http.StatusBadRequest || env.Error == nil || env.Error.Kind != "VALIDATION" {
		t.Fatalf("expected VALIDATION, got code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestSessionsAreHiddenFromOtherUsers(t *testing.T) {
	srv := newTestServer(t)

	_, env := doJSON(t, srv, http.MethodPost, "/v1/interviews", tokenFor(t, "user-1"), startBody())
	var started struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(env.Data, &started); err != nil {
		t.Fatal(err)
	}

	w, env := doJSON(t, srv, http.MethodGet, "/v1/interviews/"+started.SessionID, tokenFor(t, "user-2"), nil)
	if w.Code != http.StatusNotFound || env.Error == nil || env.Error.Kind != "NOT_FOUND" {
		t.Fatalf("foreign session must read as NOT_FOUND, got code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAbandonOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := tokenFor(t, "user-1")

	_, env := doJSON(t, srv, http.MethodPost, "/v1/interviews", token, startBody())
	var started struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(env.Data, &started); err != nil {
		t.Fatal(err)
	}

	w, env := doJSON(t, srv, http.MethodPost, "/v1/interviews/"+started.SessionID+"/abandon", token, nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("abandon: code=%d body=%s", w.Code, w.Body.String())
	}

	// Slot released: a new interview may start.
	w, _ = doJSON(t, srv, http.MethodPost, "/v1/interviews", token, startBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("restart after abandon: code=%d body=%s", w.Code, w.Body.String())
	}
}
