package rest

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"prepdeck/internal/metrics"
	"prepdeck/internal/service"
	"prepdeck/internal/transport/rest/handler"
	"prepdeck/internal/transport/rest/middleware"
	"prepdeck/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	InterviewService *service.InterviewService
	Metrics          *metrics.Metrics
	WSHub            *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	interviewHandler := handler.NewInterviewHandler(c.InterviewService)
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	if c.Metrics != nil {
		r.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(c.Metrics.Snapshot())
		}).Methods("GET")
	}

	// API v1 routes, all candidate-authenticated
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(authMW.RequireCandidate)

	v1.HandleFunc("/interviews", interviewHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/interviews/active", interviewHandler.GetActive).Methods("GET", "OPTIONS")
	v1.HandleFunc("/interviews/{id}", interviewHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/interviews/{id}/answers", interviewHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/interviews/{id}/complete", interviewHandler.Complete).Methods("POST", "OPTIONS")
	v1.HandleFunc("/interviews/{id}/abandon", interviewHandler.Abandon).Methods("POST", "OPTIONS")

	// WebSocket event stream (token in query param)
	if c.WSHub != nil {
		wsHandler := ws.NewHandler(c.WSHub, c.AuthService)
		v1.HandleFunc("/ws", wsHandler.Events).Methods("GET")
	}

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
