package handler

import (
	"encoding/json"
	"net/http"

	"prepdeck/internal/apperr"
)

// envelope is the uniform response wrapper for every endpoint.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(kind))
	json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   &errorBody{Kind: string(kind), Message: apperr.MessageOf(err)},
	})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidState, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
