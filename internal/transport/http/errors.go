package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"timed-quiz-service/internal/domain"
)

const (
	errCodeBadRequest = "BAD_REQUEST"
	errCodeNotFound   = "NOT_FOUND"
	errCodeInternal   = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: code, Message: message})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondDomainError maps domain sentinels onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, errCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidQuestionSet), errors.Is(err, domain.ErrEmptyQuestionSet):
		respondError(w, http.StatusUnprocessableEntity, errCodeBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, errCodeInternal, "internal error")
	}
}
