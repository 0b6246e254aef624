package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sky-flux/fsrs45"
	"github.com/sky-flux/fsrs45/evaluate"
	"github.com/sky-flux/fsrs45/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrAlreadyExists),
		errors.Is(err, store.ErrIncompleteHistory):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidCard),
		errors.Is(err, store.ErrUnsupportedVersion),
		errors.Is(err, fsrs45.ErrInvalidGrade),
		errors.Is(err, fsrs45.ErrPartialState),
		errors.Is(err, fsrs45.ErrInvalidState),
		errors.Is(err, fsrs45.ErrCardIDMismatch):
		return http.StatusBadRequest
	case errors.Is(err, evaluate.ErrEmptyLogs),
		errors.Is(err, evaluate.ErrNoCrossDayReviews):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
