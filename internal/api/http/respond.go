package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// respondErr maps the domain error taxonomy onto HTTP statuses with
// user-facing messages. Anything unrecognized is logged and surfaced as
// a generic 500 with the per-operation fallback text; internal detail
// never reaches the caller.
func respondErr(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, exam.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, exam.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "you do not have permission to perform this action")
	case errors.Is(err, exam.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "user not found")
	case errors.Is(err, exam.ErrExamNotFound):
		writeMessage(w, http.StatusNotFound, "exam not found")
	case errors.Is(err, exam.ErrAttemptNotFound):
		writeMessage(w, http.StatusNotFound, "no attempt found for this exam")
	case errors.Is(err, exam.ErrExamNotStarted):
		writeMessage(w, http.StatusBadRequest, "exam has not started yet")
	case errors.Is(err, exam.ErrExamEnded):
		writeMessage(w, http.StatusBadRequest, "exam has already ended")
	case errors.Is(err, exam.ErrAlreadyCompleted):
		writeMessage(w, http.StatusBadRequest, "you have already completed this exam")
	case errors.Is(err, exam.ErrMissingExamCode):
		writeMessage(w, http.StatusBadRequest, "exam code is required")
	default:
		lg := logger.Get()
		lg.Error().Err(err).Str("op", fallback).Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}
