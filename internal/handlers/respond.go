package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/questkit/quest-engine/pkg/dialogue"
	"github.com/questkit/quest-engine/pkg/mission"
	"github.com/questkit/quest-engine/pkg/quiz"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// writeDomainError maps domain sentinel errors onto HTTP statuses:
// bad arguments are 400, state conflicts 409, unknown ids 404.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dialogue.ErrInvalidArgument), errors.Is(err, quiz.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, dialogue.ErrInvalidState), errors.Is(err, mission.ErrInvalidState), errors.Is(err, quiz.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, mission.ErrNotFound):
		status = http.StatusNotFound
	}
	writeError(w, logger, status, err.Error())
}
