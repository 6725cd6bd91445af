package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/roomiesapp/roomies/internal/gamify"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeRuleError maps a rejected gamification operation to an HTTP status.
// Rule rejections are client errors, never 500s.
func writeRuleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gamify.ErrInsufficientPoints),
		errors.Is(err, gamify.ErrCannotRedeem),
		errors.Is(err, gamify.ErrCannotJoin),
		errors.Is(err, gamify.ErrAlreadyEarned):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, gamify.ErrInvalidAmount),
		errors.Is(err, gamify.ErrInvalidRequirement):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "operation failed")
	}
}

// isRuleError reports whether err is a gamification rule rejection.
func isRuleError(err error) bool {
	return errors.Is(err, gamify.ErrInsufficientPoints) ||
		errors.Is(err, gamify.ErrCannotRedeem) ||
		errors.Is(err, gamify.ErrCannotJoin) ||
		errors.Is(err, gamify.ErrAlreadyEarned) ||
		errors.Is(err, gamify.ErrInvalidAmount) ||
		errors.Is(err, gamify.ErrInvalidRequirement)
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
