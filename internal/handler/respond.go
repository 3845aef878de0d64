package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tasktreasure/tasktreasure/internal/auth"
	"github.com/tasktreasure/tasktreasure/internal/chore"
	"github.com/tasktreasure/tasktreasure/internal/store"
)

// errorBody is the JSON shape of every error response. Retryable marks
// transient store failures the client may simply try again.
type errorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// storeError maps a store failure onto a response: missing documents become
// 404, anything else is logged and surfaced as a retryable 500.
func storeError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, chore.ErrInvalidDateKey):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error(msg, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msg, Retryable: true})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// parentID returns the signed-in parent. Routes using it sit behind
// RequireAuth, so it is never empty there.
func parentID(r *http.Request) string {
	return auth.ParentID(r.Context())
}

// dateParam reads ?date=YYYY-MM-DD, defaulting to today in loc.
func dateParam(r *http.Request, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(r.URL.Query().Get("date"))
	if s == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	return time.ParseInLocation(chore.DateKeyLayout, s, loc)
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}
