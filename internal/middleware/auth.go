package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tasktreasure/tasktreasure/internal/auth"
	"github.com/tasktreasure/tasktreasure/internal/store"
)

// SessionCookieName is the cookie carrying the session token for browser
// clients. API clients send the same token as a bearer token.
const SessionCookieName = "tasktreasure_session"

// RequireAuth resolves the session token and populates AuthContext.
// Requests without a live session get a 401 JSON error.
func RequireAuth(sessionStore *store.SessionStore, parentStore *store.ParentStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			sess, err := sessionStore.GetByToken(r.Context(), token)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			parent, err := parentStore.GetByID(r.Context(), sess.ParentID)
			if err != nil || parent == nil {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				ParentID:  parent.ID,
				SessionID: sess.ID,
				Email:     parent.Email,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			notePrincipal(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionToken extracts the token from the Authorization header, falling
// back to the session cookie.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
