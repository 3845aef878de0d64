package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/tasktreasure/tasktreasure/internal/auth"
)

// HandleWebSocket upgrades an authenticated request and subscribes the
// connection to every ?topic= given, after checking the parent owns each.
// More topics can be added later with subscribe commands. Browser requests
// must come from the server's own host or match originPatterns.
func HandleWebSocket(hub *Hub, authorize Authorizer, originPatterns []string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID := auth.ParentID(r.Context())
		if parentID == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		topics := r.URL.Query()["topic"]
		for _, topic := range topics {
			if err := authorize(r.Context(), parentID, topic); err != nil {
				writeError(w, http.StatusForbidden, err.Error())
				return
			}
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		client := NewClient(hub, conn, parentID, authorize)
		for _, topic := range topics {
			client.Subscribe(topic)
		}
		client.Run(r.Context())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
