package websocket

import (
	"log"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/roomiesapp/roomies/internal/auth"
)

// HandleWebSocket upgrades the connection and runs it as a Hub client scoped
// to the authenticated session's household.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := auth.HouseholdID(r.Context())
		if householdID == 0 {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // PWA connects from its own origin
		})
		if err != nil {
			log.Printf("websocket: accept: %v", err)
			return
		}

		client := NewClient(hub, conn, householdID)
		client.Run(r.Context())
	}
}
