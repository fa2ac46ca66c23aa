package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/uwpokerclub/clubhouse/live"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The admin UI is same-origin in production; the deployment sits behind a
	// reverse proxy that enforces it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub *live.Hub
}

func NewWebSocketHandler(hub *live.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWS handles GET /ws/semesters/{semesterID}: upgrades the connection and
// joins the client to that semester's room.
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	semesterID, err := getUUIDFromURL(r, "semesterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		slog.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, live.SemesterRoom(semesterID.String()))
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
