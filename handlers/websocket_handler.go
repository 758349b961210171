package handlers

import (
	"log/slog"
	"net/http"

	"github.com/club-padel/admin-api/realtime"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: ограничить Origin доменом консоли перед продом.
		return true
	},
}

type WebSocketHandler struct {
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeMatches — подписка на общую ленту событий матчей.
func (h *WebSocketHandler) ServeMatches(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, realtime.RoomAllMatches)
}

// ServeTournament — подписка на события матчей одного турнира.
func (h *WebSocketHandler) ServeTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.serve(w, r, realtime.TournamentRoom(tournamentID))
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправил клиенту HTTP-ошибку.
		h.logger.Warn("failed to upgrade websocket connection",
			slog.String("room", room), slog.Any("error", err))
		return
	}

	h.hub.Register(realtime.NewClient(h.hub, conn, room))
}
