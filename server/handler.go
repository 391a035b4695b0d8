package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"shelter-chat/auth"
	"shelter-chat/contract"
	"shelter-chat/domain"

	"github.com/gorilla/websocket"
)

// ChatHandler is the auth gate in front of the room endpoint: it resolves
// the bearer credential before the upgrade completes, so a rejected
// handshake never creates a connection or any room state.
type ChatHandler struct {
	verifier    contract.IVerifier
	registry    contract.IRegistry
	broadcaster contract.IBroadcaster
	log         *slog.Logger
	upgrader    websocket.Upgrader
	readLimit   int64
}

func NewChatHandler(log *slog.Logger, verifier contract.IVerifier,
	registry contract.IRegistry, broadcaster contract.IBroadcaster,
	readLimit int64) *ChatHandler {
	return &ChatHandler{
		verifier:    verifier,
		registry:    registry,
		broadcaster: broadcaster,
		log:         log,
		readLimit:   readLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The production clients are native mobile apps; browser
			// origin checks do not apply to them.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDFromRequest(r)
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}

	identity, err := h.verifier.Verify(auth.BearerFromRequest(r))
	if err != nil {
		h.log.Warn("handshake rejected", "room", roomID, "error", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", "room", roomID, "error", err)
		return
	}
	conn.SetReadLimit(h.readLimit)

	client := NewClient(conn, identity, roomID, h.registry, h.broadcaster, h.log)
	if err := client.Join(); err != nil {
		h.log.Error("join refused", "room", roomID, "conn", client.id, "error", err)
		_ = conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

func roomIDFromRequest(r *http.Request) (domain.RoomID, error) {
	id, err := strconv.Atoi(r.PathValue("roomID"))
	if err != nil {
		return 0, err
	}
	return domain.RoomID(id), nil
}
