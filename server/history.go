package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"shelter-chat/auth"
	"shelter-chat/contract"
	"shelter-chat/domain"

	"github.com/samber/lo"
)

// HistoryHandler serves the most recent persisted messages of a room,
// oldest to newest. It requires authentication but is independent of any
// live connection: catching up is its job, not the hub's.
type HistoryHandler struct {
	verifier contract.IVerifier
	store    contract.IMessageStore
	log      *slog.Logger
	limit    int
}

func NewHistoryHandler(log *slog.Logger, verifier contract.IVerifier,
	store contract.IMessageStore, limit int) *HistoryHandler {
	return &HistoryHandler{verifier: verifier, store: store, log: log, limit: limit}
}

type historyEntry struct {
	ID         uint64    `json:"id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
}

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDFromRequest(r)
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}

	if _, err := h.verifier.Verify(auth.BearerFromRequest(r)); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	messages, err := h.store.History(roomID, h.limit)
	if err != nil {
		h.log.Error("history read failed", "room", roomID, "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	entries := lo.Map(messages, func(m domain.Message, _ int) historyEntry {
		return historyEntry{
			ID:         m.ID,
			Content:    m.Content,
			CreatedAt:  m.CreatedAt,
			SenderID:   m.SenderID,
			SenderName: m.SenderName,
		}
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		h.log.Error("encoding history failed", "room", roomID, "error", err)
	}
}
