package server

import (
	"net/http"
)

// NewRouter wires the public endpoints. Paths follow the deployed mobile
// clients: the room socket under /ws/chat/, the history under /api/chat/.
func NewRouter(chat *ChatHandler, history *HistoryHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /ws/chat/{roomID}/{$}", chat)
	mux.Handle("GET /api/chat/{roomID}/{$}", history)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}
