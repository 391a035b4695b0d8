package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"shelter-chat/domain"

	"github.com/stretchr/testify/require"
)

func (e *testEnv) getHistory(t *testing.T, room int, token string) *http.Response {
	t.Helper()
	request, err := http.NewRequest(http.MethodGet,
		fmt.Sprintf("%s/api/chat/%d/", e.srv.URL, room), nil)
	require.NoError(t, err)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHistory_Requires_Authentication(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	resp := env.getHistory(t, 42, "")
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestHistory_Returns_Last_Fifty_Oldest_First(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := domain.Identity{ID: "alice", Name: "Alice"}

	// Given 75 persisted messages
	for i := 1; i <= 75; i++ {
		_, err := env.repo.Append(domain.RoomID(42), alice, fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	resp := env.getHistory(t, 42, env.token(t, alice))
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("application/json", resp.Header.Get("Content-Type"))

	var entries []struct {
		ID         uint64 `json:"id"`
		Content    string `json:"content"`
		CreatedAt  string `json:"createdAt"`
		SenderID   string `json:"senderId"`
		SenderName string `json:"senderName"`
	}
	req.NoError(json.NewDecoder(resp.Body).Decode(&entries))

	req.Len(entries, 50)
	req.Equal("message 26", entries[0].Content)
	req.Equal("message 75", entries[49].Content)
	req.Equal("alice", entries[0].SenderID)
	req.Equal("Alice", entries[0].SenderName)
	req.NotEmpty(entries[0].CreatedAt)
	for i := 1; i < len(entries); i++ {
		req.Greater(entries[i].ID, entries[i-1].ID)
	}
}

func TestHistory_Empty_Room_Returns_Empty_List(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	resp := env.getHistory(t, 7, env.token(t, domain.Identity{ID: "alice"}))
	req.Equal(http.StatusOK, resp.StatusCode)

	var entries []any
	req.NoError(json.NewDecoder(resp.Body).Decode(&entries))
	req.Empty(entries)
}

func TestHistory_Invalid_Room_Id(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	request, err := http.NewRequest(http.MethodGet, env.srv.URL+"/api/chat/abc/", nil)
	req.NoError(err)
	resp, err := http.DefaultClient.Do(request)
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusBadRequest, resp.StatusCode)
}
