package repositories

import (
	"fmt"
	"log/slog"
	"testing"

	"shelter-chat/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

var alice = domain.Identity{ID: "alice", Name: "Alice", Email: "alice@example.org"}

func newTestRepository(t *testing.T) *MessageRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)

	repo := NewMessageRepository(db, slog.Default())
	t.Cleanup(func() {
		_ = repo.Close()
		_ = db.Close()
	})
	return repo
}

func TestAppend_Assigns_Increasing_Ids(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	roomID := domain.RoomID(42)

	first, err := repo.Append(roomID, alice, "hola")
	req.NoError(err)
	second, err := repo.Append(roomID, alice, "que tal")
	req.NoError(err)

	req.Equal(uint64(1), first.ID)
	req.Greater(second.ID, first.ID)
	req.False(first.CreatedAt.IsZero())
	req.Equal("alice", first.SenderID)
	req.Equal("Alice", first.SenderName)
}

func TestAppend_Ids_Are_Scoped_Per_Room(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)

	inFirst, err := repo.Append(domain.RoomID(1), alice, "hola")
	req.NoError(err)
	inSecond, err := repo.Append(domain.RoomID(2), alice, "hola")
	req.NoError(err)

	// Each room starts its own sequence
	req.Equal(uint64(1), inFirst.ID)
	req.Equal(uint64(1), inSecond.ID)
}

func TestHistory_Returns_Most_Recent_Oldest_First(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	roomID := domain.RoomID(42)

	// Given 75 persisted messages
	for i := 1; i <= 75; i++ {
		_, err := repo.Append(roomID, alice, fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	// When the last 50 are requested
	messages, err := repo.History(roomID, 50)
	req.NoError(err)

	// Then exactly the 50 most recent come back, oldest to newest
	req.Len(messages, 50)
	req.Equal("message 26", messages[0].Content)
	req.Equal("message 75", messages[49].Content)
	for i := 1; i < len(messages); i++ {
		req.Greater(messages[i].ID, messages[i-1].ID)
	}
}

func TestHistory_Empty_Room(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)

	messages, err := repo.History(domain.RoomID(99), 50)
	req.NoError(err)
	req.Empty(messages)
}

func TestHistory_Is_Scoped_To_Room(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)

	_, err := repo.Append(domain.RoomID(1), alice, "in room one")
	req.NoError(err)
	_, err = repo.Append(domain.RoomID(2), alice, "in room two")
	req.NoError(err)

	messages, err := repo.History(domain.RoomID(1), 50)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("in room one", messages[0].Content)
}

func TestHistory_Roundtrips_Message_Fields(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	roomID := domain.RoomID(42)

	persisted, err := repo.Append(roomID, alice, "hola")
	req.NoError(err)

	messages, err := repo.History(roomID, 50)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal(persisted.ID, messages[0].ID)
	req.Equal(persisted.Content, messages[0].Content)
	req.Equal(persisted.SenderID, messages[0].SenderID)
	req.Equal(persisted.SenderName, messages[0].SenderName)
	req.True(persisted.CreatedAt.Equal(messages[0].CreatedAt))
}
