package hub

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"shelter-chat/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	got []domain.Message
}

func (s *recordingSink) Consume(_ context.Context, m domain.Message) error {
	s.got = append(s.got, m)
	return nil
}

func testMessage(room domain.RoomID, id uint64) domain.Message {
	return domain.Message{
		ID:        id,
		Room:      room,
		SenderID:  "alice",
		Content:   "hola",
		CreatedAt: time.Now().UTC(),
	}
}

func TestRegistry_Join_One_Room_One_Member(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	connID := uuid.NewString()
	roomID := domain.RoomID(1)
	sink := &recordingSink{}

	// Given no member is connected
	// And no room exists
	req.Zero(registry.RoomCount())

	// When a connection joins a room
	registry.Join(roomID, connID, sink)

	// Then the room exists with one member
	req.Equal(1, registry.RoomCount())
	req.Equal(1, registry.MemberCount(roomID))

	// And a broadcast reaches it
	registry.Broadcast(context.Background(), roomID, testMessage(roomID, 1))
	req.Len(sink.got, 1)
}

func TestRegistry_Join_One_Room_Multiple_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	roomID := domain.RoomID(1)
	sink1 := &recordingSink{}
	sink2 := &recordingSink{}

	// When two connections join the same room
	registry.Join(roomID, uuid.NewString(), sink1)
	registry.Join(roomID, uuid.NewString(), sink2)

	// Then both are members and both receive broadcasts
	req.Equal(2, registry.MemberCount(roomID))

	registry.Broadcast(context.Background(), roomID, testMessage(roomID, 1))
	req.Len(sink1.got, 1)
	req.Len(sink2.got, 1)
}

func TestRegistry_Leave_Removes_Member_And_Empty_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	connID := uuid.NewString()
	roomID := domain.RoomID(1)
	sink := &recordingSink{}

	// Given a connection joined a room
	registry.Join(roomID, connID, sink)

	// When it leaves
	registry.Leave(roomID, connID)

	// Then the room is gone entirely
	req.Zero(registry.RoomCount())

	// And a later broadcast delivers nothing to it
	registry.Broadcast(context.Background(), roomID, testMessage(roomID, 1))
	req.Empty(sink.got)
}

func TestRegistry_Leave_Keeps_Remaining_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	connID1 := uuid.NewString()
	roomID := domain.RoomID(1)
	sink1 := &recordingSink{}
	sink2 := &recordingSink{}

	registry.Join(roomID, connID1, sink1)
	registry.Join(roomID, uuid.NewString(), sink2)

	// When one member leaves
	registry.Leave(roomID, connID1)

	// Then the other still receives broadcasts
	req.Equal(1, registry.MemberCount(roomID))
	registry.Broadcast(context.Background(), roomID, testMessage(roomID, 1))
	req.Empty(sink1.got)
	req.Len(sink2.got, 1)
}

func TestRegistry_Broadcast_Is_Scoped_To_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	sink1 := &recordingSink{}
	sink2 := &recordingSink{}

	// Given members in two different rooms
	registry.Join(domain.RoomID(1), uuid.NewString(), sink1)
	registry.Join(domain.RoomID(2), uuid.NewString(), sink2)

	// When a message is broadcast in the first room
	registry.Broadcast(context.Background(), domain.RoomID(1), testMessage(1, 1))

	// Then only its member receives it
	req.Len(sink1.got, 1)
	req.Empty(sink2.got)
}

func TestRegistry_Leave_Unknown_Room_Is_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	registry.Leave(domain.RoomID(99), uuid.NewString())
	req.Zero(registry.RoomCount())
}
