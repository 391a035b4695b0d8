// Package hub keeps the process-wide registry of rooms and their
// currently connected members.
package hub

import (
	"context"
	"log/slog"
	"sync"

	"shelter-chat/contract"
	"shelter-chat/domain"
)

type memberSet map[string]contract.MessageSink

// Registry maps a room to its connected members. It is the single owner
// of that structure; connections mutate it only through Join and Leave.
// A room entry is created on the first join and removed by the leave
// that empties it, so transient rooms never accumulate.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]memberSet
	log   *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		rooms: make(map[domain.RoomID]memberSet),
		log:   log,
	}
}

// Join adds a connection to the room's member set, initializing the room
// on the fly if it does not exist yet.
func (r *Registry) Join(roomID domain.RoomID, connID string, sink contract.MessageSink) {
	r.mu.Lock()
	members, ok := r.rooms[roomID]
	if !ok {
		members = make(memberSet)
		r.rooms[roomID] = members
	}
	members[connID] = sink
	count := len(members)
	r.mu.Unlock()

	r.log.Info("client joined", "room", roomID, "conn", connID, "members", count)
}

// Leave removes a connection from the room. The room entry itself is
// dropped once no member is left.
func (r *Registry) Leave(roomID domain.RoomID, connID string) {
	r.mu.Lock()
	members, ok := r.rooms[roomID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(members, connID)
	count := len(members)
	if count == 0 {
		delete(r.rooms, roomID)
	}
	r.mu.Unlock()

	r.log.Info("client left", "room", roomID, "conn", connID, "members", count)
	if count == 0 {
		r.log.Info("room removed", "room", roomID)
	}
}

// Broadcast delivers the message to a point-in-time snapshot of the
// room's members, the sender included. A member whose sink refuses the
// delivery (closed or saturated connection) is skipped, not an error;
// a member joining during the broadcast catches the next message.
func (r *Registry) Broadcast(ctx context.Context, roomID domain.RoomID, m domain.Message) {
	r.mu.RLock()
	members := r.rooms[roomID]
	snapshot := make(map[string]contract.MessageSink, len(members))
	for connID, sink := range members {
		snapshot[connID] = sink
	}
	r.mu.RUnlock()

	for connID, sink := range snapshot {
		if err := sink.Consume(ctx, m); err != nil {
			r.log.Debug("member skipped during broadcast",
				"room", roomID,
				"conn", connID,
				"error", err)
		}
	}
}

// MemberCount reports how many connections are currently in the room.
func (r *Registry) MemberCount(roomID domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// RoomCount reports how many rooms currently have at least one member.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
