// Package broadcast orchestrates the persist-then-fanout sequence:
// a message is broadcast if and only if it was durably appended, and
// broadcasts within one room leave in persistence order.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"shelter-chat/contract"
	"shelter-chat/domain"
	"shelter-chat/errors"
)

// Broadcaster serializes concurrent sends within one room at the
// persist+broadcast boundary (single writer per room) while sends in
// different rooms proceed fully in parallel.
type Broadcaster struct {
	store    contract.IMessageStore
	registry contract.IRegistry
	log      *slog.Logger

	mu    sync.Mutex
	lines map[domain.RoomID]*line
}

// line is one room's write lock. Entries are refcounted so the map does
// not grow with every room ever seen: the last sender out drops the entry.
type line struct {
	sync.Mutex
	refs int
}

func New(log *slog.Logger, store contract.IMessageStore, registry contract.IRegistry) *Broadcaster {
	return &Broadcaster{
		store:    store,
		registry: registry,
		log:      log,
		lines:    make(map[domain.RoomID]*line),
	}
}

// Post appends the message to the store and, only on success, fans the
// canonical record out to the room's current members. On persistence
// failure nothing is broadcast and nothing is retried; the caller may
// resend, which yields a fresh id.
func (b *Broadcaster) Post(ctx context.Context, roomID domain.RoomID,
	sender domain.Identity, content string) (domain.Message, error) {
	ln := b.acquire(roomID)
	ln.Lock()
	defer func() {
		ln.Unlock()
		b.release(roomID)
	}()

	message, err := b.store.Append(roomID, sender, content)
	if err != nil {
		b.log.Error("message append failed",
			"room", roomID,
			"sender", sender.ID,
			"error", err)
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	b.registry.Broadcast(ctx, roomID, message)
	return message, nil
}

func (b *Broadcaster) acquire(roomID domain.RoomID) *line {
	b.mu.Lock()
	defer b.mu.Unlock()
	ln, ok := b.lines[roomID]
	if !ok {
		ln = &line{}
		b.lines[roomID] = ln
	}
	ln.refs++
	return ln
}

func (b *Broadcaster) release(roomID domain.RoomID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ln, ok := b.lines[roomID]
	if !ok {
		return
	}
	ln.refs--
	if ln.refs == 0 {
		delete(b.lines, roomID)
	}
}
