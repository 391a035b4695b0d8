//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"shelter-chat/domain"
)

// MessageSink is one room member's delivery endpoint. Consume must not
// block the caller; implementations buffer and report a full buffer or a
// closed connection as an error so the registry can skip the member.
type MessageSink interface {
	Consume(ctx context.Context, m domain.Message) error
}

// IRegistry is the process-wide room registry, the single point of truth
// for who is in a room right now. Rooms spring into existence on the
// first join and are removed when their member set becomes empty.
type IRegistry interface {
	Join(roomID domain.RoomID, connID string, sink MessageSink)
	Leave(roomID domain.RoomID, connID string)
	Broadcast(ctx context.Context, roomID domain.RoomID, m domain.Message)
}

// IMessageStore durably appends messages and owns id and timestamp
// assignment. History returns up to limit most recent messages for a
// room, ordered oldest to newest.
type IMessageStore interface {
	Append(roomID domain.RoomID, sender domain.Identity, content string) (domain.Message, error)
	History(roomID domain.RoomID, limit int) ([]domain.Message, error)
}

// IVerifier resolves a bearer credential to an identity or rejects it.
type IVerifier interface {
	Verify(credential string) (domain.Identity, error)
}

// IBroadcaster runs the persist-then-fanout sequence for one accepted
// message. The returned message carries the canonical id and timestamp.
type IBroadcaster interface {
	Post(ctx context.Context, roomID domain.RoomID, sender domain.Identity, content string) (domain.Message, error)
}
