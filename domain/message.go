// This file defines Message events and related rules.
// Messages are immutable once persisted.
package domain

import (
	"time"
)

// Message represents an immutable chat event. ID and CreatedAt are
// assigned by the message store at append time; the store is the only
// ordering authority, ids are strictly increasing within a room.
type Message struct {
	ID         uint64
	Room       RoomID
	SenderID   string
	SenderName string
	Content    string
	CreatedAt  time.Time
}
