// Package protocol defines the closed set of frames exchanged with
// clients and validates inbound payloads at the boundary.
package protocol

import (
	"encoding/json"
	"strings"
	"time"

	"shelter-chat/domain"
	"shelter-chat/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ClientFrame is the only shape accepted from clients.
type ClientFrame struct {
	Content string `json:"content" validate:"required"`
}

// ServerMessage is the canonical broadcast frame. Every member of the
// room receives it, the sender included, so everyone observes the
// server-assigned id and timestamp.
type ServerMessage struct {
	Type       string    `json:"type"`
	ID         uint64    `json:"id"`
	RoomID     int       `json:"roomId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ServerError is sent only to the originating connection, never broadcast.
type ServerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewServerMessage(m domain.Message) ServerMessage {
	return ServerMessage{
		Type:       "message",
		ID:         m.ID,
		RoomID:     int(m.Room),
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

func NewServerError(message string) ServerError {
	return ServerError{Type: "error", Message: message}
}

// DecodeClientFrame parses raw bytes as sender input.
// It returns ErrMalformedFrame when the payload is not a decodable JSON
// object and ErrContentRequired when content is absent or blank after
// trimming surrounding whitespace. Both are non-fatal to the connection.
func DecodeClientFrame(raw []byte) (ClientFrame, error) {
	var frame ClientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return ClientFrame{}, errors.ErrMalformedFrame
	}

	frame.Content = strings.TrimSpace(frame.Content)
	if err := validate.Struct(frame); err != nil {
		return ClientFrame{}, errors.ErrContentRequired
	}
	return frame, nil
}
