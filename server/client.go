// Package server exposes the chat system over HTTP: the WebSocket room
// endpoint, the history endpoint, and the liveness probe.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"shelter-chat/contract"
	"shelter-chat/domain"
	"shelter-chat/errors"
	"shelter-chat/protocol"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// State is the lifecycle of one connection.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateJoined
	StateClosing
	StateClosed
)

const (
	// writeWait is the deadline for a single outbound write.
	writeWait = 10 * time.Second
	// pongWait is how long a silent peer is considered alive.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = 54 * time.Second

	sendBufferSize = 256
)

// Client is one live socket together with its authenticated identity.
// It belongs to exactly one room for its whole lifetime and is owned by
// the goroutine pair servicing the socket.
type Client struct {
	id       string
	room     domain.RoomID
	identity domain.Identity
	conn     *websocket.Conn

	registry    contract.IRegistry
	broadcaster contract.IBroadcaster
	log         *slog.Logger

	send      chan []byte
	done      chan struct{}
	state     atomic.Int32
	closeOnce sync.Once
}

// NewClient wraps an admitted handshake. A client is only constructed
// from a verified credential, so it begins its life authenticated.
func NewClient(conn *websocket.Conn, identity domain.Identity, room domain.RoomID,
	registry contract.IRegistry, broadcaster contract.IBroadcaster,
	log *slog.Logger) *Client {
	c := &Client{
		id:          uuid.NewString(),
		room:        room,
		identity:    identity,
		conn:        conn,
		registry:    registry,
		broadcaster: broadcaster,
		log:         log,
		send:        make(chan []byte, sendBufferSize),
		done:        make(chan struct{}),
	}
	c.state.Store(int32(StateAuthenticated))
	return c
}

// State reports the connection's current lifecycle state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Join registers the client with the room registry. A client joins
// exactly once in its lifetime; a second call is refused.
func (c *Client) Join() error {
	if !c.state.CompareAndSwap(int32(StateAuthenticated), int32(StateJoined)) {
		return errors.ErrAlreadyJoined
	}
	c.registry.Join(c.room, c.id, c)
	return nil
}

// Consume implements contract.MessageSink: it hands the broadcast frame
// to the write pump. It never blocks the registry; a closed connection
// or a saturated buffer makes the delivery a skip.
func (c *Client) Consume(ctx context.Context, m domain.Message) error {
	payload, err := json.Marshal(protocol.NewServerMessage(m))
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return errors.ErrConnectionClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return errors.ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
		c.log.Warn("send buffer full, dropping frame", "room", c.room, "conn", c.id)
		return errors.ErrConnectionClosed
	}
}

// readPump services inbound frames until the socket closes; it blocks
// the calling goroutine. Malformed or invalid frames are answered with a
// single error frame to this client only and never end the connection.
func (c *Client) readPump() {
	defer c.shutdown("read loop ended")

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Warn("setting read deadline failed", "conn", c.id, "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.log.Warn("unexpected socket error", "conn", c.id, "error", err)
			}
			return
		}
		c.handleFrame(raw)
	}
}

func (c *Client) handleFrame(raw []byte) {
	frame, err := protocol.DecodeClientFrame(raw)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	// The sender going away must not abort a commit already under way:
	// the message still reaches the other members, so the post runs
	// detached from this connection's lifetime.
	_, err = c.broadcaster.Post(context.Background(),
		c.room, c.identity, frame.Content)
	if err != nil {
		c.sendError(errors.ErrPersistence.Error())
	}
}

func (c *Client) sendError(message string) {
	payload, err := json.Marshal(protocol.NewServerError(message))
	if err != nil {
		c.log.Error("encoding error frame failed", "conn", c.id, "error", err)
		return
	}
	select {
	case c.send <- payload:
	case <-c.done:
	default:
	}
}

// writePump owns all writes to the socket: broadcast frames, error
// frames, pings, and the final close message.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown("write loop ended")
	}()

	for {
		select {
		case payload := <-c.send:
			if err := c.write(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.write(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) write(messageType int, payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, payload)
}

// shutdown runs the disconnect path exactly once, whichever event fired
// it: client close, transport error, or server termination.
func (c *Client) shutdown(reason string) {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosing))
		close(c.done)
		c.registry.Leave(c.room, c.id)
		if err := c.conn.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
			c.log.Debug("closing socket", "conn", c.id, "error", err)
		}
		c.state.Store(int32(StateClosed))
		c.log.Info("client disconnected", "room", c.room, "conn", c.id, "reason", reason)
	})
}
