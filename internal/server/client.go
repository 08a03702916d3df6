package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/arcanaduel/arcana-server-go/internal/game"
	"github.com/arcanaduel/arcana-server-go/internal/room"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 256
)

// rateLimiter is a sliding-window counter for game actions on one
// connection. Lobby and deck traffic is not counted.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{limit: limit, window: window}
}

// allow records one action and reports whether it fits the window.
func (l *rateLimiter) allow(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := now.Add(-l.window)
	kept := l.stamps[:0]
	for _, stamp := range l.stamps {
		if stamp.After(cutoff) {
			kept = append(kept, stamp)
		}
	}
	l.stamps = kept
	if len(l.stamps) >= l.limit {
		return false
	}
	l.stamps = append(l.stamps, now)
	return true
}

// Client is one authenticated websocket connection.
type Client struct {
	playerID string
	username string

	conn    *websocket.Conn
	server  *Server
	logger  *zap.Logger
	limiter *rateLimiter

	send      chan outbound
	closeOnce sync.Once
	closed    chan struct{}
}

func newClient(server *Server, conn *websocket.Conn, playerID, username string) *Client {
	return &Client{
		playerID: playerID,
		username: username,
		conn:     conn,
		server:   server,
		logger: server.logger.With(
			zap.String("player_id", playerID),
		),
		limiter: newRateLimiter(server.cfg.Room.ActionRateLimit, server.cfg.Room.ActionRateWindow),
		send:    make(chan outbound, sendBuffer),
		closed:  make(chan struct{}),
	}
}

func (c *Client) enqueue(msg outbound) {
	select {
	case c.send <- msg:
	case <-c.closed:
	default:
		// A client that cannot drain its queue is dropped rather than
		// allowed to stall the room.
		c.logger.Warn("send buffer full, closing connection")
		c.close()
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

// readPump owns the connection's read side until it closes.
func (c *Client) readPump() {
	defer func() {
		c.server.hub.unbind(c)
		c.server.rooms.Disconnect(c.playerID)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var envelope Envelope
		if err := c.conn.ReadJSON(&envelope); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		c.handle(envelope)
	}
}

// writePump owns the connection's write side.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handle(envelope Envelope) {
	switch envelope.Type {
	case msgRoomCreate:
		c.roomResult(c.server.rooms.Create(c.playerID, c.username))
	case msgRoomJoin:
		var payload joinPayload
		if !c.decode(envelope, &payload, msgRoomError) {
			return
		}
		c.roomResult(c.server.rooms.Join(payload.RoomCode, c.playerID, c.username))
	case msgRoomSolo:
		var payload soloPayload
		if !c.decode(envelope, &payload, msgRoomError) {
			return
		}
		c.roomResult(c.server.rooms.Solo(c.playerID, c.username, payload.EncounterID))
	case msgRoomReady:
		var payload readyPayload
		if !c.decode(envelope, &payload, msgRoomError) {
			return
		}
		c.roomError(c.server.rooms.SetReady(c.playerID, payload.Ready))
	case msgRoomStart:
		c.roomError(c.server.rooms.Start(c.playerID))
	case msgRoomLeave:
		c.roomError(c.server.rooms.Leave(c.playerID))

	case msgDeckList:
		c.sendDeckList()
	case msgDeckSave:
		var payload deckSavePayload
		if !c.decode(envelope, &payload, msgDeckError) {
			return
		}
		if _, err := c.server.decks.Save(c.playerID, payload.ID, payload.Name, payload.TemplateIDs); err != nil {
			c.enqueue(outbound{Type: msgDeckError, Payload: errorPayload{Message: err.Error()}})
			return
		}
		c.sendDeckList()
	case msgDeckDelete:
		var payload deckIDPayload
		if !c.decode(envelope, &payload, msgDeckError) {
			return
		}
		if err := c.server.decks.Delete(c.playerID, payload.ID); err != nil {
			c.enqueue(outbound{Type: msgDeckError, Payload: errorPayload{Message: err.Error()}})
			return
		}
		c.sendDeckList()
	case msgDeckSetActive:
		var payload deckIDPayload
		if !c.decode(envelope, &payload, msgDeckError) {
			return
		}
		if err := c.server.decks.SetActive(c.playerID, payload.ID); err != nil {
			c.enqueue(outbound{Type: msgDeckError, Payload: errorPayload{Message: err.Error()}})
			return
		}
		c.sendDeckList()

	case msgGameAction:
		c.handleGameAction(envelope)

	default:
		c.enqueue(outbound{Type: msgRoomError, Payload: errorPayload{
			Message: "unknown message type " + envelope.Type,
		}})
	}
}

func (c *Client) handleGameAction(envelope Envelope) {
	if !c.limiter.allow(time.Now()) {
		c.enqueue(outbound{Type: msgGameError, Payload: gameErrorPayload{
			Code:    "RATE_LIMITED",
			Message: "too many actions, slow down",
		}})
		return
	}
	var action game.Action
	if err := json.Unmarshal(envelope.Payload, &action); err != nil {
		c.enqueue(outbound{Type: msgGameError, Payload: gameErrorPayload{
			Message: "malformed action payload",
		}})
		return
	}
	if err := c.server.rooms.SubmitAction(c.playerID, action); err != nil {
		c.enqueue(outbound{Type: msgGameError, Payload: gameErrorPayload{
			ActionID: action.ID,
			Message:  err.Error(),
		}})
	}
}

func (c *Client) sendDeckList() {
	c.enqueue(outbound{Type: msgDeckListResp, Payload: map[string]any{
		"decks": c.server.decks.List(c.playerID),
	}})
}

func (c *Client) decode(envelope Envelope, target any, errType string) bool {
	if len(envelope.Payload) == 0 {
		return true
	}
	if err := json.Unmarshal(envelope.Payload, target); err != nil {
		c.enqueue(outbound{Type: errType, Payload: errorPayload{Message: "malformed payload"}})
		return false
	}
	return true
}

// roomResult reports either the room state or the lobby error to the caller.
// Successful lobby operations already broadcast room:state through the hub.
func (c *Client) roomResult(_ *room.Room, err error) {
	c.roomError(err)
}

func (c *Client) roomError(err error) {
	if err != nil {
		c.enqueue(outbound{Type: msgRoomError, Payload: errorPayload{Message: err.Error()}})
	}
}
