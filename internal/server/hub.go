package server

import (
	"sync"

	"go.uber.org/zap"

	"github.com/arcanaduel/arcana-server-go/internal/game"
	"github.com/arcanaduel/arcana-server-go/internal/room"
)

// Hub tracks the live connection per player and fans room output out to
// them. It implements room.Sink.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func newHub(logger *zap.Logger) *Hub {
	return &Hub{clients: make(map[string]*Client), logger: logger}
}

// bind attaches a connection to a player id. An existing connection for the
// same player is displaced, which is how reconnection takes over.
func (h *Hub) bind(client *Client) {
	h.mu.Lock()
	old := h.clients[client.playerID]
	h.clients[client.playerID] = client
	h.mu.Unlock()
	if old != nil && old != client {
		old.close()
	}
}

// unbind detaches a connection, unless the player already rebound elsewhere.
func (h *Hub) unbind(client *Client) {
	h.mu.Lock()
	if h.clients[client.playerID] == client {
		delete(h.clients, client.playerID)
	}
	h.mu.Unlock()
}

func (h *Hub) send(playerID string, msg outbound) {
	h.mu.RLock()
	client := h.clients[playerID]
	h.mu.RUnlock()
	if client == nil {
		return
	}
	client.enqueue(msg)
}

// RoomState broadcasts the lobby state to every human in the room.
func (h *Hub) RoomState(playerIDs []string, state room.State) {
	for _, playerID := range playerIDs {
		h.send(playerID, outbound{Type: msgRoomState, Payload: state})
	}
}

func (h *Hub) GameSnapshot(playerID string, snapshot *game.Snapshot) {
	h.send(playerID, outbound{Type: msgGameSnapshot, Payload: snapshot})
}

func (h *Hub) GameEvents(playerID string, version int, events []game.Event) {
	h.send(playerID, outbound{Type: msgGameEvents, Payload: gameEventsPayload{Version: version, Events: events}})
}

func (h *Hub) GamePrompt(playerID string, prompt *game.PendingPrompt) {
	h.send(playerID, outbound{Type: msgGamePrompt, Payload: promptPayload{
		PromptType: "TRAP_RESPONSE_REQUIRED",
		Data:       prompt,
	}})
}

func (h *Hub) GameError(playerID, actionID, code, message string) {
	h.send(playerID, outbound{Type: msgGameError, Payload: gameErrorPayload{
		ActionID: actionID,
		Code:     code,
		Message:  message,
	}})
}
