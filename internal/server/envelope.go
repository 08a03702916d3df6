package server

import (
	"encoding/json"

	"github.com/arcanaduel/arcana-server-go/internal/game"
)

// Envelope is the wire frame for every websocket message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// outbound is a server→client message before encoding.
type outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Client→server message types.
const (
	msgRoomCreate    = "room:create"
	msgRoomJoin      = "room:join"
	msgRoomSolo      = "room:solo"
	msgRoomReady     = "room:ready"
	msgRoomStart     = "room:start"
	msgRoomLeave     = "room:leave"
	msgDeckList      = "deck:list"
	msgDeckSave      = "deck:save"
	msgDeckDelete    = "deck:delete"
	msgDeckSetActive = "deck:setActive"
	msgGameAction    = "game:action"
)

// Server→client message types.
const (
	msgRoomState    = "room:state"
	msgRoomError    = "room:error"
	msgDeckListResp = "deck:list"
	msgDeckError    = "deck:error"
	msgGameSnapshot = "game:snapshot"
	msgGameEvents   = "game:events"
	msgGameError    = "game:error"
	msgGamePrompt   = "game:prompt"
)

type joinPayload struct {
	RoomCode string `json:"roomCode"`
}

type soloPayload struct {
	EncounterID string `json:"encounterId,omitempty"`
}

type readyPayload struct {
	Ready bool `json:"ready"`
}

type deckSavePayload struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	TemplateIDs []string `json:"templateIds"`
}

type deckIDPayload struct {
	ID string `json:"id"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type gameErrorPayload struct {
	ActionID string `json:"actionId,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
}

type gameEventsPayload struct {
	Version int          `json:"version"`
	Events  []game.Event `json:"events"`
}

type promptPayload struct {
	PromptType string `json:"promptType"`
	Data       any    `json:"data"`
}
