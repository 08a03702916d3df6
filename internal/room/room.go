package room

import (
	"sync"
	"time"
)

// Status is the room lifecycle status.
type Status string

const (
	StatusLobby    Status = "LOBBY"
	StatusRunning  Status = "RUNNING"
	StatusFinished Status = "FINISHED"
)

// Mode distinguishes two-human rooms from solo rooms with a bot.
type Mode string

const (
	ModePvp  Mode = "PVP"
	ModeSolo Mode = "SOLO"
)

// Participant is one seat in a room. A bot participant has no connection and
// is always ready.
type Participant struct {
	PlayerID string
	Username string
	IsBot    bool
	BotTier  int
	IsHost   bool
	Ready    bool
	Online   bool
	LastSeen time.Time
}

// Room is one duel room. Lobby bookkeeping is guarded by mu; once running,
// the game state itself belongs exclusively to the session worker.
type Room struct {
	mu sync.Mutex

	Code        string
	Mode        Mode
	EncounterID string

	status       Status
	participants []*Participant
	session      *Session

	createdAt    time.Time
	lastActivity time.Time
}

func newRoom(code string, mode Mode) *Room {
	now := time.Now()
	return &Room{
		Code:         code,
		Mode:         mode,
		status:       StatusLobby,
		createdAt:    now,
		lastActivity: now,
	}
}

// ParticipantState is the client-visible view of one seat.
type ParticipantState struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	IsBot    bool   `json:"isBot,omitempty"`
	IsHost   bool   `json:"isHost,omitempty"`
	Ready    bool   `json:"ready"`
	Online   bool   `json:"online"`
}

// State is the room:state broadcast payload.
type State struct {
	Code         string             `json:"roomCode"`
	Mode         Mode               `json:"mode"`
	Status       Status             `json:"status"`
	EncounterID  string             `json:"encounterId,omitempty"`
	Participants []ParticipantState `json:"participants"`
}

// Status returns the lifecycle status.
func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// State snapshots the room for broadcasting.
func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Room) stateLocked() State {
	state := State{
		Code:        r.Code,
		Mode:        r.Mode,
		Status:      r.status,
		EncounterID: r.EncounterID,
	}
	for _, p := range r.participants {
		state.Participants = append(state.Participants, ParticipantState{
			PlayerID: p.PlayerID,
			Username: p.Username,
			IsBot:    p.IsBot,
			IsHost:   p.IsHost,
			Ready:    p.Ready,
			Online:   p.Online,
		})
	}
	return state
}

func (r *Room) participantLocked(playerID string) *Participant {
	for _, p := range r.participants {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// humanIDs returns the connected-capable participants, for fan-out.
func (r *Room) humanIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, p := range r.participants {
		if !p.IsBot {
			ids = append(ids, p.PlayerID)
		}
	}
	return ids
}

func (r *Room) touch() {
	r.mu.Lock()
	r.lastActivity = time.Now()
	r.mu.Unlock()
}

func (r *Room) finish() {
	r.mu.Lock()
	r.status = StatusFinished
	r.lastActivity = time.Now()
	r.mu.Unlock()
}

// expired reports whether the cleanup pass should drop the room.
func (r *Room) expired(now time.Time, idleTimeout, offlineTimeout time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	humans := 0
	allOfflineSince := now
	for _, p := range r.participants {
		if p.IsBot {
			continue
		}
		humans++
		if p.Online {
			return now.Sub(r.lastActivity) > idleTimeout
		}
		if p.LastSeen.Before(allOfflineSince) {
			allOfflineSince = p.LastSeen
		}
	}
	if humans == 0 {
		return true
	}
	// Every human is offline.
	return now.Sub(allOfflineSince) > offlineTimeout || now.Sub(r.lastActivity) > idleTimeout
}
