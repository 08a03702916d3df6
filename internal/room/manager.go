package room

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arcanaduel/arcana-server-go/internal/bot"
	"github.com/arcanaduel/arcana-server-go/internal/config"
	"github.com/arcanaduel/arcana-server-go/internal/deck"
	"github.com/arcanaduel/arcana-server-go/internal/game"
	"github.com/arcanaduel/arcana-server-go/internal/pve"
	"github.com/arcanaduel/arcana-server-go/internal/store"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrRoomNotInLobby   = errors.New("room is no longer in the lobby")
	ErrAlreadyInRoom    = errors.New("player is already in a room")
	ErrNotInRoom        = errors.New("player is not in a room")
	ErrNotHost          = errors.New("only the host may start the match")
	ErrNotAllReady      = errors.New("every player must be ready")
	ErrNotEnoughPlayers = errors.New("the duel needs two players")
	ErrTooManyRooms     = errors.New("room limit reached")
	ErrUnknownEncounter = errors.New("unknown encounter")
	ErrGameNotRunning   = errors.New("no running game in this room")
)

// codeAlphabet avoids the lookalike characters 0/O/1/I.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const codeLength = 5

const defaultBotTier = 3

// Manager owns every room and the player→room index. All lobby operations go
// through it; running duels are delegated to each room's session worker.
type Manager struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	playerRoom map[string]string

	engine     *game.Engine
	decks      *deck.Service
	store      store.Store
	encounters *pve.Table
	cfg        config.RoomConfig
	sink       Sink
	logger     *zap.Logger
}

// NewManager wires the room layer. SetSink must be called before any room is
// created.
func NewManager(engine *game.Engine, decks *deck.Service, st store.Store,
	encounters *pve.Table, cfg config.RoomConfig, logger *zap.Logger) *Manager {
	return &Manager{
		rooms:      make(map[string]*Room),
		playerRoom: make(map[string]string),
		engine:     engine,
		decks:      decks,
		store:      st,
		encounters: encounters,
		cfg:        cfg,
		logger:     logger,
	}
}

// SetSink binds the transport fan-out. Separate from the constructor because
// the transport needs the manager first.
func (m *Manager) SetSink(sink Sink) {
	m.sink = sink
}

// Create opens a PVP lobby with the caller as host.
func (m *Manager) Create(playerID, username string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.admitLocked(playerID); err != nil {
		return nil, err
	}

	room := newRoom(m.newCodeLocked(), ModePvp)
	room.participants = append(room.participants, &Participant{
		PlayerID: playerID, Username: username, IsHost: true, Online: true, LastSeen: time.Now(),
	})
	m.rooms[room.Code] = room
	m.playerRoom[playerID] = room.Code

	m.logger.Info("room created",
		zap.String("room_code", room.Code),
		zap.String("player_id", playerID),
	)
	m.broadcast(room)
	return room, nil
}

// Join seats a second player in a lobby.
func (m *Manager) Join(code, playerID, username string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.admitLocked(playerID); err != nil {
		return nil, err
	}
	room := m.rooms[code]
	if room == nil {
		return nil, ErrRoomNotFound
	}

	room.mu.Lock()
	switch {
	case room.status != StatusLobby:
		room.mu.Unlock()
		return nil, ErrRoomNotInLobby
	case len(room.participants) >= 2:
		room.mu.Unlock()
		return nil, ErrRoomFull
	}
	room.participants = append(room.participants, &Participant{
		PlayerID: playerID, Username: username, Online: true, LastSeen: time.Now(),
	})
	room.lastActivity = time.Now()
	room.mu.Unlock()

	m.playerRoom[playerID] = room.Code
	m.logger.Info("player joined room",
		zap.String("room_code", room.Code),
		zap.String("player_id", playerID),
	)
	m.broadcast(room)
	return room, nil
}

// Solo opens a solo room against a bot, optionally bound to a campaign
// encounter, and is ready to start immediately.
func (m *Manager) Solo(playerID, username, encounterID string) (*Room, error) {
	var encounter *pve.Encounter
	if encounterID != "" {
		encounter = m.encounters.ByID(encounterID)
		if encounter == nil {
			return nil, ErrUnknownEncounter
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.admitLocked(playerID); err != nil {
		return nil, err
	}

	room := newRoom(m.newCodeLocked(), ModeSolo)
	room.participants = append(room.participants, &Participant{
		PlayerID: playerID, Username: username, IsHost: true, Online: true, LastSeen: time.Now(),
	})

	botParticipant := &Participant{
		PlayerID: "bot-" + room.Code,
		Username: "Duel Bot",
		IsBot:    true,
		BotTier:  defaultBotTier,
		Ready:    true,
	}
	if encounter != nil {
		room.EncounterID = encounter.ID
		botParticipant.Username = encounter.Name
		botParticipant.BotTier = encounter.Tier
	}
	room.participants = append(room.participants, botParticipant)

	m.rooms[room.Code] = room
	m.playerRoom[playerID] = room.Code

	m.logger.Info("solo room created",
		zap.String("room_code", room.Code),
		zap.String("player_id", playerID),
		zap.String("encounter_id", room.EncounterID),
	)
	m.broadcast(room)
	return room, nil
}

// SetReady toggles the caller's ready flag.
func (m *Manager) SetReady(playerID string, ready bool) error {
	room, err := m.roomOf(playerID)
	if err != nil {
		return err
	}
	room.mu.Lock()
	if room.status != StatusLobby {
		room.mu.Unlock()
		return ErrRoomNotInLobby
	}
	participant := room.participantLocked(playerID)
	participant.Ready = ready
	room.lastActivity = time.Now()
	room.mu.Unlock()

	m.broadcast(room)
	return nil
}

// Start launches the duel. Host only; both seats must be ready.
func (m *Manager) Start(playerID string) error {
	room, err := m.roomOf(playerID)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if room.status != StatusLobby {
		room.mu.Unlock()
		return ErrRoomNotInLobby
	}
	host := room.participantLocked(playerID)
	if !host.IsHost {
		room.mu.Unlock()
		return ErrNotHost
	}
	if len(room.participants) != 2 {
		room.mu.Unlock()
		return ErrNotEnoughPlayers
	}
	for _, p := range room.participants {
		if !p.Ready && !p.IsHost {
			room.mu.Unlock()
			return ErrNotAllReady
		}
	}

	players := [2]game.DuelPlayer{}
	var brain *bot.Brain
	botID := ""
	for i, p := range room.participants {
		players[i] = game.DuelPlayer{ID: p.PlayerID, Username: p.Username}
		if p.IsBot {
			botID = p.PlayerID
			brain = bot.New(m.engine, p.BotTier)
			players[i].DeckTemplateIDs = m.botDeck(room.EncounterID)
		} else {
			players[i].DeckTemplateIDs = m.decks.ActiveList(p.PlayerID)
		}
	}

	state := m.engine.NewDuel(players, time.Now().UnixNano())
	room.session = newSession(room, m.engine, brain, botID, m.store, m.cfg, m.sink, m.logger, state)
	room.status = StatusRunning
	room.lastActivity = time.Now()
	room.mu.Unlock()

	m.logger.Info("duel started",
		zap.String("room_code", room.Code),
		zap.String("host_id", playerID),
	)
	m.broadcast(room)
	room.session.begin()
	return nil
}

func (m *Manager) botDeck(encounterID string) []string {
	if encounterID == "" {
		return nil
	}
	if encounter := m.encounters.ByID(encounterID); encounter != nil {
		return encounter.DeckTemplateIDs
	}
	return nil
}

// SubmitAction routes a game action into the player's room worker.
func (m *Manager) SubmitAction(playerID string, action game.Action) error {
	room, err := m.roomOf(playerID)
	if err != nil {
		return err
	}
	room.mu.Lock()
	session := room.session
	running := room.status == StatusRunning
	room.mu.Unlock()
	if !running || session == nil {
		return ErrGameNotRunning
	}
	action.PlayerID = playerID
	session.Submit(action)
	return nil
}

// Disconnect marks the player offline. The match keeps running; the cleanup
// pass reaps rooms whose humans never return.
func (m *Manager) Disconnect(playerID string) {
	room, err := m.roomOf(playerID)
	if err != nil {
		return
	}
	room.mu.Lock()
	if p := room.participantLocked(playerID); p != nil {
		p.Online = false
		p.LastSeen = time.Now()
	}
	room.mu.Unlock()
	m.broadcast(room)
}

// Rejoin re-binds a returning player to their room and replays the latest
// snapshot. No new state is created.
func (m *Manager) Rejoin(playerID string) (*Room, error) {
	room, err := m.roomOf(playerID)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	if p := room.participantLocked(playerID); p != nil {
		p.Online = true
		p.LastSeen = time.Now()
	}
	session := room.session
	room.mu.Unlock()

	m.broadcast(room)
	if session != nil {
		session.Resend(playerID)
	}
	return room, nil
}

// Leave removes the player from their room. In the lobby the seat is freed
// and the host role moves on; in a running duel leaving only goes offline.
func (m *Manager) Leave(playerID string) error {
	m.mu.Lock()
	code, ok := m.playerRoom[playerID]
	if !ok {
		m.mu.Unlock()
		return ErrNotInRoom
	}
	room := m.rooms[code]

	room.mu.Lock()
	if room.status != StatusLobby {
		if p := room.participantLocked(playerID); p != nil {
			p.Online = false
			p.LastSeen = time.Now()
		}
		room.mu.Unlock()
		m.mu.Unlock()
		m.broadcast(room)
		return nil
	}

	remaining := room.participants[:0]
	wasHost := false
	for _, p := range room.participants {
		if p.PlayerID == playerID {
			wasHost = p.IsHost
			continue
		}
		remaining = append(remaining, p)
	}
	room.participants = remaining
	delete(m.playerRoom, playerID)

	humansLeft := 0
	for _, p := range room.participants {
		if !p.IsBot {
			humansLeft++
			if wasHost {
				p.IsHost = true
				wasHost = false
			}
		}
	}
	room.lastActivity = time.Now()
	room.mu.Unlock()

	if humansLeft == 0 {
		m.removeRoomLocked(room)
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	m.logger.Info("player left room",
		zap.String("room_code", room.Code),
		zap.String("player_id", playerID),
	)
	m.broadcast(room)
	return nil
}

// RoomOf returns the room the player currently sits in.
func (m *Manager) RoomOf(playerID string) (*Room, error) {
	return m.roomOf(playerID)
}

func (m *Manager) roomOf(playerID string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	code, ok := m.playerRoom[playerID]
	if !ok {
		return nil, ErrNotInRoom
	}
	room := m.rooms[code]
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// RoomCount reports how many rooms exist, for health reporting.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Run drives the periodic cleanup until the context ends.
func (m *Manager) Run(ctx context.Context) {
	interval := m.cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(time.Now())
		}
	}
}

func (m *Manager) cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, room := range m.rooms {
		if room.expired(now, m.cfg.IdleTimeout, m.cfg.OfflineTimeout) {
			m.removeRoomLocked(room)
		}
	}
}

// removeRoomLocked tears a room down. Caller holds m.mu.
func (m *Manager) removeRoomLocked(room *Room) {
	room.mu.Lock()
	if room.session != nil {
		room.session.Close()
	}
	for _, p := range room.participants {
		delete(m.playerRoom, p.PlayerID)
	}
	room.mu.Unlock()
	delete(m.rooms, room.Code)
	m.logger.Info("room removed", zap.String("room_code", room.Code))
}

func (m *Manager) admitLocked(playerID string) error {
	if _, ok := m.playerRoom[playerID]; ok {
		return ErrAlreadyInRoom
	}
	if m.cfg.MaxRooms > 0 && len(m.rooms) >= m.cfg.MaxRooms {
		return ErrTooManyRooms
	}
	return nil
}

func (m *Manager) newCodeLocked() string {
	for {
		code := randomCode()
		if _, taken := m.rooms[code]; !taken {
			return code
		}
	}
}

func randomCode() string {
	buf := make([]byte, codeLength)
	for i := range buf {
		buf[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(buf)
}

func (m *Manager) broadcast(room *Room) {
	if m.sink == nil {
		return
	}
	m.sink.RoomState(room.humanIDs(), room.State())
}
