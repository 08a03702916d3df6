package room

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arcanaduel/arcana-server-go/internal/bot"
	"github.com/arcanaduel/arcana-server-go/internal/config"
	"github.com/arcanaduel/arcana-server-go/internal/game"
	"github.com/arcanaduel/arcana-server-go/internal/store"
)

// Sink receives everything a room wants to tell its clients. The transport
// layer implements it; tests substitute a recorder.
type Sink interface {
	RoomState(playerIDs []string, state State)
	GameSnapshot(playerID string, snapshot *game.Snapshot)
	GameEvents(playerID string, version int, events []game.Event)
	GamePrompt(playerID string, prompt *game.PendingPrompt)
	GameError(playerID, actionID, code, message string)
}

type message struct {
	action *game.Action
	// botMove asks the worker to compute and apply the bot's next move.
	botMove bool
	// forcePass resolves a stalled trap window, valid only for forVersion.
	forcePass  bool
	forVersion int
	// resend pushes the latest snapshot to one player (reconnection).
	resend string
}

// Session owns one duel's GameState and serializes every action into it
// through a single worker goroutine. Nothing else may touch the state.
type Session struct {
	room   *Room
	engine *game.Engine
	brain  *bot.Brain
	botID  string
	store  store.Store
	cfg    config.RoomConfig
	sink   Sink
	logger *zap.Logger

	state *game.GameState
	inbox chan message

	stop     chan struct{}
	stopOnce sync.Once
}

func newSession(room *Room, engine *game.Engine, brain *bot.Brain, botID string,
	st store.Store, cfg config.RoomConfig, sink Sink, logger *zap.Logger, state *game.GameState) *Session {
	s := &Session{
		room:   room,
		engine: engine,
		brain:  brain,
		botID:  botID,
		store:  st,
		cfg:    cfg,
		sink:   sink,
		logger: logger.With(zap.String("room_code", room.Code)),
		state:  state,
		inbox:  make(chan message, 64),
		stop:   make(chan struct{}),
	}
	go s.run()
	return s
}

// begin publishes the opening snapshots and hands the bot its first move if
// it goes first.
func (s *Session) begin() {
	s.enqueue(message{resend: ""})
}

// Submit queues a player action for the worker.
func (s *Session) Submit(action game.Action) {
	s.enqueue(message{action: &action})
}

// Resend queues a snapshot replay for a reconnecting player.
func (s *Session) Resend(playerID string) {
	s.enqueue(message{resend: playerID})
}

// Close stops the worker. Queued messages are dropped.
func (s *Session) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Session) enqueue(msg message) {
	select {
	case s.inbox <- msg:
	case <-s.stop:
	}
}

func (s *Session) run() {
	for {
		select {
		case <-s.stop:
			return
		case msg := <-s.inbox:
			switch {
			case msg.action != nil:
				s.handleAction(*msg.action)
			case msg.botMove:
				s.handleBotMove()
			case msg.forcePass:
				s.handleForcedPass(msg.forVersion)
			default:
				s.handleResend(msg.resend)
			}
		}
	}
}

func (s *Session) handleAction(action game.Action) {
	next, events, err := s.engine.Apply(s.state, action)
	if err != nil {
		var ruleErr *game.RuleError
		if errors.As(err, &ruleErr) {
			if action.PlayerID == s.botID {
				s.logger.Warn("bot action rejected",
					zap.String("action_type", string(action.Type)),
					zap.String("code", ruleErr.Code),
				)
				return
			}
			s.sink.GameError(action.PlayerID, ruleErr.ActionID, ruleErr.Code, ruleErr.Message)
			return
		}
		s.logger.Error("apply failed", zap.Error(err))
		return
	}

	s.state = next
	s.room.touch()
	s.publish(events)
	s.persist(events)
	s.afterApply()
}

// publish fans the redacted snapshot and the event list out to every human.
func (s *Session) publish(events []game.Event) {
	for _, playerID := range s.room.humanIDs() {
		snapshot := s.engine.SnapshotFor(s.state, playerID)
		if snapshot == nil {
			continue
		}
		s.sink.GameSnapshot(playerID, snapshot)
		s.sink.GameEvents(playerID, s.state.Version, events)
		if snapshot.PendingPrompt != nil {
			s.sink.GamePrompt(playerID, snapshot.PendingPrompt)
			s.armTrapTimeout()
		}
	}
}

func (s *Session) armTrapTimeout() {
	if s.cfg.TrapResponseTimeout <= 0 {
		return
	}
	version := s.state.Version
	time.AfterFunc(s.cfg.TrapResponseTimeout, func() {
		s.enqueue(message{forcePass: true, forVersion: version})
	})
}

// handleForcedPass resolves a trap window the defender never answered. The
// version guard makes a late timer a no-op.
func (s *Session) handleForcedPass(forVersion int) {
	if s.state.Version != forVersion || s.state.Status != game.StatusRunning {
		return
	}
	pending := s.state.PendingAttack
	if pending == nil || pending.Window != game.WindowTrapResponse {
		return
	}
	s.logger.Info("trap response timed out, forcing PASS",
		zap.String("player_id", pending.DefenderPlayerID),
	)
	s.handleAction(game.Action{
		ID:       uuid.NewString(),
		Type:     game.ActionTrapResponse,
		PlayerID: pending.DefenderPlayerID,
		Decision: game.DecisionPass,
	})
}

func (s *Session) handleResend(playerID string) {
	targets := s.room.humanIDs()
	if playerID != "" {
		targets = []string{playerID}
	}
	for _, id := range targets {
		if snapshot := s.engine.SnapshotFor(s.state, id); snapshot != nil {
			s.sink.GameSnapshot(id, snapshot)
			if snapshot.PendingPrompt != nil {
				s.sink.GamePrompt(id, snapshot.PendingPrompt)
			}
		}
	}
	if playerID == "" {
		s.afterApply()
	}
}

// afterApply schedules the bot whenever it could be the one to move next.
func (s *Session) afterApply() {
	if s.brain == nil || s.state.Status != game.StatusRunning {
		return
	}
	s.scheduleBot()
}

func (s *Session) scheduleBot() {
	delay := s.cfg.BotDelayMin
	if jitter := s.cfg.BotDelayMax - s.cfg.BotDelayMin; jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(jitter)))
	}
	time.AfterFunc(delay, func() {
		s.enqueue(message{botMove: true})
	})
}

func (s *Session) handleBotMove() {
	if s.brain == nil || s.state.Status != game.StatusRunning {
		return
	}
	var action *game.Action
	pending := s.state.PendingAttack
	switch {
	case pending != nil && pending.Window == game.WindowTrapResponse:
		if pending.DefenderPlayerID != s.botID {
			return
		}
		action = s.brain.ReactiveAction(s.state, s.botID)
	case s.state.Turn.PlayerID == s.botID:
		action = s.brain.NextTurnAction(s.state, s.botID)
		if action == nil {
			action = &game.Action{ID: uuid.NewString(), Type: game.ActionEndTurn, PlayerID: s.botID}
		}
	default:
		// The bot may fire a set trap during the human's turn.
		action = s.brain.ReactiveAction(s.state, s.botID)
	}
	if action == nil {
		return
	}
	s.handleAction(*action)
}

// persist forwards fusion discoveries and the match result to the store.
// Storage never blocks the room worker.
func (s *Session) persist(events []game.Event) {
	for _, event := range events {
		switch event.Type {
		case game.EventFusionResolved:
			if event.PlayerID == s.botID {
				continue
			}
			discovery := store.Discovery{
				PlayerID:     event.PlayerID,
				DiscoveredAt: time.Now(),
			}
			if key, ok := event.Payload["discoveryKey"].(string); ok {
				discovery.DiscoveryKey = key
			}
			if result, ok := event.Payload["resultTemplateId"].(string); ok {
				discovery.ResultTemplateID = result
			}
			if materials, ok := event.Payload["materialTemplateIds"].([]string); ok {
				discovery.MaterialIDs = append([]string(nil), materials...)
			}
			go s.saveDiscovery(discovery)

		case game.EventGameFinished:
			winnerID, _ := event.Payload["winnerId"].(string)
			record := store.MatchRecord{
				RoomCode:   s.room.Code,
				WinnerID:   winnerID,
				Turns:      s.state.Turn.TurnNumber,
				FinishedAt: time.Now(),
			}
			if loser := s.state.OpponentOf(winnerID); loser != nil {
				record.LoserID = loser.ID
			}
			go s.recordMatch(record)

			s.room.finish()
			s.sink.RoomState(s.room.humanIDs(), s.room.State())
		}
	}
}

func (s *Session) saveDiscovery(discovery store.Discovery) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fresh, err := s.store.SaveDiscovery(ctx, discovery)
	if err != nil {
		s.logger.Error("failed to save discovery", zap.Error(err))
		return
	}
	if fresh {
		s.logger.Info("new fusion discovered",
			zap.String("player_id", discovery.PlayerID),
			zap.String("result", discovery.ResultTemplateID),
		)
	}
}

func (s *Session) recordMatch(record store.MatchRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.RecordMatch(ctx, record); err != nil {
		s.logger.Error("failed to record match", zap.Error(err))
	}
}
