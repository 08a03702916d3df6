package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/arcanaduel/arcana-server-go/internal/auth"
	"github.com/arcanaduel/arcana-server-go/internal/config"
	"github.com/arcanaduel/arcana-server-go/internal/deck"
	"github.com/arcanaduel/arcana-server-go/internal/pve"
	"github.com/arcanaduel/arcana-server-go/internal/room"
)

// Server is the HTTP/WebSocket boundary: REST for identity and campaign
// data, one websocket per client for everything in-room.
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	registry   *auth.Registry
	tokens     *auth.TokenStore
	decks      *deck.Service
	rooms      *room.Manager
	encounters *pve.Table
	hub        *Hub

	// guests maps guest player ids to their chosen display name; registered
	// players resolve through the registry instead.
	guestMu sync.RWMutex
	guests  map[string]string

	upgrader websocket.Upgrader
}

// New wires the transport. It registers the hub as the room manager's sink.
func New(cfg *config.Config, logger *zap.Logger, registry *auth.Registry,
	tokens *auth.TokenStore, decks *deck.Service, rooms *room.Manager,
	encounters *pve.Table) *Server {
	s := &Server{
		cfg:        cfg,
		logger:     logger,
		registry:   registry,
		tokens:     tokens,
		decks:      decks,
		rooms:      rooms,
		encounters: encounters,
		hub:        newHub(logger),
		guests:     make(map[string]string),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The duel protocol is token-authenticated; cross-origin pages
			// may host the client.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	rooms.SetSink(s.hub)
	return s
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleWebsocket)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/guest", s.handleGuest)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Get("/pve/encounters", s.handleEncounters)
		r.Post("/pve/start", s.handlePveStart)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rooms":  s.rooms.RoomCount(),
	})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

func (s *Server) handleGuest(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = "Guest"
	}

	playerID := uuid.NewString()
	s.guestMu.Lock()
	s.guests[playerID] = username
	s.guestMu.Unlock()

	s.logger.Info("guest session issued",
		zap.String("player_id", playerID),
		zap.String("username", username),
	)
	writeJSON(w, http.StatusOK, sessionResponse{
		Token:    s.tokens.Issue(playerID),
		PlayerID: playerID,
		Username: username,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	user, err := s.registry.Register(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Token:    s.tokens.Issue(user.PlayerID),
		PlayerID: user.PlayerID,
		Username: user.Username,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	user, err := s.registry.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Token:    s.tokens.Issue(user.PlayerID),
		PlayerID: user.PlayerID,
		Username: user.Username,
	})
}

func (s *Server) handleEncounters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"encounters": s.encounters.List(),
	})
}

type pveStartRequest struct {
	EncounterID string `json:"encounterId"`
}

func (s *Server) handlePveStart(w http.ResponseWriter, r *http.Request) {
	playerID, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}
	var req pveStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	created, err := s.rooms.Solo(playerID, s.usernameOf(playerID), req.EncounterID)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"roomCode":    created.Code,
		"encounterId": created.EncounterID,
	})
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	playerID, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(s, conn, playerID, s.usernameOf(playerID))
	s.hub.bind(client)
	go client.writePump()
	go client.readPump()

	// A player who already sits in a room is rejoining: re-bind and replay
	// the latest snapshot.
	if _, err := s.rooms.Rejoin(playerID); err == nil {
		s.logger.Info("player rejoined", zap.String("player_id", playerID))
	}
}

// authenticate accepts the token as a Bearer header or a ?token query
// parameter (browsers cannot set headers on websocket dials).
func (s *Server) authenticate(r *http.Request) (string, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		header := r.Header.Get("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
		if token == header {
			token = ""
		}
	}
	if token == "" {
		return "", false
	}
	return s.tokens.Validate(token)
}

func (s *Server) usernameOf(playerID string) string {
	if user := s.registry.Lookup(playerID); user != nil {
		return user.Username
	}
	s.guestMu.RLock()
	defer s.guestMu.RUnlock()
	if name, ok := s.guests[playerID]; ok {
		return name
	}
	return "Guest"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
