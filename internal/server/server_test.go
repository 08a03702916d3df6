package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/arcanaduel/arcana-server-go/internal/auth"
	"github.com/arcanaduel/arcana-server-go/internal/catalog"
	"github.com/arcanaduel/arcana-server-go/internal/config"
	"github.com/arcanaduel/arcana-server-go/internal/deck"
	"github.com/arcanaduel/arcana-server-go/internal/game"
	"github.com/arcanaduel/arcana-server-go/internal/pve"
	"github.com/arcanaduel/arcana-server-go/internal/room"
	"github.com/arcanaduel/arcana-server-go/internal/store"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cfg := &config.Config{
		Server: config.ServerConfig{Address: ":0"},
		Room: config.RoomConfig{
			MaxRooms:         16,
			IdleTimeout:      time.Hour,
			OfflineTimeout:   time.Hour,
			CleanupInterval:  time.Minute,
			ActionRateLimit:  20,
			ActionRateWindow: 2 * time.Second,
			BotDelayMin:      time.Millisecond,
			BotDelayMax:      2 * time.Millisecond,
		},
		Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost, TokenTTL: time.Hour},
	}

	index := catalog.Default()
	engine := game.NewEngine(index, catalog.Recipes())
	decks := deck.NewService(index, logger)
	rooms := room.NewManager(engine, decks, store.NewMemoryStore(),
		pve.NewTable(index), cfg.Room, logger)
	srv := New(cfg, logger, auth.NewRegistry(cfg.Auth.BcryptCost, logger),
		auth.NewTokenStore(cfg.Auth.TokenTTL), decks, rooms, pve.NewTable(index))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decodeSession(t *testing.T, resp *http.Response) sessionResponse {
	t.Helper()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session sessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	return session
}

func TestGuestAndRegisteredSessions(t *testing.T) {
	_, ts := newTestServer(t)

	guest := decodeSession(t, postJSON(t, ts.URL+"/api/auth/guest", map[string]string{"username": "Wanderer"}))
	assert.NotEmpty(t, guest.Token)
	assert.Equal(t, "Wanderer", guest.Username)

	registered := decodeSession(t, postJSON(t, ts.URL+"/api/auth/register",
		map[string]string{"username": "alice", "password": "hunter22"}))
	assert.NotEmpty(t, registered.PlayerID)

	resp := postJSON(t, ts.URL+"/api/auth/register", map[string]string{"username": "alice", "password": "hunter22"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	login := decodeSession(t, postJSON(t, ts.URL+"/api/auth/login",
		map[string]string{"username": "ALICE", "password": "hunter22"}))
	assert.Equal(t, registered.PlayerID, login.PlayerID)

	resp = postJSON(t, ts.URL+"/api/auth/login", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestEncounterListingAndPveStart(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/pve/encounters")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Encounters []pve.Encounter `json:"encounters"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	assert.NotEmpty(t, listing.Encounters)

	// Starting requires a token.
	unauth := postJSON(t, ts.URL+"/api/pve/start", map[string]string{"encounterId": listing.Encounters[0].ID})
	assert.Equal(t, http.StatusUnauthorized, unauth.StatusCode)
	unauth.Body.Close()

	session := decodeSession(t, postJSON(t, ts.URL+"/api/auth/guest", map[string]string{"username": "Hero"}))
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/pve/start",
		strings.NewReader(`{"encounterId":"`+listing.Encounters[0].ID+`"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	started, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer started.Body.Close()
	require.Equal(t, http.StatusOK, started.StatusCode)
	var payload struct {
		RoomCode string `json:"roomCode"`
	}
	require.NoError(t, json.NewDecoder(started.Body).Decode(&payload))
	assert.Len(t, payload.RoomCode, 5)
}

// wsConn opens an authenticated duel connection.
func wsConn(t *testing.T, ts *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Type: msgType, Payload: raw}))
}

// expect reads frames until one of the wanted type arrives.
func expect(t *testing.T, conn *websocket.Conn, msgType string) json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var frame struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, conn.ReadJSON(&frame), "waiting for %s", msgType)
		if frame.Type == msgType {
			return frame.Payload
		}
	}
}

func TestWebsocketRejectsBadToken(t *testing.T) {
	_, ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=bogus"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestSoloDuelOverWebsocket(t *testing.T) {
	_, ts := newTestServer(t)
	session := decodeSession(t, postJSON(t, ts.URL+"/api/auth/guest", map[string]string{"username": "Hero"}))
	conn := wsConn(t, ts, session.Token)

	send(t, conn, msgRoomSolo, soloPayload{})
	var roomState room.State
	require.NoError(t, json.Unmarshal(expect(t, conn, msgRoomState), &roomState))
	assert.Equal(t, room.ModeSolo, roomState.Mode)
	require.Len(t, roomState.Participants, 2)

	send(t, conn, msgRoomStart, struct{}{})
	var snapshot game.Snapshot
	require.NoError(t, json.Unmarshal(expect(t, conn, msgGameSnapshot), &snapshot))
	assert.Equal(t, 1, snapshot.Version)
	assert.Equal(t, session.PlayerID, snapshot.You.ID)
	assert.Len(t, snapshot.You.Hand, game.InitialHandSize)

	// End the turn; the engine answers with a fresh snapshot and events.
	send(t, conn, msgGameAction, map[string]any{"actionId": "a1", "type": "END_TURN"})
	for {
		require.NoError(t, json.Unmarshal(expect(t, conn, msgGameSnapshot), &snapshot))
		if snapshot.Version >= 2 {
			break
		}
	}
	assert.NotEqual(t, session.PlayerID, snapshot.Turn.PlayerID)
}

func TestDeckMessagesOverWebsocket(t *testing.T) {
	_, ts := newTestServer(t)
	session := decodeSession(t, postJSON(t, ts.URL+"/api/auth/guest", map[string]string{"username": "Builder"}))
	conn := wsConn(t, ts, session.Token)

	send(t, conn, msgDeckSave, deckSavePayload{
		Name:        "Starter Copy",
		TemplateIDs: catalog.BaseDeckTemplateIDs,
	})
	var listing struct {
		Decks []deck.Deck `json:"decks"`
	}
	require.NoError(t, json.Unmarshal(expect(t, conn, msgDeckListResp), &listing))
	require.Len(t, listing.Decks, 1)
	assert.Equal(t, "Starter Copy", listing.Decks[0].Name)

	// An invalid deck is rejected with deck:error.
	send(t, conn, msgDeckSave, deckSavePayload{Name: "Broken", TemplateIDs: []string{"mon_ember_whelp"}})
	var deckErr errorPayload
	require.NoError(t, json.Unmarshal(expect(t, conn, msgDeckError), &deckErr))
	assert.Contains(t, deckErr.Message, "40")
}

func TestRateLimiterWindow(t *testing.T) {
	limiter := newRateLimiter(3, 100*time.Millisecond)
	now := time.Now()
	assert.True(t, limiter.allow(now))
	assert.True(t, limiter.allow(now))
	assert.True(t, limiter.allow(now))
	assert.False(t, limiter.allow(now), "the fourth action in the window is rejected")
	assert.True(t, limiter.allow(now.Add(150*time.Millisecond)), "the window slides")
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
