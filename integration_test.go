package main

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabot-server/api"
	"cabot-server/config"
	"cabot-server/matchmaking"
	"cabot-server/ws"
)

// setupTestServerWithConfig creates a test HTTP server with the given config.
func setupTestServerWithConfig(t *testing.T, cfg *config.Config) (*httptest.Server, *matchmaking.Matchmaker) {
	t.Helper()

	mm := matchmaking.NewMatchmaker(cfg, 42)
	hub := ws.NewHub(cfg, mm)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(newRouter(hub, api.NewHandler(mm)))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return server, mm
}

// setupTestServer creates a test HTTP server whose reveal windows outlast every test.
func setupTestServer(t *testing.T) (*httptest.Server, *matchmaking.Matchmaker) {
	t.Helper()
	cfg := config.Defaults()
	cfg.RevealDurationMS = 60000
	cfg.AIProfiles = []config.AIParams{{Name: "Mnemosyne"}}
	return setupTestServerWithConfig(t, cfg)
}

// connectWS creates a WebSocket connection to the test server.
func connectWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMsg reads a JSON message from the WebSocket and returns it as a map.
func readMsg(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err, "failed to read message")
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg), "data: %s", string(data))
	return msg
}

// expectType reads the next message and requires its type.
func expectType(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	msg := readMsg(t, conn)
	require.Equal(t, want, msg["type"], "message: %v", msg)
	return msg
}

// sendMsg sends a JSON message over the WebSocket.
func sendMsg(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func startMatch(t *testing.T, conn *websocket.Conn, name string) (started, state map[string]any) {
	t.Helper()
	sendMsg(t, conn, map[string]string{"type": "start", "name": name})
	started = expectType(t, conn, "match_started")
	state = expectType(t, conn, "game_state")
	return started, state
}

func board(t *testing.T, state map[string]any, side string) []any {
	t.Helper()
	pv, ok := state[side].(map[string]any)
	require.True(t, ok, "missing %s", side)
	slots, ok := pv["board"].([]any)
	require.True(t, ok, "missing %s board", side)
	return slots
}

func TestIntegration_StartMatch(t *testing.T) {
	server, mm := setupTestServer(t)
	conn := connectWS(t, server)

	started, state := startMatch(t, conn, "Alice")
	assert.Equal(t, "Mnemosyne", started["opponentName"])
	assert.Equal(t, true, started["yourTurn"])
	assert.EqualValues(t, 7, started["scoreToWin"])
	assert.EqualValues(t, 60000, started["revealDurationMs"])
	assert.Equal(t, 1, mm.Count())

	assert.Equal(t, started["matchId"], state["matchId"])
	assert.Equal(t, true, state["yourTurn"])
	assert.Equal(t, "choose_draw", state["phase"])
	assert.EqualValues(t, 46, state["deckSize"])

	// The bottom row of the human board opens face-up; the opponent board is hidden.
	you := board(t, state, "you")
	for i, s := range you {
		slot := s.(map[string]any)
		assert.Equal(t, i >= 2, slot["faceUp"], "own slot %d", i)
	}
	for i, s := range board(t, state, "opponent") {
		slot := s.(map[string]any)
		assert.Equal(t, false, slot["faceUp"], "opponent slot %d", i)
		assert.Nil(t, slot["card"], "opponent slot %d", i)
	}
	assert.Nil(t, state["opponent"].(map[string]any)["points"])
}

func TestIntegration_RevealWindowRefresh(t *testing.T) {
	cfg := config.Defaults()
	cfg.RevealDurationMS = 100
	server, _ := setupTestServerWithConfig(t, cfg)
	conn := connectWS(t, server)

	_, state := startMatch(t, conn, "Alice")
	assert.Equal(t, true, board(t, state, "you")[2].(map[string]any)["faceUp"])

	// Once the opening reveal closes the server pushes a fresh view.
	refreshed := expectType(t, conn, "game_state")
	for i, s := range board(t, refreshed, "you") {
		assert.Equal(t, false, s.(map[string]any)["faceUp"], "own slot %d", i)
	}
}

func TestIntegration_Errors(t *testing.T) {
	server, _ := setupTestServer(t)
	conn := connectWS(t, server)

	sendMsg(t, conn, map[string]string{"type": "draw_deck"})
	msg := expectType(t, conn, "error")
	assert.Contains(t, msg["message"], "not in a match")

	sendMsg(t, conn, map[string]string{"type": "start", "name": ""})
	expectType(t, conn, "error")

	sendMsg(t, conn, map[string]string{"type": "start", "name": strings.Repeat("a", 25)})
	expectType(t, conn, "error")

	sendMsg(t, conn, map[string]string{"type": "fly_away"})
	msg = expectType(t, conn, "error")
	assert.Contains(t, msg["message"], "fly_away")

	conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
	expectType(t, conn, "error")

	startMatch(t, conn, "Alice")

	sendMsg(t, conn, map[string]string{"type": "end_turn"})
	expectType(t, conn, "error")

	sendMsg(t, conn, map[string]any{"type": "replace"})
	msg = expectType(t, conn, "error")
	assert.Contains(t, msg["message"], "slot")

	sendMsg(t, conn, map[string]string{"type": "declare_cabot", "timing": "whenever"})
	expectType(t, conn, "error")

	sendMsg(t, conn, map[string]string{"type": "next_round"})
	expectType(t, conn, "error")
}

func TestIntegration_DrawAndEndTurn(t *testing.T) {
	server, _ := setupTestServer(t)
	conn := connectWS(t, server)
	startMatch(t, conn, "Alice")

	sendMsg(t, conn, map[string]string{"type": "draw_deck"})
	state := expectType(t, conn, "game_state")
	require.NotNil(t, state["held"])
	assert.Equal(t, "deck", state["heldFrom"])
	assert.EqualValues(t, 45, state["deckSize"])

	if state["phase"] == "power_decision" {
		sendMsg(t, conn, map[string]string{"type": "skip_power"})
		state = expectType(t, conn, "game_state")
	}
	assert.Equal(t, "playing", state["phase"])

	sendMsg(t, conn, map[string]string{"type": "end_turn"})
	state = expectType(t, conn, "game_state")
	// The opponent answers before the reply is sent.
	assert.Equal(t, true, state["yourTurn"])
	assert.Nil(t, state["held"])
	assert.NotEmpty(t, state["opponentLog"])
}

func TestIntegration_PlaySession(t *testing.T) {
	server, _ := setupTestServer(t)
	conn := connectWS(t, server)
	_, state := startMatch(t, conn, "Alice")

	rounds := 0
	msg := state
	for step := 0; step < 500; step++ {
		switch msg["type"] {
		case "error":
			t.Fatalf("unexpected error: %v", msg["message"])
		case "session_over":
			assert.Contains(t, []any{"human", "ai"}, msg["winner"])
			score := msg["score"].([]any)
			assert.True(t, score[0].(float64) >= 7 || score[1].(float64) >= 7, "score %v", score)
			assert.Positive(t, rounds)
			return
		case "round_over":
			rounds++
			session := msg["session"].(map[string]any)
			if session["over"] == true {
				break
			}
			sendMsg(t, conn, map[string]string{"type": "next_round"})
		case "game_state":
			if msg["roundOver"] == true {
				break
			}
			cabot := msg["cabot"].(map[string]any)
			switch {
			case msg["yourTurn"] != true:
				sendMsg(t, conn, map[string]string{"type": "run_opponent_turn"})
			case cabot["declared"] == true:
				// Answer the opponent's Cabot by drawing and passing.
				switch msg["phase"] {
				case "choose_draw":
					if msg["deckSize"].(float64) == 0 {
						sendMsg(t, conn, map[string]string{"type": "draw_discard"})
					} else {
						sendMsg(t, conn, map[string]string{"type": "draw_deck"})
					}
				case "power_decision":
					sendMsg(t, conn, map[string]string{"type": "skip_power"})
				default:
					sendMsg(t, conn, map[string]string{"type": "end_turn"})
				}
			default:
				sendMsg(t, conn, map[string]string{"type": "declare_cabot", "timing": "start_of_turn"})
			}
		}
		msg = readMsg(t, conn)
	}
	t.Fatal("session did not finish")
}

func TestIntegration_DisconnectReleasesMatch(t *testing.T) {
	server, mm := setupTestServer(t)
	conn := connectWS(t, server)
	startMatch(t, conn, "Alice")
	require.Equal(t, 1, mm.Count())

	conn.Close()
	assert.Eventually(t, func() bool { return mm.Count() == 0 }, 2*time.Second, 20*time.Millisecond)
}

func TestIntegration_RestartAbandonsPreviousMatch(t *testing.T) {
	server, mm := setupTestServer(t)
	conn := connectWS(t, server)

	first, _ := startMatch(t, conn, "Alice")
	second, _ := startMatch(t, conn, "Alice")
	assert.NotEqual(t, first["matchId"], second["matchId"])
	assert.Equal(t, 1, mm.Count())
}
