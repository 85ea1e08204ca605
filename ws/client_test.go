package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabot-server/game"
)

func TestSafeSend(t *testing.T) {
	ch := make(chan []byte, 1)
	safeSend(ch, []byte("a"))
	// Full buffer drops instead of blocking.
	safeSend(ch, []byte("b"))
	assert.Equal(t, []byte("a"), <-ch)

	close(ch)
	assert.NotPanics(t, func() { safeSend(ch, []byte("c")) })
}

func TestSendJSON(t *testing.T) {
	ch := make(chan []byte, 1)
	sendJSON(ch, ErrorMsg{Type: "error", Message: "nope"})

	var msg map[string]string
	require.NoError(t, json.Unmarshal(<-ch, &msg))
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "nope", msg["message"])
}

func TestWithSlot(t *testing.T) {
	var got []int
	cmd := withSlot(func(_ *game.Match, slot int) error {
		got = append(got, slot)
		return nil
	})

	require.NoError(t, cmd(nil, json.RawMessage(`{"type":"replace","slot":0}`)))
	require.NoError(t, cmd(nil, json.RawMessage(`{"type":"replace","slot":3}`)))
	assert.Equal(t, []int{0, 3}, got)

	assert.Error(t, cmd(nil, json.RawMessage(`{"type":"replace"}`)))
	assert.Error(t, cmd(nil, json.RawMessage(`{"type":"replace","slot":"x"}`)))
}

func TestInboundEnvelopeKeepsRaw(t *testing.T) {
	data := []byte(`{"type":"declare_cabot","timing":"end_of_turn"}`)
	var env InboundEnvelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "declare_cabot", env.Type)

	var msg DeclareCabotMsg
	require.NoError(t, json.Unmarshal(env.Raw, &msg))
	assert.Equal(t, "end_of_turn", msg.Timing)
}

func TestCommandTableCoversProtocol(t *testing.T) {
	for _, name := range []string{
		"draw_deck", "draw_discard", "use_power", "skip_power", "select_own", "select_opponent",
		"replace", "toggle_multi", "toggle_slot", "confirm_multi", "request_penalty", "declare_cabot",
		"end_turn", "run_opponent_turn", "next_round", "new_session",
	} {
		assert.Contains(t, commands, name)
	}
}
