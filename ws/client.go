package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cabot-server/game"
	"cabot-server/matchmaking"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var errNoMatch = errors.New("you are not in a match")

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub   *Hub
	Conn  *websocket.Conn
	Send  chan []byte
	Name  string
	Table *matchmaking.Table

	mu      sync.Mutex
	refresh *time.Timer
}

// ReadPump pumps messages from the websocket connection to the hub.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("read error", "tag", "ws", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// command applies one client action to the match.
type command func(m *game.Match, raw json.RawMessage) error

var commands = map[string]command{
	"draw_deck": func(m *game.Match, _ json.RawMessage) error {
		_, ok, err := m.DrawFromDeck()
		if err == nil && !ok {
			return errors.New("the deck is empty")
		}
		return err
	},
	"draw_discard": func(m *game.Match, _ json.RawMessage) error {
		_, ok, err := m.DrawFromDiscard()
		if err == nil && !ok {
			return errors.New("the discard pile is empty")
		}
		return err
	},
	"use_power": func(m *game.Match, _ json.RawMessage) error {
		_, err := m.UsePower()
		return err
	},
	"skip_power": func(m *game.Match, _ json.RawMessage) error {
		return m.SkipPower()
	},
	"select_own":      withSlot((*game.Match).SelectOwnSlot),
	"select_opponent": withSlot((*game.Match).SelectOpponentSlot),
	"replace":         withSlot((*game.Match).Replace),
	"toggle_slot":     withSlot((*game.Match).ToggleMultiSlot),
	"toggle_multi": func(m *game.Match, _ json.RawMessage) error {
		_, err := m.ToggleMultiMode()
		return err
	},
	"confirm_multi": func(m *game.Match, _ json.RawMessage) error {
		_, err := m.ConfirmMultiDiscard()
		return err
	},
	"request_penalty": func(m *game.Match, _ json.RawMessage) error {
		_, err := m.RequestPenalty()
		return err
	},
	"declare_cabot": func(m *game.Match, raw json.RawMessage) error {
		var msg DeclareCabotMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			return errors.New("invalid declare_cabot message")
		}
		timing, ok := game.ParseCabotTiming(msg.Timing)
		if !ok {
			return game.ErrCabotTiming
		}
		_, err := m.DeclareCabot(timing)
		return err
	},
	"end_turn": func(m *game.Match, _ json.RawMessage) error {
		return m.EndTurn()
	},
	"run_opponent_turn": func(m *game.Match, _ json.RawMessage) error {
		return m.RunOpponentTurn()
	},
	"next_round": func(m *game.Match, _ json.RawMessage) error {
		return m.NextRound()
	},
	"new_session": func(m *game.Match, _ json.RawMessage) error {
		m.NewSession()
		return nil
	},
}

func withSlot(fn func(m *game.Match, slot int) error) command {
	return func(m *game.Match, raw json.RawMessage) error {
		var msg SlotMsg
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Slot == nil {
			return errors.New("missing slot")
		}
		return fn(m, *msg.Slot)
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	if envelope.Type == "start" {
		c.handleStart(envelope.Raw)
		return
	}
	cmd, ok := commands[envelope.Type]
	if !ok {
		c.sendError("Unknown message type: " + envelope.Type)
		return
	}
	if err := c.apply(envelope.Type, cmd, envelope.Raw); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) handleStart(raw json.RawMessage) {
	var msg StartMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid start message.")
		return
	}

	t, err := c.Hub.Matchmaker.Start(msg.Name)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	// A client plays one match at a time; starting again abandons the previous one.
	c.leave()
	c.Name = msg.Name
	c.Table = t

	var started MatchStartedMsg
	t.Do(func(m *game.Match) {
		started = MatchStartedMsg{
			Type:             "match_started",
			MatchID:          t.ID,
			OpponentName:     t.AIName,
			YourTurn:         m.Round().Current() == game.Human,
			ScoreToWin:       game.ScoreToWin,
			RevealDurationMS: c.Hub.Config.RevealDurationMS,
		}
	})
	sendJSON(c.Send, started)
	c.sendState()
}

// apply runs cmd against the client's match, then pushes the new view plus any round or session
// transition the command caused.
func (c *Client) apply(name string, cmd command, raw json.RawMessage) error {
	if c.Table == nil {
		return errNoMatch
	}

	var (
		err         error
		view        game.GameStateMsg
		roundOver   *RoundOverMsg
		sessionOver *SessionOverMsg
	)
	c.Table.Do(func(m *game.Match) {
		wasOver := m.Round().Over()
		if err = cmd(m, raw); err != nil {
			return
		}
		view = m.ViewForHuman(c.Hub.Now())
		if wasOver || !m.Round().Over() || m.LastResult() == nil {
			return
		}
		s := m.Session()
		roundOver = &RoundOverMsg{Type: "round_over", Session: view.Session, Score: s.Score}
		roundOver.Result = *view.LastResult
		if s.Over {
			sessionOver = &SessionOverMsg{Type: "session_over", Winner: s.Winner.String(), Score: s.Score}
		}
	})
	if err != nil {
		slog.Debug("command rejected", "tag", "ws", "match", c.Table.ID, "command", name, "error", err)
		return err
	}

	sendJSON(c.Send, view)
	if roundOver != nil {
		sendJSON(c.Send, roundOver)
	}
	if sessionOver != nil {
		sendJSON(c.Send, sessionOver)
	}
	c.scheduleRefresh(view)
	return nil
}

// sendState pushes the current view of the client's match.
func (c *Client) sendState() {
	t := c.Table
	if t == nil {
		return
	}
	var view game.GameStateMsg
	t.Do(func(m *game.Match) {
		view = m.ViewForHuman(c.Hub.Now())
	})
	sendJSON(c.Send, view)
	c.scheduleRefresh(view)
}

// scheduleRefresh arranges a fresh view once the earliest open reveal window in view has closed.
func (c *Client) scheduleRefresh(view game.GameStateMsg) {
	var earliest int64
	for _, pv := range []game.PlayerView{view.You, view.Opponent} {
		for _, s := range pv.Board {
			if s.RevealEndsAtUnixMs > 0 && (earliest == 0 || s.RevealEndsAtUnixMs < earliest) {
				earliest = s.RevealEndsAtUnixMs
			}
		}
	}
	if earliest == 0 {
		return
	}
	wait := time.Until(time.UnixMilli(earliest)) + 50*time.Millisecond
	if wait < 0 {
		wait = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refresh != nil {
		c.refresh.Stop()
	}
	t := c.Table
	c.refresh = time.AfterFunc(wait, func() {
		var next game.GameStateMsg
		t.Do(func(m *game.Match) {
			next = m.ViewForHuman(c.Hub.Now())
		})
		sendJSON(c.Send, next)
	})
}

// leave releases the client's current match, if any.
func (c *Client) leave() {
	c.mu.Lock()
	if c.refresh != nil {
		c.refresh.Stop()
		c.refresh = nil
	}
	c.mu.Unlock()

	if c.Table == nil {
		return
	}
	c.Hub.Matchmaker.Release(c.Table.ID)
	c.Table = nil
}

func (c *Client) sendError(message string) {
	sendJSON(c.Send, ErrorMsg{Type: "error", Message: message})
}
