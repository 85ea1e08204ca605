package ws

import (
	"encoding/json"
	"log/slog"
)

// safeSend sends data to a channel without panicking if the channel is closed.
// If the channel is full or closed, the send is skipped.
func safeSend(ch chan []byte, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("send on closed channel", "tag", "ws", "panic", r)
		}
	}()
	select {
	case ch <- data:
	default:
		slog.Warn("send buffer full, dropping message", "tag", "ws", "bytes", len(data))
	}
}

// sendJSON marshals v and hands it to safeSend.
func sendJSON(ch chan []byte, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshal outbound message", "tag", "ws", "error", err)
		return
	}
	safeSend(ch, data)
}
