package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/chat"
)

// Event type constants for WebSocket messages.
const (
	EventTurnDelta     = "turn.delta"
	EventTurnSources   = "turn.sources"
	EventTurnCompleted = "turn.completed"
	EventRunStatus     = "run.status"
)

// TurnDeltaEvent is broadcast when an assistant turn accumulates content.
type TurnDeltaEvent struct {
	SessionID string `json:"session_id"`
	TurnID    string `json:"turn_id"`
	Content   string `json:"content"`
}

// TurnSourcesEvent is broadcast when a turn's citation snapshot is replaced.
type TurnSourcesEvent struct {
	SessionID string          `json:"session_id"`
	TurnID    string          `json:"turn_id"`
	Sources   []chat.Citation `json:"sources"`
}

// TurnCompletedEvent is broadcast when a turn reaches a terminal state.
type TurnCompletedEvent struct {
	SessionID string    `json:"session_id"`
	Turn      chat.Turn `json:"turn"`
}

// RunStatusEvent is broadcast for informational stream events
// (run.started, tool.started, run.completed).
type RunStatusEvent struct {
	SessionID string `json:"session_id"`
	TurnID    string `json:"turn_id"`
	Status    string `json:"status"`
	ToolName  string `json:"tool_name,omitempty"`
}

// BroadcastEvent marshals a typed event and delivers it to clients subscribed
// to sessionID. An empty sessionID reaches every client.
func (h *Hub) BroadcastEvent(ctx context.Context, sessionID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.BroadcastToSession(ctx, sessionID, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
