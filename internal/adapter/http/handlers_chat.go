package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/soldieriq"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/chat"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/service"
)

// chatEvent is one SSE frame sent to the browser while a turn streams.
type chatEvent struct {
	Type string    `json:"type"`
	Turn chat.Turn `json:"turn"`
}

// SubmitChat accepts a user message and streams turn snapshots back as SSE
// until the assistant turn is terminal. The final frame carries the complete
// turn with resolved citation assets.
func (h *Handlers) SubmitChat(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[chat.SubmitRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.Message, "message") {
		return
	}
	if !requireField(w, req.SessionID, "session_id") {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeFrame := func(eventType string, turn chat.Turn) {
		payload, err := json.Marshal(chatEvent{Type: eventType, Turn: turn})
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
		flusher.Flush()
	}

	// Stored TAK credentials ride along when the user has them configured.
	var tak *soldieriq.TAKConfig
	if cfg, err := h.Documents.GetTAKConfig(r.Context()); err == nil {
		tak = cfg
	}

	turn, err := h.Chat.Submit(r.Context(), req, service.SubmitOptions{
		Tokens: h.Auth,
		TAK:    tak,
		OnUpdate: func(t chat.Turn) {
			if t.Streaming {
				writeFrame("turn.update", t)
			}
		},
	})
	if err != nil {
		// Submit only errors before the stream starts; the response is
		// still plain JSON at this point for the client.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Resolve citation assets before the final frame so the client can
	// render source links immediately.
	if len(turn.Sources) > 0 && h.Assets != nil {
		h.Assets.ResolveCitations(r.Context(), h.Auth, turn.Sources)
	}

	writeFrame("turn.final", *turn)
}
