package http

import (
	"net/http"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/chat"
)

type createSessionRequest struct {
	Title string `json:"title"`
	Model string `json:"model"`
}

type sessionDetail struct {
	Session chat.Session `json:"session"`
	Turns   []chat.Turn  `json:"turns"`
}

// CreateSession starts a new conversation.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[createSessionRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}

	sess, err := h.History.CreateSession(r.Context(), req.Title, req.Model)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// ListSessions returns all conversations, most recently active first.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.History.ListSessions(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if sessions == nil {
		sessions = []chat.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// GetSession returns one conversation with its full turn history.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	sess, turns, err := h.History.GetSession(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "session not found")
		return
	}
	if turns == nil {
		turns = []chat.Turn{}
	}
	writeJSON(w, http.StatusOK, sessionDetail{Session: *sess, Turns: turns})
}

// DeleteSession removes a conversation and its turns.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if err := h.History.DeleteSession(r.Context(), id); err != nil {
		writeDomainError(w, err, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
