// Package chat holds the conversation domain: turns, citations, and the
// stream events that fold into them.
package chat

import "time"

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a chat session. An assistant turn is created empty
// with Streaming=true and mutated in place as stream events arrive; once a
// terminal event (run.completed, unrecoverable error, or end of stream) is
// observed it never changes again.
type Turn struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Sources   []Citation `json:"sources,omitempty"`
	RunID     string     `json:"run_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Streaming bool       `json:"streaming"`
	Failed    bool       `json:"failed,omitempty"`

	// persisted is set once the turn has a stored row, so later state
	// changes update rather than insert. Not part of the wire shape.
	persisted bool
}

// MarkPersisted records that the turn has a stored row.
func (t *Turn) MarkPersisted() { t.persisted = true }

// IsPersisted reports whether the turn has a stored row.
func (t *Turn) IsPersisted() bool { return t.persisted }

// Session is one conversation: a correlation ID plus its ordered turns.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Scope limits a query to a subset of the knowledge base.
type Scope struct {
	DocumentIDs []string `json:"document_ids,omitempty"`
	FileNames   []string `json:"file_names,omitempty"`
}

// SubmitRequest is the input for one chat exchange.
type SubmitRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Model     string `json:"model,omitempty"`
	Scope     Scope  `json:"scope"`
}
