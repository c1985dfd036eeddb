package chat

// EventKind is the type of one stream event from the backend. Events are
// transient: they are folded into a Turn and never stored.
type EventKind string

const (
	EventRunStarted       EventKind = "run.started"
	EventMessageDelta     EventKind = "message.delta"
	EventToolStarted      EventKind = "tool.started"
	EventToolCompleted    EventKind = "tool.completed"
	EventMessageCompleted EventKind = "message.completed"
	EventRunCompleted     EventKind = "run.completed"
	EventError            EventKind = "error"
)

// SearchToolName is the backend tool whose completion events carry citation
// snapshots.
const SearchToolName = "search_knowledge_base"

// Event is one decoded stream event.
type Event struct {
	Kind EventKind

	// Content is set for message.delta (a fragment to append) and
	// message.completed (the full text, replacing what was accumulated).
	Content string

	// Sources is set for tool.completed events of the knowledge-base search
	// tool: a full citation snapshot that replaces the previous one.
	Sources []Citation

	// ToolName is set for tool.started / tool.completed.
	ToolName string

	// Err is the human-readable error for error events.
	Err string

	// RunID correlates events of one backend run, when present.
	RunID string
}

// Terminal reports whether the event ends the current turn.
func (e Event) Terminal() bool {
	return e.Kind == EventRunCompleted || e.Kind == EventError
}
