package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/otel"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/soldieriq"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/ws"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/chat"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/port/broadcast"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/port/database"
)

// ErrEmptyMessage is returned when a submit request carries no message text.
var ErrEmptyMessage = errors.New("chat: empty message")

// ChatService drives one assistant turn per submitted user message: it opens
// the backend chat stream, folds events into the turn, and persists and
// broadcasts every state change.
type ChatService struct {
	client       *soldieriq.Client
	store        database.Store
	hub          broadcast.Broadcaster
	metrics      *otel.Metrics
	idleTimeout  time.Duration
	defaultModel string
}

// NewChatService creates a ChatService. idleTimeout bounds the gap between
// consecutive stream events; zero or negative disables the watchdog.
func NewChatService(
	client *soldieriq.Client,
	store database.Store,
	hub broadcast.Broadcaster,
	metrics *otel.Metrics,
	idleTimeout time.Duration,
	defaultModel string,
) *ChatService {
	return &ChatService{
		client:       client,
		store:        store,
		hub:          hub,
		metrics:      metrics,
		idleTimeout:  idleTimeout,
		defaultModel: defaultModel,
	}
}

// SubmitOptions carries per-request collaborators for Submit.
type SubmitOptions struct {
	// Tokens supplies the bearer token for the backend request.
	Tokens soldieriq.TokenProvider
	// TAK optionally forwards TAK server credentials with the request.
	TAK *soldieriq.TAKConfig
	// OnUpdate, when set, receives a snapshot of the assistant turn after
	// every state change, in event order.
	OnUpdate func(chat.Turn)
}

// Submit sends a user message and runs the resulting stream to completion.
// It returns the final assistant turn. Stream-level failures are folded into
// the turn (Failed=true) rather than returned; the error return covers only
// preconditions and persistence of the user turn.
func (s *ChatService) Submit(ctx context.Context, req chat.SubmitRequest, opts SubmitOptions) (*chat.Turn, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	userTurn := &chat.Turn{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		Role:      chat.RoleUser,
		Content:   message,
		CreatedAt: time.Now().UTC(),
	}
	if s.store != nil {
		if _, err := s.store.AppendTurn(ctx, userTurn); err != nil {
			return nil, fmt.Errorf("persist user turn: %w", err)
		}
	}

	turn := &chat.Turn{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		Role:      chat.RoleAssistant,
		Sources:   []chat.Citation{},
		CreatedAt: time.Now().UTC(),
		Streaming: true,
	}

	ctx, span := otel.StartChatSpan(ctx, req.SessionID, model)
	defer span.End()

	if s.metrics != nil {
		s.metrics.StreamsStarted.Add(ctx, 1)
	}

	token := ""
	if opts.Tokens != nil {
		var err error
		token, err = opts.Tokens.Token(ctx)
		if err != nil {
			s.fail(ctx, turn, err, opts)
			return turn, nil
		}
	}

	// The watchdog cancels this context to abort a stalled body read.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := s.client.OpenChatStream(ctx, token, soldieriq.ChatRequest{
		Message:        message,
		DocumentIDs:    req.Scope.DocumentIDs,
		FileNames:      req.Scope.FileNames,
		SessionID:      req.SessionID,
		Model:          model,
		TAKCredentials: opts.TAK,
	})
	if err != nil {
		s.fail(ctx, turn, err, opts)
		return turn, nil
	}

	s.run(ctx, cancel, stream, turn, opts)
	return turn, nil
}

// run consumes the stream until a terminal event, EOF, or failure. The
// watchdog cancels the stream context when no event arrives within
// idleTimeout; each event rearms it.
func (s *ChatService) run(ctx context.Context, cancel context.CancelFunc, stream *soldieriq.Stream, turn *chat.Turn, opts SubmitOptions) {
	defer func() { _ = stream.Close() }()

	var stalled atomic.Bool
	var watchdog *time.Timer
	if s.idleTimeout > 0 {
		watchdog = time.AfterFunc(s.idleTimeout, func() {
			stalled.Store(true)
			cancel()
		})
		defer watchdog.Stop()
	}

	started := time.Now()
	firstToken := true

	for {
		ev, err := stream.Next()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				// Backend closed without a terminal event; treat
				// accumulated content as the final answer.
				s.finalize(ctx, turn, false, opts)
			case stalled.Load():
				s.fail(ctx, turn, domain.ErrStreamStalled, opts)
			case ctx.Err() != nil:
				// Caller abandoned the turn; leave content as-is.
				turn.Streaming = false
				s.persist(ctx, turn)
			default:
				s.fail(ctx, turn, fmt.Errorf("%w: %v", domain.ErrStreamTransport, err), opts)
			}
			return
		}

		if watchdog != nil {
			watchdog.Reset(s.idleTimeout)
		}

		switch ev.Kind {
		case chat.EventRunStarted:
			turn.RunID = ev.RunID
			s.status(ctx, turn, string(ev.Kind), "")
		case chat.EventMessageDelta:
			if firstToken {
				firstToken = false
				if s.metrics != nil {
					s.metrics.TimeToFirstToken.Record(ctx, time.Since(started).Seconds())
				}
			}
			turn.Content += ev.Content
			s.publishDelta(ctx, turn, opts)
		case chat.EventToolStarted:
			if s.metrics != nil {
				s.metrics.ToolCalls.Add(ctx, 1)
			}
			s.status(ctx, turn, string(ev.Kind), ev.ToolName)
		case chat.EventToolCompleted:
			if ev.Sources != nil {
				turn.Sources = chat.DedupeCitations(ev.Sources)
				s.publishSources(ctx, turn, opts)
			}
		case chat.EventMessageCompleted:
			turn.Content = ev.Content
			s.publishDelta(ctx, turn, opts)
		case chat.EventRunCompleted:
			if s.metrics != nil {
				s.metrics.StreamsCompleted.Add(ctx, 1)
				s.metrics.StreamDuration.Record(ctx, time.Since(started).Seconds())
			}
			s.status(ctx, turn, string(ev.Kind), "")
			s.finalize(ctx, turn, false, opts)
			return
		case chat.EventError:
			if turn.Content != "" {
				turn.Content += "\n\n"
			}
			turn.Content += "Error: " + ev.Err
			s.finalize(ctx, turn, true, opts)
			return
		}
	}
}

// finalize marks the turn terminal, rewrites citation markers into anchor
// links when sources are present, persists, and broadcasts the final state.
func (s *ChatService) finalize(ctx context.Context, turn *chat.Turn, failed bool, opts SubmitOptions) {
	turn.Streaming = false
	turn.Failed = failed
	if failed && s.metrics != nil {
		s.metrics.StreamsFailed.Add(ctx, 1)
	}
	if len(turn.Sources) > 0 {
		turn.Content = chat.LinkCitationMarkers(turn.Content, len(turn.Sources))
	}
	s.persist(ctx, turn)
	if opts.OnUpdate != nil {
		opts.OnUpdate(*turn)
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, turn.SessionID, ws.EventTurnCompleted, ws.TurnCompletedEvent{
			SessionID: turn.SessionID,
			Turn:      *turn,
		})
	}
}

// fail replaces the turn content with the error text and finalizes as failed.
func (s *ChatService) fail(ctx context.Context, turn *chat.Turn, err error, opts SubmitOptions) {
	slog.Error("chat turn failed", "session_id", turn.SessionID, "turn_id", turn.ID, "error", err)
	turn.Content = err.Error()
	s.finalize(ctx, turn, true, opts)
}

func (s *ChatService) publishDelta(ctx context.Context, turn *chat.Turn, opts SubmitOptions) {
	if opts.OnUpdate != nil {
		opts.OnUpdate(*turn)
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, turn.SessionID, ws.EventTurnDelta, ws.TurnDeltaEvent{
			SessionID: turn.SessionID,
			TurnID:    turn.ID,
			Content:   turn.Content,
		})
	}
}

func (s *ChatService) publishSources(ctx context.Context, turn *chat.Turn, opts SubmitOptions) {
	if opts.OnUpdate != nil {
		opts.OnUpdate(*turn)
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, turn.SessionID, ws.EventTurnSources, ws.TurnSourcesEvent{
			SessionID: turn.SessionID,
			TurnID:    turn.ID,
			Sources:   turn.Sources,
		})
	}
}

func (s *ChatService) status(ctx context.Context, turn *chat.Turn, status, toolName string) {
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, turn.SessionID, ws.EventRunStatus, ws.RunStatusEvent{
			SessionID: turn.SessionID,
			TurnID:    turn.ID,
			Status:    status,
			ToolName:  toolName,
		})
	}
}

func (s *ChatService) persist(ctx context.Context, turn *chat.Turn) {
	if s.store == nil {
		return
	}
	// Persist with a fresh context so terminal state survives caller cancellation.
	pctx := context.WithoutCancel(ctx)
	if turn.IsPersisted() {
		if err := s.store.UpdateTurn(pctx, turn); err != nil {
			slog.Error("update turn", "turn_id", turn.ID, "error", err)
		}
		return
	}
	if _, err := s.store.AppendTurn(pctx, turn); err != nil {
		slog.Error("append turn", "turn_id", turn.ID, "error", err)
		return
	}
	turn.MarkPersisted()
}
