package service

import (
	"context"
	"fmt"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/chat"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/port/database"
)

// HistoryService manages chat sessions and their stored turns.
type HistoryService struct {
	store database.Store
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(store database.Store) *HistoryService {
	return &HistoryService{store: store}
}

// CreateSession starts a new conversation. An empty title is allowed; the
// frontend typically fills it with the first user message.
func (s *HistoryService) CreateSession(ctx context.Context, title, model string) (*chat.Session, error) {
	sess, err := s.store.CreateSession(ctx, &chat.Session{Title: title, Model: model})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// ListSessions returns all sessions, most recently active first.
func (s *HistoryService) ListSessions(ctx context.Context) ([]chat.Session, error) {
	return s.store.ListSessions(ctx)
}

// GetSession returns one session with its full turn history in append order.
func (s *HistoryService) GetSession(ctx context.Context, id string) (*chat.Session, []chat.Turn, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	turns, err := s.store.ListTurns(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list turns for session %s: %w", id, err)
	}
	return sess, turns, nil
}

// DeleteSession removes a session and all its turns.
func (s *HistoryService) DeleteSession(ctx context.Context, id string) error {
	return s.store.DeleteSession(ctx, id)
}
