// Package database defines the conversation store port (interface).
package database

import (
	"context"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/chat"
)

// Store is the port interface for conversation persistence. Turn order
// within a session is append order.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, s *chat.Session) (*chat.Session, error)
	GetSession(ctx context.Context, id string) (*chat.Session, error)
	ListSessions(ctx context.Context) ([]chat.Session, error)
	DeleteSession(ctx context.Context, id string) error

	// Turns
	AppendTurn(ctx context.Context, t *chat.Turn) (*chat.Turn, error)
	UpdateTurn(ctx context.Context, t *chat.Turn) error
	ListTurns(ctx context.Context, sessionID string) ([]chat.Turn, error)
}
