package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/chat"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --- Sessions ---

func (s *Store) CreateSession(ctx context.Context, sess *chat.Session) (*chat.Session, error) {
	var created chat.Session
	err := s.pool.QueryRow(ctx,
		`INSERT INTO chat_sessions (title, model)
		 VALUES ($1, $2)
		 RETURNING id, title, model, created_at, updated_at`,
		sess.Title, sess.Model,
	).Scan(&created.ID, &created.Title, &created.Model, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &created, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*chat.Session, error) {
	var sess chat.Session
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, model, created_at, updated_at
		 FROM chat_sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.Title, &sess.Model, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get session %s", id)
	}
	return &sess, nil
}

func (s *Store) ListSessions(ctx context.Context) ([]chat.Session, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, model, created_at, updated_at
		 FROM chat_sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []chat.Session
	for rows.Next() {
		var sess chat.Session
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.Model, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete session %s", id)
}

// --- Turns ---

func (s *Store) AppendTurn(ctx context.Context, t *chat.Turn) (*chat.Turn, error) {
	sources, err := json.Marshal(orEmpty(t.Sources))
	if err != nil {
		return nil, fmt.Errorf("marshal sources: %w", err)
	}

	created := *t
	err = s.pool.QueryRow(ctx,
		`INSERT INTO chat_turns (id, session_id, role, content, sources, run_id, streaming, failed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		 RETURNING created_at`,
		t.ID, t.SessionID, t.Role, t.Content, sources, t.RunID, t.Streaming, t.Failed,
	).Scan(&created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append turn: %w", err)
	}

	_, _ = s.pool.Exec(ctx, `UPDATE chat_sessions SET updated_at = NOW() WHERE id = $1`, t.SessionID)
	return &created, nil
}

func (s *Store) UpdateTurn(ctx context.Context, t *chat.Turn) error {
	sources, err := json.Marshal(orEmpty(t.Sources))
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE chat_turns
		 SET content = $2, sources = $3, run_id = $4, streaming = $5, failed = $6
		 WHERE id = $1`,
		t.ID, t.Content, sources, t.RunID, t.Streaming, t.Failed)
	return execExpectOne(tag, err, "update turn %s", t.ID)
}

func (s *Store) ListTurns(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, role, content, sources, run_id, streaming, failed, created_at
		 FROM chat_turns WHERE session_id = $1 ORDER BY seq ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var turns []chat.Turn
	for rows.Next() {
		var t chat.Turn
		var sources []byte
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &sources,
			&t.RunID, &t.Streaming, &t.Failed, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if err := json.Unmarshal(sources, &t.Sources); err != nil {
			return nil, fmt.Errorf("decode turn sources: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
