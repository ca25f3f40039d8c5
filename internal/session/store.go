// Package session persists per-conversation state between routed messages.
// The routing engine itself is stateless; this store is the caller-side
// owner of ConversationState. Single-writer discipline applies per session:
// callers must not route two messages for the same session concurrently.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"voucherbot/internal/logging"
	"voucherbot/internal/types"
)

// Store persists ConversationState keyed by session ID.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) the session database at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			state      TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create starts a fresh session and returns its initial state.
func (s *Store) Create(ctx context.Context, language string) (types.ConversationState, error) {
	if language == "" {
		language = "en"
	}
	state := types.ConversationState{
		SessionID: uuid.New().String(),
		Language:  language,
	}
	if err := s.save(ctx, state, true); err != nil {
		return types.ConversationState{}, err
	}
	logging.Session("created session %s language=%s", state.SessionID, language)
	return state, nil
}

// Get loads a session's state. ok is false when the session is unknown.
func (s *Store) Get(ctx context.Context, sessionID string) (types.ConversationState, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM sessions WHERE id = ?`, sessionID).Scan(&raw)
	if err == sql.ErrNoRows {
		return types.ConversationState{}, false, nil
	}
	if err != nil {
		return types.ConversationState{}, false, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var state types.ConversationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return types.ConversationState{}, false, fmt.Errorf("corrupt state for session %s: %w", sessionID, err)
	}
	return state, true, nil
}

// GetOrCreate loads a session or starts a new one under the given ID.
func (s *Store) GetOrCreate(ctx context.Context, sessionID, language string) (types.ConversationState, error) {
	if sessionID == "" {
		return s.Create(ctx, language)
	}
	state, ok, err := s.Get(ctx, sessionID)
	if err != nil {
		return types.ConversationState{}, err
	}
	if ok {
		return state, nil
	}

	if language == "" {
		language = "en"
	}
	state = types.ConversationState{SessionID: sessionID, Language: language}
	if err := s.save(ctx, state, true); err != nil {
		return types.ConversationState{}, err
	}
	return state, nil
}

// Apply stores a proposed state update as the session's new canonical
// state. This is the single write path that commits a routing result.
func (s *Store) Apply(ctx context.Context, state types.ConversationState) error {
	if state.SessionID == "" {
		return fmt.Errorf("cannot persist state without a session ID")
	}
	return s.save(ctx, state, false)
}

// Delete removes a session entirely.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, state types.ConversationState, create bool) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	now := time.Now().Unix()

	if create {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO sessions (id, state, created_at, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
			state.SessionID, string(raw), now, now)
	} else {
		var res sql.Result
		res, err = s.db.ExecContext(ctx,
			`UPDATE sessions SET state = ?, updated_at = ? WHERE id = ?`,
			string(raw), now, state.SessionID)
		if err == nil {
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("session %s not found", state.SessionID)
			}
		}
	}
	if err != nil {
		return fmt.Errorf("failed to persist session %s: %w", state.SessionID, err)
	}
	return nil
}
