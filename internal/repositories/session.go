package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/myrjola/sherlockchat/internal/sqlite"
)

// ErrSessionNotFound is returned when no game session exists for the id.
var ErrSessionNotFound = errors.NewSentinel("session not found")

type SessionRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewSessionRepository(db *sqlite.Database, logger *slog.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger.With(slog.String("source", "SessionRepository")),
	}
}

type sessionRow struct {
	ID       string `db:"id"`
	CaseID   string `db:"case_id"`
	Terminal bool   `db:"terminal"`
	Created  int64  `db:"created"`
	Updated  int64  `db:"updated"`
}

type turnRow struct {
	Role string `db:"role"`
	Text string `db:"text"`
}

func (r *SessionRepository) Load(ctx context.Context, id string) (*models.Session, error) {
	var row sessionRow
	err := r.db.ReadOnly.GetContext(ctx, &row,
		`SELECT id, case_id, terminal, created, updated FROM game_sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(ErrSessionNotFound, "get session", slog.String("session_id", id))
	}
	if err != nil {
		return nil, errors.Wrap(err, "get session", slog.String("session_id", id))
	}

	var turns []turnRow
	if err = r.db.ReadOnly.SelectContext(ctx, &turns,
		`SELECT role, text FROM turns WHERE session_id = ? ORDER BY position`, id); err != nil {
		return nil, errors.Wrap(err, "select turns", slog.String("session_id", id))
	}
	var clueIDs []string
	if err = r.db.ReadOnly.SelectContext(ctx, &clueIDs,
		`SELECT clue_id FROM discovered_clues WHERE session_id = ? ORDER BY position`, id); err != nil {
		return nil, errors.Wrap(err, "select discovered clues", slog.String("session_id", id))
	}

	session := &models.Session{
		ID:                row.ID,
		CaseID:            row.CaseID,
		DiscoveredClueIDs: make([]string, 0, len(clueIDs)),
		History:           make([]models.Turn, 0, len(turns)),
		Terminal:          row.Terminal,
		CreatedAt:         time.UnixMilli(row.Created).UTC(),
		UpdatedAt:         time.UnixMilli(row.Updated).UTC(),
	}
	session.DiscoveredClueIDs = append(session.DiscoveredClueIDs, clueIDs...)
	for _, t := range turns {
		session.History = append(session.History, models.Turn{Role: models.Role(t.Role), Text: t.Text})
	}
	return session, nil
}

// Save stores session so that a later Load returns exactly its history and discovered clues.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) (err error) {
	var tx *sqlx.Tx
	if tx, err = r.db.ReadWrite.BeginTxx(ctx, nil); err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", errors.SlogError(rollbackErr))
		}
	}()

	row := sessionRow{
		ID:       session.ID,
		CaseID:   session.CaseID,
		Terminal: session.Terminal,
		Created:  session.CreatedAt.UnixMilli(),
		Updated:  session.UpdatedAt.UnixMilli(),
	}
	if _, err = tx.NamedExecContext(ctx, `INSERT INTO game_sessions (id, case_id, terminal, created, updated)
VALUES (:id, :case_id, :terminal, :created, :updated)
ON CONFLICT (id) DO UPDATE SET case_id = excluded.case_id, terminal = excluded.terminal, updated = excluded.updated`,
		row); err != nil {
		return errors.Wrap(err, "upsert session", slog.String("session_id", session.ID))
	}

	// A session restarted under the same id is shorter than what is stored, so stale rows are removed.
	if _, err = tx.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ? AND position >= ?`,
		session.ID, len(session.History)); err != nil {
		return errors.Wrap(err, "trim turns", slog.String("session_id", session.ID))
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM discovered_clues WHERE session_id = ?`, session.ID); err != nil {
		return errors.Wrap(err, "clear discovered clues", slog.String("session_id", session.ID))
	}
	for i, turn := range session.History {
		if _, err = tx.ExecContext(ctx, `INSERT INTO turns (session_id, position, role, text) VALUES (?, ?, ?, ?)
ON CONFLICT (session_id, position) DO UPDATE SET role = excluded.role, text = excluded.text
WHERE role != excluded.role OR text != excluded.text`,
			session.ID, i, string(turn.Role), turn.Text); err != nil {
			return errors.Wrap(err, "upsert turn", slog.String("session_id", session.ID), slog.Int("position", i))
		}
	}
	for i, clueID := range session.DiscoveredClueIDs {
		if _, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO discovered_clues (session_id, clue_id, position) VALUES (?, ?, ?)`,
			session.ID, clueID, i); err != nil {
			return errors.Wrap(err, "insert discovered clue", slog.String("session_id", session.ID))
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// Delete removes the session with its history. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM game_sessions WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, "delete session", slog.String("session_id", id))
	}
	return nil
}
