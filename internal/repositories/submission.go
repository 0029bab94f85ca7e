package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/sqlite"
)

// Submission is a graded final answer.
type Submission struct {
	ID        int64     `db:"id"`
	SessionID string    `db:"session_id"`
	CaseID    string    `db:"case_id"`
	Answer    string    `db:"answer"`
	Score     int       `db:"score"`
	Feedback  string    `db:"feedback"`
	CreatedAt time.Time `db:"-"`
}

type SubmissionRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewSubmissionRepository(db *sqlite.Database, logger *slog.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger.With(slog.String("source", "SubmissionRepository")),
	}
}

// Create stores s and returns its id.
func (r *SubmissionRepository) Create(ctx context.Context, s Submission) (int64, error) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	res, err := r.db.ReadWrite.ExecContext(ctx,
		`INSERT INTO submissions (session_id, case_id, answer, score, feedback, created) VALUES (?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.CaseID, s.Answer, s.Score, s.Feedback, s.CreatedAt.UnixMilli())
	if err != nil {
		return 0, errors.Wrap(err, "insert submission", slog.String("session_id", s.SessionID))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "read submission id")
	}
	return id, nil
}

// ListBySession returns the submissions of a session, oldest first.
func (r *SubmissionRepository) ListBySession(ctx context.Context, sessionID string) ([]Submission, error) {
	var rows []struct {
		Submission
		Created int64 `db:"created"`
	}
	if err := r.db.ReadOnly.SelectContext(ctx, &rows,
		`SELECT id, session_id, case_id, answer, score, feedback, created
FROM submissions WHERE session_id = ? ORDER BY id`, sessionID); err != nil {
		return nil, errors.Wrap(err, "select submissions", slog.String("session_id", sessionID))
	}
	submissions := make([]Submission, len(rows))
	for i, row := range rows {
		submissions[i] = row.Submission
		submissions[i].CreatedAt = time.UnixMilli(row.Created).UTC()
	}
	return submissions, nil
}
