package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aptora/aptora-api/internal/models"
)

// StudySessionRepository manages persistence for study sessions.
type StudySessionRepository struct {
	db *sqlx.DB
}

// NewStudySessionRepository constructs a new repository.
func NewStudySessionRepository(db *sqlx.DB) *StudySessionRepository {
	return &StudySessionRepository{db: db}
}

// List returns a user's sessions inside the optional window, ordered by start.
func (r *StudySessionRepository) List(ctx context.Context, userID string, from, to *time.Time) ([]models.StudySession, error) {
	query := `SELECT id, user_id, assignment_id, start_time, end_time, is_completed, notes, created_at, updated_at
FROM study_sessions WHERE user_id = $1`
	args := []interface{}{userID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND start_time < $%d", len(args))
	}
	query += " ORDER BY start_time ASC"
	var rows []models.StudySession
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list study sessions: %w", err)
	}
	return rows, nil
}

// Get fetches a single session scoped to the user.
func (r *StudySessionRepository) Get(ctx context.Context, userID, id string) (*models.StudySession, error) {
	query := `SELECT id, user_id, assignment_id, start_time, end_time, is_completed, notes, created_at, updated_at
FROM study_sessions WHERE id = $1 AND user_id = $2`
	var row models.StudySession
	if err := r.db.GetContext(ctx, &row, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get study session: %w", err)
	}
	return &row, nil
}

// ReplaceWindow deletes future generated sessions in the window and inserts
// the new batch in a single transaction.
func (r *StudySessionRepository) ReplaceWindow(ctx context.Context, userID string, from, to time.Time, sessions []models.StudySession) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace window: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM study_sessions WHERE user_id = $1 AND is_completed = false AND start_time >= $2 AND start_time < $3`,
		userID, from, to)
	if err != nil {
		return fmt.Errorf("clear window: %w", err)
	}
	now := time.Now().UTC()
	for i := range sessions {
		s := &sessions[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		s.UserID = userID
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		_, err = tx.NamedExecContext(ctx,
			`INSERT INTO study_sessions (id, user_id, assignment_id, start_time, end_time, is_completed, notes, created_at)
VALUES (:id, :user_id, :assignment_id, :start_time, :end_time, :is_completed, :notes, :created_at)`, s)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace window: %w", err)
	}
	return nil
}

// Update modifies an existing session.
func (r *StudySessionRepository) Update(ctx context.Context, s *models.StudySession) error {
	now := time.Now().UTC()
	s.UpdatedAt = &now
	query := `UPDATE study_sessions SET start_time = :start_time, end_time = :end_time, is_completed = :is_completed, notes = :notes, updated_at = :updated_at
WHERE id = :id AND user_id = :user_id`
	res, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return fmt.Errorf("update study session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a session.
func (r *StudySessionRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM study_sessions WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete study session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
