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

// AssignmentRepository manages persistence for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs a new repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns assignments for a user, newest due date last. Completed rows
// are skipped unless includeCompleted is set.
func (r *AssignmentRepository) List(ctx context.Context, userID string, includeCompleted bool, page, pageSize int) ([]models.Assignment, int, error) {
	where := "WHERE user_id = $1"
	if !includeCompleted {
		where += " AND is_completed = false"
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT id, user_id, course_id, title, description, due_date, estimated_hours, priority, difficulty, is_completed, created_at, updated_at
FROM assignments %s ORDER BY due_date ASC, created_at ASC LIMIT %d OFFSET %d`, where, pageSize, offset)
	var rows []models.Assignment
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM assignments %s", where), userID); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return rows, total, nil
}

// ListPending returns the user's incomplete assignments ordered by due date.
func (r *AssignmentRepository) ListPending(ctx context.Context, userID string) ([]models.Assignment, error) {
	query := `SELECT id, user_id, course_id, title, description, due_date, estimated_hours, priority, difficulty, is_completed, created_at, updated_at
FROM assignments WHERE user_id = $1 AND is_completed = false ORDER BY due_date ASC, created_at ASC`
	var rows []models.Assignment
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list pending assignments: %w", err)
	}
	return rows, nil
}

// Get fetches a single assignment scoped to the user.
func (r *AssignmentRepository) Get(ctx context.Context, userID, id string) (*models.Assignment, error) {
	query := `SELECT id, user_id, course_id, title, description, due_date, estimated_hours, priority, difficulty, is_completed, created_at, updated_at
FROM assignments WHERE id = $1 AND user_id = $2`
	var row models.Assignment
	if err := r.db.GetContext(ctx, &row, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &row, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO assignments (id, user_id, course_id, title, description, due_date, estimated_hours, priority, difficulty, is_completed, created_at)
VALUES (:id, :user_id, :course_id, :title, :description, :due_date, :estimated_hours, :priority, :difficulty, :is_completed, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update modifies an existing assignment.
func (r *AssignmentRepository) Update(ctx context.Context, a *models.Assignment) error {
	now := time.Now().UTC()
	a.UpdatedAt = &now
	query := `UPDATE assignments SET title = :title, description = :description, due_date = :due_date, estimated_hours = :estimated_hours,
priority = :priority, difficulty = :difficulty, is_completed = :is_completed, updated_at = :updated_at
WHERE id = :id AND user_id = :user_id`
	res, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
