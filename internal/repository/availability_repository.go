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

// AvailabilityRepository manages persistence for weekly availability slots.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs a new repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// List returns all availability slots for a user ordered by weekday and start.
func (r *AvailabilityRepository) List(ctx context.Context, userID string) ([]models.AvailabilitySlot, error) {
	query := `SELECT id, user_id, day_of_week, start_time, end_time, created_at, updated_at
FROM availability_slots WHERE user_id = $1 ORDER BY day_of_week ASC, start_time ASC`
	var rows []models.AvailabilitySlot
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return rows, nil
}

// Create inserts a new availability slot.
func (r *AvailabilityRepository) Create(ctx context.Context, slot *models.AvailabilitySlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO availability_slots (id, user_id, day_of_week, start_time, end_time, created_at)
VALUES (:id, :user_id, :day_of_week, :start_time, :end_time, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

// Update modifies an existing availability slot.
func (r *AvailabilityRepository) Update(ctx context.Context, slot *models.AvailabilitySlot) error {
	now := time.Now().UTC()
	slot.UpdatedAt = &now
	query := `UPDATE availability_slots SET day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, updated_at = :updated_at
WHERE id = :id AND user_id = :user_id`
	res, err := r.db.NamedExecContext(ctx, query, slot)
	if err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an availability slot.
func (r *AvailabilityRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM availability_slots WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
