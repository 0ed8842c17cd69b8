package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aptora/aptora-api/internal/dto"
	"github.com/aptora/aptora-api/internal/models"
	"github.com/aptora/aptora-api/internal/scheduler"
	appErrors "github.com/aptora/aptora-api/pkg/errors"
)

type availabilityRepository interface {
	List(ctx context.Context, userID string) ([]models.AvailabilitySlot, error)
	Create(ctx context.Context, slot *models.AvailabilitySlot) error
	Update(ctx context.Context, slot *models.AvailabilitySlot) error
	Delete(ctx context.Context, userID, id string) error
}

// AvailabilityService manages a user's weekly availability windows.
type AvailabilityService struct {
	repo      availabilityRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService constructs AvailabilityService.
func NewAvailabilityService(repo availabilityRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the user's availability ordered by weekday and start.
func (s *AvailabilityService) List(ctx context.Context, userID string) ([]models.AvailabilitySlot, error) {
	slots, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability")
	}
	return slots, nil
}

// Create validates and stores a new availability slot.
func (s *AvailabilityService) Create(ctx context.Context, userID string, req dto.AvailabilityRequest) (*models.AvailabilitySlot, error) {
	if err := s.validateRule(req); err != nil {
		return nil, err
	}
	slot := &models.AvailabilitySlot{
		UserID:    userID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability")
	}
	s.invalidateSchedules(ctx, userID)
	return slot, nil
}

// Update replaces an existing availability slot.
func (s *AvailabilityService) Update(ctx context.Context, userID, id string, req dto.AvailabilityRequest) (*models.AvailabilitySlot, error) {
	if err := s.validateRule(req); err != nil {
		return nil, err
	}
	slot := &models.AvailabilitySlot{
		ID:        id,
		UserID:    userID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := s.repo.Update(ctx, slot); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability")
	}
	s.invalidateSchedules(ctx, userID)
	return slot, nil
}

// Delete removes an availability slot.
func (s *AvailabilityService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "availability slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability")
	}
	s.invalidateSchedules(ctx, userID)
	return nil
}

func (s *AvailabilityService) validateRule(req dto.AvailabilityRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	rule := scheduler.AvailabilityRule{DayOfWeek: req.DayOfWeek, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := rule.Validate(); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return nil
}

func (s *AvailabilityService) invalidateSchedules(ctx context.Context, userID string) {
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("schedule:%s:*", userID))
}
