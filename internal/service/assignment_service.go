package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aptora/aptora-api/internal/dto"
	"github.com/aptora/aptora-api/internal/models"
	appErrors "github.com/aptora/aptora-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, userID string, includeCompleted bool, page, pageSize int) ([]models.Assignment, int, error)
	Get(ctx context.Context, userID, id string) (*models.Assignment, error)
	Create(ctx context.Context, a *models.Assignment) error
	Update(ctx context.Context, a *models.Assignment) error
	Delete(ctx context.Context, userID, id string) error
}

// AssignmentService manages a user's assignments.
type AssignmentService struct {
	repo      assignmentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs AssignmentService.
func NewAssignmentService(repo assignmentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns assignments with pagination metadata.
func (s *AssignmentService) List(ctx context.Context, userID string, query dto.AssignmentQuery) ([]models.Assignment, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, userID, query.IncludeCompleted, query.Page, query.PageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return assignments, pagination, nil
}

// Get fetches one assignment.
func (s *AssignmentService) Get(ctx context.Context, userID, id string) (*models.Assignment, error) {
	assignment, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// Create validates and stores a new assignment.
func (s *AssignmentService) Create(ctx context.Context, userID string, req dto.AssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment := &models.Assignment{
		UserID:         userID,
		Title:          req.Title,
		EstimatedHours: req.EstimatedHours,
		DueDate:        req.DueDate,
		Priority:       defaultLevel(req.Priority),
		Difficulty:     defaultLevel(req.Difficulty),
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	s.invalidateSchedules(ctx, userID)
	return assignment, nil
}

// Update modifies an existing assignment.
func (s *AssignmentService) Update(ctx context.Context, userID, id string, req dto.AssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	assignment.Title = req.Title
	assignment.EstimatedHours = req.EstimatedHours
	assignment.DueDate = req.DueDate
	assignment.Priority = defaultLevel(req.Priority)
	assignment.Difficulty = defaultLevel(req.Difficulty)
	if err := s.repo.Update(ctx, assignment); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	s.invalidateSchedules(ctx, userID)
	return assignment, nil
}

// Complete marks an assignment finished so the engine stops scheduling it.
func (s *AssignmentService) Complete(ctx context.Context, userID, id string) (*models.Assignment, error) {
	assignment, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if assignment.IsCompleted {
		return assignment, nil
	}
	assignment.IsCompleted = true
	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete assignment")
	}
	s.invalidateSchedules(ctx, userID)
	return assignment, nil
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	s.invalidateSchedules(ctx, userID)
	return nil
}

func defaultLevel(raw string) string {
	if raw == "" {
		return "medium"
	}
	return raw
}

func (s *AssignmentService) invalidateSchedules(ctx context.Context, userID string) {
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("schedule:%s:*", userID))
}
