package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aptora/aptora-api/internal/dto"
	"github.com/aptora/aptora-api/internal/models"
	"github.com/aptora/aptora-api/internal/scheduler"
	appErrors "github.com/aptora/aptora-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type assignmentReader interface {
	ListPending(ctx context.Context, userID string) ([]models.Assignment, error)
}

type availabilityReader interface {
	List(ctx context.Context, userID string) ([]models.AvailabilitySlot, error)
}

type sessionStore interface {
	List(ctx context.Context, userID string, from, to *time.Time) ([]models.StudySession, error)
	Get(ctx context.Context, userID, id string) (*models.StudySession, error)
	ReplaceWindow(ctx context.Context, userID string, from, to time.Time, sessions []models.StudySession) error
	Update(ctx context.Context, s *models.StudySession) error
	Delete(ctx context.Context, userID, id string) error
}

type scheduleEngine interface {
	GenerateSchedule(items []scheduler.WorkItem, rules []scheduler.AvailabilityRule, startDate, endDate time.Time, strategy scheduler.Strategy, now time.Time) scheduler.Schedule
	PolicyReady() bool
}

// ScheduleService orchestrates schedule generation and study session workflows.
type ScheduleService struct {
	assignments  assignmentReader
	availability availabilityReader
	sessions     sessionStore
	engine       scheduleEngine
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewScheduleService constructs ScheduleService.
func NewScheduleService(assignments assignmentReader, availability availabilityReader, sessions sessionStore, engine scheduleEngine, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		assignments:  assignments,
		availability: availability,
		sessions:     sessions,
		engine:       engine,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func scheduleCacheKey(userID string, start, end time.Time, strategy scheduler.Strategy) string {
	return fmt.Sprintf("schedule:%s:%s:%s:%s", userID, start.Format(dateLayout), end.Format(dateLayout), strategy)
}

// Generate builds a study plan for the requested window. With Persist set the
// generated sessions replace any pending sessions in the window.
func (s *ScheduleService) Generate(ctx context.Context, userID string, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule request")
	}
	startDate, err := time.ParseInLocation(dateLayout, req.StartDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start date")
	}
	endDate, err := time.ParseInLocation(dateLayout, req.EndDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end date")
	}
	if endDate.Before(startDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}
	strategy := scheduler.Strategy(req.Strategy)
	if strategy == "" {
		strategy = scheduler.StrategyGreedy
	}

	cacheKey := scheduleCacheKey(userID, startDate, endDate, strategy)
	if !req.Persist {
		var cached dto.GenerateScheduleResponse
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			cached.FromCache = true
			return &cached, nil
		}
	}

	assignments, err := s.assignments.ListPending(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	slots, err := s.availability.List(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	items := make([]scheduler.WorkItem, 0, len(assignments))
	for _, a := range assignments {
		items = append(items, a.WorkItem())
	}
	rules := make([]scheduler.AvailabilityRule, 0, len(slots))
	for _, slot := range slots {
		rules = append(rules, slot.Rule())
	}

	now := s.now()
	effective := strategy
	if strategy == scheduler.StrategyPolicy && !s.engine.PolicyReady() {
		effective = scheduler.StrategyGreedy
		s.metrics.RecordPolicyFallback()
		s.logger.Info("policy artifact unavailable, using greedy strategy", zap.String("user_id", userID))
	}
	started := time.Now()
	plan := s.engine.GenerateSchedule(items, rules, startDate, endDate, strategy, now)
	s.metrics.ObserveScheduleRun(string(effective), plan.TotalHoursScheduled, time.Since(started), nil)

	resp := &dto.GenerateScheduleResponse{
		Strategy:            string(effective),
		Sessions:            make([]dto.SessionProposal, 0, len(plan.Sessions)),
		TotalHoursScheduled: plan.TotalHoursScheduled,
		CoveredAssignments:  plan.CoveredItemIDs,
	}
	for _, session := range plan.Sessions {
		resp.Sessions = append(resp.Sessions, dto.SessionProposal{
			AssignmentID:  session.WorkItemID,
			StartTime:     session.Start,
			EndTime:       session.End,
			DurationHours: session.DurationHours,
			Note:          session.Notes,
		})
	}

	if req.Persist {
		rows := make([]models.StudySession, 0, len(plan.Sessions))
		for _, session := range plan.Sessions {
			rows = append(rows, models.StudySession{
				AssignmentID: session.WorkItemID,
				StartTime:    session.Start,
				EndTime:      session.End,
				Notes:        session.Notes,
			})
		}
		windowEnd := endDate.AddDate(0, 0, 1)
		if err := s.sessions.ReplaceWindow(ctx, userID, startDate, windowEnd, rows); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist sessions")
		}
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("schedule:%s:*", userID))
	}

	_ = s.cache.Set(ctx, cacheKey, resp, 0)
	return resp, nil
}

// ListSessions returns persisted sessions constrained by the optional window.
func (s *ScheduleService) ListSessions(ctx context.Context, userID string, query dto.SessionQuery) ([]models.StudySession, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session query")
	}
	var from, to *time.Time
	if query.From != "" {
		parsed, _ := time.ParseInLocation(dateLayout, query.From, time.UTC)
		from = &parsed
	}
	if query.To != "" {
		parsed, _ := time.ParseInLocation(dateLayout, query.To, time.UTC)
		to = &parsed
	}
	sessions, err := s.sessions.List(ctx, userID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// UpdateSession patches a persisted session.
func (s *ScheduleService) UpdateSession(ctx context.Context, userID, id string, req dto.UpdateSessionRequest) (*models.StudySession, error) {
	session, err := s.sessions.Get(ctx, userID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if req.StartTime != nil {
		session.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		session.EndTime = *req.EndTime
	}
	if !session.EndTime.After(session.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session end must follow start")
	}
	if req.IsCompleted != nil {
		session.IsCompleted = *req.IsCompleted
	}
	if req.Notes != nil {
		session.Notes = *req.Notes
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("schedule:%s:*", userID))
	return session, nil
}

// DeleteSession removes a persisted session.
func (s *ScheduleService) DeleteSession(ctx context.Context, userID, id string) error {
	if err := s.sessions.Delete(ctx, userID, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("schedule:%s:*", userID))
	return nil
}
