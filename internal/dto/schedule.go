package dto

import "time"

// GenerateScheduleRequest instructs the engine to build a study plan for the window.
type GenerateScheduleRequest struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Strategy  string `json:"strategy" validate:"omitempty,oneof=greedy policy"`
	Persist   bool   `json:"persist"`
}

// SessionProposal represents one generated study block.
type SessionProposal struct {
	AssignmentID  string    `json:"assignmentId"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	DurationHours float64   `json:"durationHours"`
	Note          string    `json:"note"`
}

// GenerateScheduleResponse returns the built study plan.
type GenerateScheduleResponse struct {
	Strategy            string            `json:"strategy"`
	Sessions            []SessionProposal `json:"sessions"`
	TotalHoursScheduled float64           `json:"totalHoursScheduled"`
	CoveredAssignments  []string          `json:"coveredAssignments"`
	FromCache           bool              `json:"fromCache"`
}

// UpdateSessionRequest patches a persisted study session.
type UpdateSessionRequest struct {
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	IsCompleted *bool      `json:"isCompleted"`
	Notes       *string    `json:"notes"`
}

// SessionQuery filters persisted sessions by window.
type SessionQuery struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}
