package dto

import "time"

// AssignmentRequest creates or updates an assignment.
type AssignmentRequest struct {
	Title          string    `json:"title" validate:"required"`
	EstimatedHours float64   `json:"estimatedHours" validate:"required,gt=0"`
	DueDate        time.Time `json:"dueDate" validate:"required"`
	Priority       string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	Difficulty     string    `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// AssignmentResponse exposes a stored assignment.
type AssignmentResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	EstimatedHours float64   `json:"estimatedHours"`
	DueDate        time.Time `json:"dueDate"`
	Priority       string    `json:"priority"`
	Difficulty     string    `json:"difficulty"`
	IsCompleted    bool      `json:"isCompleted"`
}

// AssignmentQuery filters assignment listings.
type AssignmentQuery struct {
	IncludeCompleted bool `form:"includeCompleted"`
	Page             int  `form:"page"`
	PageSize         int  `form:"pageSize"`
}
