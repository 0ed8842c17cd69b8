package dto

// AvailabilityRequest creates or replaces a weekly availability slot.
type AvailabilityRequest struct {
	DayOfWeek int    `json:"dayOfWeek" validate:"min=0,max=6"`
	StartTime string `json:"startTime" validate:"required,len=5"`
	EndTime   string `json:"endTime" validate:"required,len=5"`
}

// AvailabilityResponse exposes a stored availability slot.
type AvailabilityResponse struct {
	ID        string `json:"id"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}
