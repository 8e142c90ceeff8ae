package dto

import (
	"time"

	"github.com/deep-platform/deep-api/internal/models"
)

// CreateBookingRequest is the POST /sessions payload. LearnerID defaults to the caller.
type CreateBookingRequest struct {
	MentorID        string    `json:"mentorId" validate:"required"`
	LearnerID       string    `json:"learnerId,omitempty"`
	Date            time.Time `json:"date" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"required,gt=0"`
	Topic           string    `json:"topic" validate:"required,max=500"`
}

// TransitionSessionRequest is the POST /sessions/:id/transitions payload.
type TransitionSessionRequest struct {
	Action   models.SessionAction `json:"action" validate:"required,oneof=start complete cancel update"`
	Feedback *string              `json:"feedback,omitempty" validate:"omitempty,max=2000"`
	Rating   *int                 `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Notes    *string              `json:"notes,omitempty" validate:"omitempty,max=4000"`
}

// SessionListQuery mirrors GET /sessions query parameters.
type SessionListQuery struct {
	As       models.SessionParty  `form:"as" validate:"omitempty,oneof=mentor learner"`
	Status   models.SessionStatus `form:"status" validate:"omitempty,oneof=scheduled in_progress completed cancelled"`
	Page     int                  `form:"page" validate:"omitempty,min=1"`
	PageSize int                  `form:"pageSize" validate:"omitempty,min=1"`
}

// SessionListResponse wraps a page of sessions.
type SessionListResponse struct {
	Sessions []models.Session `json:"sessions"`
	models.Pagination
}

// MentorAvailabilityResponse exposes a mentor's bookable slots.
type MentorAvailabilityResponse struct {
	MentorID     string              `json:"mentorId"`
	Timezone     string              `json:"timezone"`
	HourlyRate   float64             `json:"hourlyRate"`
	Availability models.Availability `json:"availability"`
}
