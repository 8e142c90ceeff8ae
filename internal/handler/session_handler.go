package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deep-platform/deep-api/internal/dto"
	"github.com/deep-platform/deep-api/internal/models"
	appErrors "github.com/deep-platform/deep-api/pkg/errors"
	"github.com/deep-platform/deep-api/pkg/response"
)

type sessionService interface {
	CreateBooking(ctx context.Context, req dto.CreateBookingRequest, callerID string) (*models.Session, error)
	Transition(ctx context.Context, sessionID, callerID string, req dto.TransitionSessionRequest) (*models.Session, error)
	Get(ctx context.Context, sessionID, callerID string) (*models.Session, error)
	List(ctx context.Context, callerID string, query dto.SessionListQuery) (*dto.SessionListResponse, error)
	MentorAvailability(ctx context.Context, mentorID string) (*dto.MentorAvailabilityResponse, error)
}

// SessionHandler exposes mentorship booking endpoints.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler builds a new handler.
func NewSessionHandler(service sessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Create godoc
// @Summary Book a mentorship session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateBookingRequest true "Booking payload"
// @Success 201 {object} models.Session
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	session, err := h.service.CreateBooking(c.Request.Context(), req, callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Transition godoc
// @Summary Start, complete, cancel or review a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param payload body dto.TransitionSessionRequest true "Transition payload"
// @Success 200 {object} models.Session
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /sessions/{id}/transitions [post]
func (h *SessionHandler) Transition(c *gin.Context) {
	var req dto.TransitionSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid transition payload"))
		return
	}
	session, err := h.service.Transition(c.Request.Context(), c.Param("id"), callerID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Get godoc
// @Summary Get a session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} models.Session
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// List godoc
// @Summary List the caller's sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param as query string false "mentor or learner"
// @Param status query string false "Session status"
// @Param page query int false "Page (1-based)"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.SessionListResponse
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	var query dto.SessionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	result, err := h.service.List(c.Request.Context(), callerID(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Availability godoc
// @Summary Get a mentor's weekly availability
// @Tags Mentors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mentor ID"
// @Success 200 {object} dto.MentorAvailabilityResponse
// @Failure 404 {object} response.ErrorBody
// @Router /mentors/{id}/availability [get]
func (h *SessionHandler) Availability(c *gin.Context) {
	result, err := h.service.MentorAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
