package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deep-platform/deep-api/internal/dto"
	"github.com/deep-platform/deep-api/internal/models"
	"github.com/deep-platform/deep-api/internal/repository"
	"github.com/deep-platform/deep-api/pkg/cache"
	appErrors "github.com/deep-platform/deep-api/pkg/errors"
)

type sessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	HasScheduledOnDay(ctx context.Context, mentorID, day string) (bool, error)
	UpdateStatus(ctx context.Context, update models.SessionUpdate) error
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
}

type mentorStore interface {
	GetByID(ctx context.Context, id string) (*models.MentorProfile, error)
}

type profileLookup interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

type slotLocker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

type auditSink interface {
	Record(ctx context.Context, entry *models.AuditLog)
}

type bookingMetrics interface {
	ObserveBooking(outcome string)
	ObserveTransition(action, result string)
}

// BookingConfig tunes booking validation.
type BookingConfig struct {
	DefaultTimezone string
	MaxDuration     int
	DefaultPageSize int
	MaxPageSize     int
}

// BookingService implements the mentorship session lifecycle.
type BookingService struct {
	sessions  sessionStore
	mentors   mentorStore
	profiles  profileLookup
	locker    slotLocker
	audit     auditSink
	metrics   bookingMetrics
	validator *validator.Validate
	logger    *zap.Logger
	cfg       BookingConfig
	now       func() time.Time
}

// BookingServiceOption configures optional collaborators.
type BookingServiceOption func(*BookingService)

// WithBookingLocker guards check-then-insert with a per mentor-day lock.
func WithBookingLocker(locker slotLocker) BookingServiceOption {
	return func(s *BookingService) {
		if locker != nil {
			s.locker = locker
		}
	}
}

// WithBookingAudit records lifecycle events.
func WithBookingAudit(audit auditSink) BookingServiceOption {
	return func(s *BookingService) { s.audit = audit }
}

// WithBookingMetrics counts booking outcomes.
func WithBookingMetrics(metrics bookingMetrics) BookingServiceOption {
	return func(s *BookingService) { s.metrics = metrics }
}

// WithBookingClock overrides time.Now.
func WithBookingClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		if now != nil {
			s.now = now
		}
	}
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

// NewBookingService constructs the service with defaults.
func NewBookingService(sessions sessionStore, mentors mentorStore, profiles profileLookup, validate *validator.Validate, logger *zap.Logger, cfg BookingConfig, opts ...BookingServiceOption) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = "UTC"
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	svc := &BookingService{
		sessions:  sessions,
		mentors:   mentors,
		profiles:  profiles,
		locker:    noopLocker{},
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// CreateBooking books a session for the calling learner.
func (s *BookingService) CreateBooking(ctx context.Context, req dto.CreateBookingRequest, callerID string) (*models.Session, error) {
	if callerID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "topic is required")
	}
	if req.Date.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}
	if s.cfg.MaxDuration > 0 && req.DurationMinutes > s.cfg.MaxDuration {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("durationMinutes must not exceed %d", s.cfg.MaxDuration))
	}
	if req.LearnerID != "" && req.LearnerID != callerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "sessions can only be booked for yourself")
	}

	if !isResourceID(req.MentorID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
	}
	mentor, err := s.mentors.GetByID(ctx, req.MentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Internal(err, "failed to load mentor")
	}

	local := req.Date.In(s.location(mentor.Timezone))
	weekday := strings.ToLower(local.Weekday().String())
	slot := local.Format("15:04")
	day := local.Format("2006-01-02")

	if !mentor.Availability.Allows(weekday, slot) {
		s.observeBooking("slot_unavailable")
		return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, fmt.Sprintf("mentor is not available on %s at %s", weekday, slot))
	}

	release, err := s.locker.Acquire(ctx, mentor.ID+":"+day)
	if err != nil {
		if errors.Is(err, cache.ErrLocked) {
			s.observeBooking("slot_conflict")
			return nil, appErrors.ErrSlotConflict
		}
		return nil, appErrors.Internal(err, "failed to lock booking slot")
	}
	defer release()

	taken, err := s.sessions.HasScheduledOnDay(ctx, mentor.ID, day)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check existing sessions")
	}
	if taken {
		s.observeBooking("slot_conflict")
		return nil, appErrors.ErrSlotConflict
	}

	now := s.now().UTC()
	session := &models.Session{
		MentorID:        mentor.ID,
		LearnerID:       callerID,
		LearnerName:     s.learnerName(ctx, callerID),
		ScheduledAt:     req.Date.UTC(),
		ScheduledDay:    day,
		DurationMinutes: req.DurationMinutes,
		Topic:           strings.TrimSpace(req.Topic),
		Price:           sessionPrice(mentor.HourlyRate, req.DurationMinutes),
		Status:          models.SessionStatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			s.observeBooking("slot_conflict")
			return nil, appErrors.ErrSlotConflict
		}
		return nil, appErrors.Internal(err, "failed to create session")
	}
	s.observeBooking("created")

	payload, _ := json.Marshal(session)
	s.record(ctx, &models.AuditLog{
		UserID:     &callerID,
		Action:     models.AuditActionSessionCreate,
		Resource:   "session",
		ResourceID: &session.ID,
		NewValues:  payload,
	})
	return session, nil
}

// Transition applies an action to a session on behalf of one of its participants.
func (s *BookingService) Transition(ctx context.Context, sessionID, callerID string, req dto.TransitionSessionRequest) (*models.Session, error) {
	if callerID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transition payload")
	}
	if !isResourceID(sessionID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}
	if !session.IsParticipant(callerID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only session participants can change it")
	}

	next, ok := nextSessionStatus(session.Status, req.Action)
	if !ok {
		s.observeTransition(req.Action, "invalid")
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot %s a %s session", req.Action, session.Status))
	}

	hasReview := req.Feedback != nil || req.Rating != nil || req.Notes != nil
	if req.Action == models.SessionActionUpdate {
		if callerID != session.LearnerID {
			s.observeTransition(req.Action, "forbidden")
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only the learner can review a session")
		}
		if !hasReview {
			return nil, appErrors.Clone(appErrors.ErrValidation, "feedback, rating or notes is required")
		}
	} else if hasReview {
		return nil, appErrors.Clone(appErrors.ErrValidation, "feedback, rating and notes can only be set with the update action")
	}

	before, _ := json.Marshal(session)
	update := models.SessionUpdate{
		ID:         session.ID,
		FromStatus: session.Status,
		ToStatus:   next,
		Feedback:   req.Feedback,
		Rating:     req.Rating,
		Notes:      req.Notes,
		UpdatedAt:  s.now().UTC(),
	}
	if err := s.sessions.UpdateStatus(ctx, update); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.observeTransition(req.Action, "conflict")
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "session status changed, reload and retry")
		}
		return nil, appErrors.Internal(err, "failed to update session")
	}
	s.observeTransition(req.Action, "ok")

	session.Status = next
	session.UpdatedAt = update.UpdatedAt
	if req.Feedback != nil {
		session.Feedback = req.Feedback
	}
	if req.Rating != nil {
		session.Rating = req.Rating
	}
	if req.Notes != nil {
		session.Notes = req.Notes
	}

	after, _ := json.Marshal(session)
	s.record(ctx, &models.AuditLog{
		UserID:     &callerID,
		Action:     models.AuditActionSessionTransition,
		Resource:   "session",
		ResourceID: &session.ID,
		OldValues:  before,
		NewValues:  after,
	})
	return session, nil
}

// Get returns a session visible to one of its participants.
func (s *BookingService) Get(ctx context.Context, sessionID, callerID string) (*models.Session, error) {
	if callerID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if !isResourceID(sessionID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}
	if !session.IsParticipant(callerID) {
		return nil, appErrors.ErrForbidden
	}
	return session, nil
}

// List pages through the caller's sessions.
func (s *BookingService) List(ctx context.Context, callerID string, query dto.SessionListQuery) (*dto.SessionListResponse, error) {
	if callerID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session query")
	}
	page, pageSize := normalizePage(query.Page, query.PageSize, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	sessions, err := s.sessions.List(ctx, models.SessionFilter{
		UserID: callerID,
		Party:  query.As,
		Status: query.Status,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sessions")
	}
	return &dto.SessionListResponse{
		Sessions:   sessions,
		Pagination: models.Pagination{Page: page, PageSize: pageSize, HasMore: len(sessions) == pageSize},
	}, nil
}

// MentorAvailability exposes the slots a mentor accepts bookings for.
func (s *BookingService) MentorAvailability(ctx context.Context, mentorID string) (*dto.MentorAvailabilityResponse, error) {
	if !isResourceID(mentorID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
	}
	mentor, err := s.mentors.GetByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Internal(err, "failed to load mentor")
	}
	availability := mentor.Availability
	if availability == nil {
		availability = models.Availability{}
	}
	return &dto.MentorAvailabilityResponse{
		MentorID:     mentor.ID,
		Timezone:     s.location(mentor.Timezone).String(),
		HourlyRate:   mentor.HourlyRate,
		Availability: availability,
	}, nil
}

func (s *BookingService) location(name string) *time.Location {
	for _, candidate := range []string{name, s.cfg.DefaultTimezone} {
		if candidate == "" {
			continue
		}
		if loc, err := time.LoadLocation(candidate); err == nil {
			return loc
		}
		s.logger.Debug("unknown time zone", zap.String("timezone", candidate))
	}
	return time.UTC
}

func (s *BookingService) learnerName(ctx context.Context, learnerID string) string {
	if s.profiles == nil {
		return ""
	}
	profile, err := s.profiles.GetByID(ctx, learnerID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to resolve learner name", zap.String("learner_id", learnerID), zap.Error(err))
		}
		return ""
	}
	return profile.DisplayName
}

func (s *BookingService) observeBooking(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveBooking(outcome)
	}
}

func (s *BookingService) observeTransition(action models.SessionAction, result string) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(string(action), result)
	}
}

func (s *BookingService) record(ctx context.Context, entry *models.AuditLog) {
	if s.audit != nil {
		s.audit.Record(ctx, entry)
	}
}

// sessionPrice is hourlyRate * minutes / 60 rounded to cents.
func sessionPrice(hourlyRate float64, minutes int) float64 {
	return math.Round(hourlyRate*float64(minutes)/60*100) / 100
}

func normalizePage(page, pageSize, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = def
	}
	if pageSize > max {
		pageSize = max
	}
	return page, pageSize
}

// isResourceID reports whether id can name a row; every primary key is a UUID.
func isResourceID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
