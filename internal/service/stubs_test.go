package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deep-platform/deep-api/internal/models"
	"github.com/deep-platform/deep-api/pkg/jobs"
)

type sessionStoreStub struct {
	mu          sync.Mutex
	sessions    map[string]*models.Session
	scheduled   map[string]bool
	createErr   error
	updateErr   error
	lastFilter  models.SessionFilter
	filters     []models.SessionFilter
	lastUpdate  models.SessionUpdate
	listResults []models.Session
	// listPages, when set, serves one slice per Limit-sized offset window.
	listPages [][]models.Session
}

func newSessionStoreStub() *sessionStoreStub {
	return &sessionStoreStub{sessions: map[string]*models.Session{}, scheduled: map[string]bool{}}
}

func (s *sessionStoreStub) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	copy := *session
	s.sessions[session.ID] = &copy
	s.scheduled[session.MentorID+"|"+session.ScheduledDay] = true
	return nil
}

func (s *sessionStoreStub) GetByID(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *session
	return &copy, nil
}

func (s *sessionStoreStub) HasScheduledOnDay(_ context.Context, mentorID, day string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduled[mentorID+"|"+day], nil
}

func (s *sessionStoreStub) UpdateStatus(_ context.Context, update models.SessionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdate = update
	if s.updateErr != nil {
		return s.updateErr
	}
	session, ok := s.sessions[update.ID]
	if !ok || session.Status != update.FromStatus {
		return sql.ErrNoRows
	}
	session.Status = update.ToStatus
	if update.Feedback != nil {
		session.Feedback = update.Feedback
	}
	if update.Rating != nil {
		session.Rating = update.Rating
	}
	if update.Notes != nil {
		session.Notes = update.Notes
	}
	return nil
}

func (s *sessionStoreStub) List(_ context.Context, filter models.SessionFilter) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter = filter
	s.filters = append(s.filters, filter)
	if s.listPages != nil {
		idx := filter.Offset / filter.Limit
		if idx >= len(s.listPages) {
			return nil, nil
		}
		return s.listPages[idx], nil
	}
	return s.listResults, nil
}

type mentorStoreStub struct {
	mentors map[string]*models.MentorProfile
}

func (m *mentorStoreStub) GetByID(_ context.Context, id string) (*models.MentorProfile, error) {
	mentor, ok := m.mentors[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return mentor, nil
}

type profileStub struct {
	profiles map[string]*models.Profile
	err      error
	upserts  []*models.Profile
}

func (p *profileStub) GetByID(_ context.Context, id string) (*models.Profile, error) {
	if p.err != nil {
		return nil, p.err
	}
	profile, ok := p.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return profile, nil
}

func (p *profileStub) Upsert(_ context.Context, profile *models.Profile) error {
	if p.err != nil {
		return p.err
	}
	p.upserts = append(p.upserts, profile)
	return nil
}

type lockerStub struct {
	err      error
	keys     []string
	released int
}

func (l *lockerStub) Acquire(_ context.Context, key string) (func(), error) {
	l.keys = append(l.keys, key)
	if l.err != nil {
		return func() {}, l.err
	}
	return func() { l.released++ }, nil
}

type auditSinkStub struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (a *auditSinkStub) Record(_ context.Context, entry *models.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

type auditWriterStub struct {
	err     error
	written []*models.AuditLog
}

func (a *auditWriterStub) Create(_ context.Context, log *models.AuditLog) error {
	if a.err != nil {
		return a.err
	}
	a.written = append(a.written, log)
	return nil
}

type queueStub struct {
	err   error
	tasks []jobs.Task
}

func (q *queueStub) Submit(task jobs.Task) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

type metricsStub struct {
	mu            sync.Mutex
	bookings      []string
	transitions   []string
	pages         []int
	auditFailures []string
	queries       []string
}

func (m *metricsStub) ObserveBooking(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, outcome)
}

func (m *metricsStub) ObserveTransition(action, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, action+":"+result)
}

func (m *metricsStub) ObserveFeedPage(posts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = append(m.pages, posts)
}

func (m *metricsStub) ObserveDBQuery(label string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, label)
}

func (m *metricsStub) IncAuditFailure(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auditFailures = append(m.auditFailures, stage)
}

var errStore = errors.New("connection reset")
