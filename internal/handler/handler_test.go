package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deep-platform/deep-api/internal/dto"
	"github.com/deep-platform/deep-api/internal/middleware"
	"github.com/deep-platform/deep-api/internal/models"
	"github.com/deep-platform/deep-api/internal/service"
	appErrors "github.com/deep-platform/deep-api/pkg/errors"
	"github.com/deep-platform/deep-api/pkg/response"
)

func newTestContext(method, target string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "learner-1", Role: models.RoleViewer})
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

type sessionServiceMock struct {
	session    *models.Session
	list       *dto.SessionListResponse
	err        error
	lastCaller string
	lastID     string
	lastCreate dto.CreateBookingRequest
	lastQuery  dto.SessionListQuery
}

func (m *sessionServiceMock) CreateBooking(_ context.Context, req dto.CreateBookingRequest, callerID string) (*models.Session, error) {
	m.lastCreate, m.lastCaller = req, callerID
	return m.session, m.err
}

func (m *sessionServiceMock) Transition(_ context.Context, sessionID, callerID string, _ dto.TransitionSessionRequest) (*models.Session, error) {
	m.lastID, m.lastCaller = sessionID, callerID
	return m.session, m.err
}

func (m *sessionServiceMock) Get(_ context.Context, sessionID, callerID string) (*models.Session, error) {
	m.lastID, m.lastCaller = sessionID, callerID
	return m.session, m.err
}

func (m *sessionServiceMock) List(_ context.Context, callerID string, query dto.SessionListQuery) (*dto.SessionListResponse, error) {
	m.lastCaller, m.lastQuery = callerID, query
	return m.list, m.err
}

func (m *sessionServiceMock) MentorAvailability(_ context.Context, mentorID string) (*dto.MentorAvailabilityResponse, error) {
	m.lastID = mentorID
	if m.err != nil {
		return nil, m.err
	}
	return &dto.MentorAvailabilityResponse{MentorID: mentorID, Timezone: "UTC"}, nil
}

func TestSessionHandlerCreate(t *testing.T) {
	mock := &sessionServiceMock{session: &models.Session{ID: "s1", Price: 180, Status: models.SessionStatusScheduled}}
	handler := NewSessionHandler(mock)

	c, w := newTestContext(http.MethodPost, "/sessions", `{"mentorId":"m1","date":"2025-03-03T09:00:00Z","durationMinutes":90,"topic":"Go"}`)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "learner-1", mock.lastCaller)
	assert.Equal(t, 90, mock.lastCreate.DurationMinutes)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 180.0, body["price"])
	assert.Equal(t, "scheduled", body["status"])
}

func TestSessionHandlerCreateRejectsMalformedBody(t *testing.T) {
	handler := NewSessionHandler(&sessionServiceMock{})

	c, w := newTestContext(http.MethodPost, "/sessions", `{"mentorId":`)
	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
}

func TestSessionHandlerCreateConflict(t *testing.T) {
	handler := NewSessionHandler(&sessionServiceMock{err: appErrors.ErrSlotConflict})

	c, w := newTestContext(http.MethodPost, "/sessions", `{"mentorId":"m1","date":"2025-03-03T09:00:00Z","durationMinutes":60,"topic":"Go"}`)
	handler.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SLOT_CONFLICT", decodeError(t, w).Code)
}

func TestSessionHandlerTransition(t *testing.T) {
	mock := &sessionServiceMock{err: appErrors.ErrInvalidTransition}
	handler := NewSessionHandler(mock)

	c, w := newTestContext(http.MethodPost, "/sessions/s1/transitions", `{"action":"start"}`)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Transition(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decodeError(t, w).Code)
	assert.Equal(t, "s1", mock.lastID)
}

func TestSessionHandlerInternalErrorIsOpaque(t *testing.T) {
	handler := NewSessionHandler(&sessionServiceMock{err: appErrors.Internal(errors.New("pq: connection refused"), "failed to load session")})

	c, w := newTestContext(http.MethodGet, "/sessions/s1", "")
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Get(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Empty(t, body.Details)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestSessionHandlerListBindsQuery(t *testing.T) {
	mock := &sessionServiceMock{list: &dto.SessionListResponse{Sessions: []models.Session{}, Pagination: models.Pagination{Page: 2, PageSize: 5}}}
	handler := NewSessionHandler(mock)

	c, w := newTestContext(http.MethodGet, "/sessions?as=mentor&status=completed&page=2&pageSize=5", "")
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SessionPartyMentor, mock.lastQuery.As)
	assert.Equal(t, models.SessionStatusCompleted, mock.lastQuery.Status)
	assert.Equal(t, 5, mock.lastQuery.PageSize)
	assert.Contains(t, w.Body.String(), `"page":2`)
}

func TestSessionHandlerAvailability(t *testing.T) {
	mock := &sessionServiceMock{}
	handler := NewSessionHandler(mock)

	c, w := newTestContext(http.MethodGet, "/mentors/m1/availability", "")
	c.Params = gin.Params{{Key: "id", Value: "m1"}}
	handler.Availability(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "m1", mock.lastID)
}

type feedServiceMock struct {
	feed      *dto.FeedResponse
	err       error
	lastQuery dto.PageQuery
	lastActor *models.JWTClaims
	lastTrack dto.TrackEngagementRequest
}

func (m *feedServiceMock) GetPersonalizedFeed(_ context.Context, _ string, query dto.PageQuery) (*dto.FeedResponse, error) {
	m.lastQuery = query
	return m.feed, m.err
}

func (m *feedServiceMock) TrackEngagement(_ context.Context, userID string, req dto.TrackEngagementRequest) (*models.EngagementEvent, error) {
	m.lastTrack = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.EngagementEvent{ID: "e1", UserID: userID, PostID: req.PostID, Action: req.Action}, nil
}

func (m *feedServiceMock) GetSimilarPosts(_ context.Context, _ string) (*dto.PostListResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.PostListResponse{Posts: []models.Post{}}, nil
}

func (m *feedServiceMock) SearchPosts(_ context.Context, _ dto.SearchPostsQuery) (*dto.PostListResponse, error) {
	return &dto.PostListResponse{Posts: []models.Post{}}, m.err
}

func (m *feedServiceMock) ModeratePost(_ context.Context, postID string, req dto.ModeratePostRequest, actor *models.JWTClaims) (*models.Post, error) {
	m.lastActor = actor
	if m.err != nil {
		return nil, m.err
	}
	return &models.Post{ID: postID, Status: req.Status}, nil
}

func TestFeedHandlerFeed(t *testing.T) {
	mock := &feedServiceMock{feed: &dto.FeedResponse{Posts: []models.ScoredPost{{Post: models.Post{ID: "p1"}, Score: 18}}, Page: 2, PageSize: 20, HasMore: false}}
	handler := NewFeedHandler(mock)

	c, w := newTestContext(http.MethodGet, "/feed?page=2&pageSize=20", "")
	handler.Feed(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.PageQuery{Page: 2, PageSize: 20}, mock.lastQuery)
	var body dto.FeedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Posts, 1)
	assert.Equal(t, 18.0, body.Posts[0].Score)
}

func TestFeedHandlerFeedRejectsBadPage(t *testing.T) {
	handler := NewFeedHandler(&feedServiceMock{})

	c, w := newTestContext(http.MethodGet, "/feed?page=two", "")
	handler.Feed(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedHandlerTrack(t *testing.T) {
	mock := &feedServiceMock{}
	handler := NewFeedHandler(mock)

	c, w := newTestContext(http.MethodPost, "/engagements", `{"postId":"p1","action":"like","metadata":{"source":"feed"}}`)
	handler.Track(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.EngagementLike, mock.lastTrack.Action)
	assert.JSONEq(t, `{"source":"feed"}`, string(mock.lastTrack.Metadata))
}

func TestFeedHandlerSimilarNotFound(t *testing.T) {
	handler := NewFeedHandler(&feedServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "post not found")})

	c, w := newTestContext(http.MethodGet, "/posts/p9/similar", "")
	c.Params = gin.Params{{Key: "id", Value: "p9"}}
	handler.Similar(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "post not found", decodeError(t, w).Error)
}

func TestFeedHandlerModeratePassesClaims(t *testing.T) {
	mock := &feedServiceMock{}
	handler := NewFeedHandler(mock)

	c, w := newTestContext(http.MethodPatch, "/posts/p1/moderation", `{"status":"hidden","reason":"spam"}`)
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	handler.Moderate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.lastActor)
	assert.Equal(t, "learner-1", mock.lastActor.Identity())
}

type statementServiceMock struct {
	resp    *dto.StatementResponse
	file    *service.StatementFile
	err     error
	lastReq dto.StatementRequest
}

func (m *statementServiceMock) Export(_ context.Context, _ string, req dto.StatementRequest) (*dto.StatementResponse, error) {
	m.lastReq = req
	return m.resp, m.err
}

func (m *statementServiceMock) Open(_ string) (*service.StatementFile, error) {
	return m.file, m.err
}

func TestStatementHandlerExportParsesDates(t *testing.T) {
	mock := &statementServiceMock{resp: &dto.StatementResponse{URL: "/api/v1/statements/tok", Format: "pdf"}}
	handler := NewStatementHandler(mock)

	c, w := newTestContext(http.MethodGet, "/mentors/me/statement?from=2025-03-01&to=2025-03-31&format=pdf", "")
	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), mock.lastReq.To.UTC())
	assert.Equal(t, "pdf", mock.lastReq.Format)
}

func TestStatementHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,price\n"), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	handler := NewStatementHandler(&statementServiceMock{file: &service.StatementFile{File: file, Name: "statement.csv", ContentType: "text/csv"}})
	c, w := newTestContext(http.MethodGet, "/statements/tok", "")
	c.Params = gin.Params{{Key: "token", Value: "tok"}}
	handler.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "statement.csv")
	assert.Equal(t, "date,price\n", w.Body.String())
}

func TestStatementHandlerDownloadExpired(t *testing.T) {
	handler := NewStatementHandler(&statementServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "download link expired")})

	c, w := newTestContext(http.MethodGet, "/statements/tok", "")
	handler.Download(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReadyReportsFailingDependency(t *testing.T) {
	handler := NewMetricsHandler(service.NewMetricsService(), map[string]Pinger{
		"postgres": PingFunc(func(context.Context) error { return nil }),
		"redis":    PingFunc(func(context.Context) error { return errors.New("dial tcp: refused") }),
	})

	c, w := newTestContext(http.MethodGet, "/ready", "")
	handler.Ready(c)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)

	c, w = newTestContext(http.MethodGet, "/health", "")
	handler.Health(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
