package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/deep-platform/deep-api/internal/dto"
	"github.com/deep-platform/deep-api/internal/models"
	"github.com/deep-platform/deep-api/internal/repository"
	appErrors "github.com/deep-platform/deep-api/pkg/errors"
)

type postStore interface {
	ListCandidates(ctx context.Context, filter models.CandidateFilter) ([]models.Post, error)
	FindByID(ctx context.Context, id string) (*models.Post, error)
	ListSimilar(ctx context.Context, anchor *models.Post, limit int) ([]models.Post, error)
	Search(ctx context.Context, term string, limit, offset int) ([]models.Post, error)
	UpdateStatus(ctx context.Context, id string, status models.PostStatus) (models.PostStatus, error)
}

type engagementStore interface {
	Create(ctx context.Context, event *models.EngagementEvent) error
	ListRecent(ctx context.Context, userID string, since time.Time, limit int) ([]models.RecentEngagement, error)
}

type interestStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserInterest, error)
}

type feedMetrics interface {
	ObserveDBQuery(label string, duration time.Duration)
	ObserveFeedPage(posts int)
}

// FeedConfig tunes feed pagination and personalization inputs.
type FeedConfig struct {
	DefaultPageSize  int
	MaxPageSize      int
	EngagementWindow time.Duration
	HistoryLimit     int
	SimilarLimit     int
}

// FeedService ranks the community feed and records engagement.
type FeedService struct {
	posts       postStore
	engagements engagementStore
	interests   interestStore
	profiles    profileLookup
	audit       auditSink
	metrics     feedMetrics
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         FeedConfig
	now         func() time.Time
}

// FeedServiceOption configures optional collaborators.
type FeedServiceOption func(*FeedService)

// WithFeedAudit records moderation decisions.
func WithFeedAudit(audit auditSink) FeedServiceOption {
	return func(s *FeedService) { s.audit = audit }
}

// WithFeedMetrics instruments store reads.
func WithFeedMetrics(metrics feedMetrics) FeedServiceOption {
	return func(s *FeedService) { s.metrics = metrics }
}

// WithFeedClock overrides time.Now.
func WithFeedClock(now func() time.Time) FeedServiceOption {
	return func(s *FeedService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewFeedService constructs the service with defaults.
func NewFeedService(posts postStore, engagements engagementStore, interests interestStore, profiles profileLookup, validate *validator.Validate, logger *zap.Logger, cfg FeedConfig, opts ...FeedServiceOption) *FeedService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.EngagementWindow <= 0 {
		cfg.EngagementWindow = 7 * 24 * time.Hour
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	if cfg.SimilarLimit <= 0 {
		cfg.SimilarLimit = 10
	}
	svc := &FeedService{
		posts:       posts,
		engagements: engagements,
		interests:   interests,
		profiles:    profiles,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// GetPersonalizedFeed returns one ranked page of candidate posts for userID.
func (s *FeedService) GetPersonalizedFeed(ctx context.Context, userID string, query dto.PageQuery) (*dto.FeedResponse, error) {
	if userID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	page, pageSize := normalizePage(query.Page, query.PageSize, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)

	var (
		interest *models.UserInterest
		recent   []models.RecentEngagement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		defer s.observe("feed_interests", start)
		found, err := s.interests.GetByUserID(gctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		interest = found
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		defer s.observe("feed_engagements", start)
		events, err := s.engagements.ListRecent(gctx, userID, s.now().Add(-s.cfg.EngagementWindow), s.cfg.HistoryLimit)
		if err != nil {
			return err
		}
		recent = events
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, appErrors.Internal(err, "failed to load personalization data")
	}

	filter := models.CandidateFilter{
		ViewerID: userID,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}
	if interest != nil && len(interest.Tags) > 0 {
		filter.InterestTags = append([]string(nil), interest.Tags...)
	}
	start := time.Now()
	candidates, err := s.posts.ListCandidates(ctx, filter)
	s.observe("feed_candidates", start)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load feed")
	}

	ranked := newFeedSignals(interest, recent).rank(candidates)
	if s.metrics != nil {
		s.metrics.ObserveFeedPage(len(ranked))
	}
	return &dto.FeedResponse{
		Posts:    ranked,
		Page:     page,
		PageSize: pageSize,
		HasMore:  len(ranked) == pageSize,
	}, nil
}

// TrackEngagement appends an interaction event for userID.
func (s *FeedService) TrackEngagement(ctx context.Context, userID string, req dto.TrackEngagementRequest) (*models.EngagementEvent, error) {
	if userID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid engagement payload")
	}
	if len(req.Metadata) > 0 && !json.Valid(req.Metadata) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "metadata must be valid JSON")
	}
	if !isResourceID(req.PostID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
	}
	event := &models.EngagementEvent{
		UserID:    userID,
		PostID:    req.PostID,
		Action:    req.Action,
		Metadata:  req.Metadata,
		CreatedAt: s.now().UTC(),
	}
	if err := s.engagements.Create(ctx, event); err != nil {
		if errors.Is(err, repository.ErrUnknownPost) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Internal(err, "failed to record engagement")
	}
	return event, nil
}

// GetSimilarPosts lists visible posts related to postID by type or tag.
func (s *FeedService) GetSimilarPosts(ctx context.Context, postID string) (*dto.PostListResponse, error) {
	if !isResourceID(postID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
	}
	anchor, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Internal(err, "failed to load post")
	}
	start := time.Now()
	posts, err := s.posts.ListSimilar(ctx, anchor, s.cfg.SimilarLimit)
	s.observe("similar_posts", start)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load similar posts")
	}
	return &dto.PostListResponse{Posts: posts}, nil
}

// SearchPosts pages through visible posts whose content contains the query.
func (s *FeedService) SearchPosts(ctx context.Context, query dto.SearchPostsQuery) (*dto.PostListResponse, error) {
	query.Q = strings.TrimSpace(query.Q)
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid search query")
	}
	page, pageSize := normalizePage(query.Page, query.PageSize, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	start := time.Now()
	posts, err := s.posts.Search(ctx, query.Q, pageSize, (page-1)*pageSize)
	s.observe("search_posts", start)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to search posts")
	}
	return &dto.PostListResponse{Posts: posts, Page: page, PageSize: pageSize, HasMore: len(posts) == pageSize}, nil
}

// ModeratePost changes a post's visibility. The caller's stored role must be moderator or above.
func (s *FeedService) ModeratePost(ctx context.Context, postID string, req dto.ModeratePostRequest, actor *models.JWTClaims) (*models.Post, error) {
	callerID := actor.Identity()
	if callerID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid moderation payload")
	}
	if !s.roleOf(ctx, actor).HasAtLeast(models.RoleModerator) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "moderator role required")
	}
	if !isResourceID(postID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
	}

	previous, err := s.posts.UpdateStatus(ctx, postID, req.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Internal(err, "failed to moderate post")
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to reload post")
	}

	oldValues, _ := json.Marshal(map[string]interface{}{"status": previous})
	newValues, _ := json.Marshal(map[string]interface{}{"status": req.Status, "reason": req.Reason})
	if s.audit != nil {
		s.audit.Record(ctx, &models.AuditLog{
			UserID:     &callerID,
			Action:     models.AuditActionPostModerate,
			Resource:   "post",
			ResourceID: &post.ID,
			OldValues:  oldValues,
			NewValues:  newValues,
		})
	}
	return post, nil
}

// roleOf prefers the profile row; the token claim is used when no profile store is wired.
func (s *FeedService) roleOf(ctx context.Context, actor *models.JWTClaims) models.Role {
	if s.profiles == nil {
		return actor.Role
	}
	profile, err := s.profiles.GetByID(ctx, actor.Identity())
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to resolve caller role", zap.String("user_id", actor.Identity()), zap.Error(err))
		}
		return ""
	}
	return profile.Role
}

func (s *FeedService) observe(label string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(start))
	}
}
