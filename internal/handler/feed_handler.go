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

type feedService interface {
	GetPersonalizedFeed(ctx context.Context, userID string, query dto.PageQuery) (*dto.FeedResponse, error)
	TrackEngagement(ctx context.Context, userID string, req dto.TrackEngagementRequest) (*models.EngagementEvent, error)
	GetSimilarPosts(ctx context.Context, postID string) (*dto.PostListResponse, error)
	SearchPosts(ctx context.Context, query dto.SearchPostsQuery) (*dto.PostListResponse, error)
	ModeratePost(ctx context.Context, postID string, req dto.ModeratePostRequest, actor *models.JWTClaims) (*models.Post, error)
}

// FeedHandler exposes the community feed endpoints.
type FeedHandler struct {
	service feedService
}

// NewFeedHandler builds a new handler.
func NewFeedHandler(service feedService) *FeedHandler {
	return &FeedHandler{service: service}
}

// Feed godoc
// @Summary Personalized community feed
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.FeedResponse
// @Router /feed [get]
func (h *FeedHandler) Feed(c *gin.Context) {
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	result, err := h.service.GetPersonalizedFeed(c.Request.Context(), callerID(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Track godoc
// @Summary Record an engagement event
// @Tags Feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.TrackEngagementRequest true "Engagement payload"
// @Success 201 {object} models.EngagementEvent
// @Failure 400 {object} response.ErrorBody
// @Router /engagements [post]
func (h *FeedHandler) Track(c *gin.Context) {
	var req dto.TrackEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid engagement payload"))
		return
	}
	event, err := h.service.TrackEngagement(c.Request.Context(), callerID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Similar godoc
// @Summary Posts related to a post
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} dto.PostListResponse
// @Failure 404 {object} response.ErrorBody
// @Router /posts/{id}/similar [get]
func (h *FeedHandler) Similar(c *gin.Context) {
	result, err := h.service.GetSimilarPosts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Search godoc
// @Summary Search visible posts
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search text"
// @Param page query int false "Page (1-based)"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.PostListResponse
// @Router /posts/search [get]
func (h *FeedHandler) Search(c *gin.Context) {
	var query dto.SearchPostsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	result, err := h.service.SearchPosts(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Moderate godoc
// @Summary Hide, delete or restore a post
// @Tags Moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param payload body dto.ModeratePostRequest true "Moderation payload"
// @Success 200 {object} models.Post
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /posts/{id}/moderation [patch]
func (h *FeedHandler) Moderate(c *gin.Context) {
	var req dto.ModeratePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid moderation payload"))
		return
	}
	post, err := h.service.ModeratePost(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, post)
}
