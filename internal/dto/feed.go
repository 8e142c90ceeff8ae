package dto

import (
	"encoding/json"

	"github.com/deep-platform/deep-api/internal/models"
)

// PageQuery carries page/pageSize query parameters.
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

// FeedResponse is a ranked feed page.
type FeedResponse struct {
	Posts    []models.ScoredPost `json:"posts"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
	HasMore  bool                `json:"hasMore"`
}

// PostListResponse is an unranked page of posts.
type PostListResponse struct {
	Posts    []models.Post `json:"posts"`
	Page     int           `json:"page,omitempty"`
	PageSize int           `json:"pageSize,omitempty"`
	HasMore  bool          `json:"hasMore"`
}

// TrackEngagementRequest is the POST /engagements payload.
type TrackEngagementRequest struct {
	PostID   string                  `json:"postId" validate:"required"`
	Action   models.EngagementAction `json:"action" validate:"required,oneof=view like comment share save"`
	Metadata json.RawMessage         `json:"metadata,omitempty" swaggertype:"object"`
}

// SearchPostsQuery mirrors GET /posts/search.
type SearchPostsQuery struct {
	Q string `form:"q" validate:"required,min=2,max=200"`
	PageQuery
}

// ModeratePostRequest is the PATCH /posts/:id/moderation payload.
type ModeratePostRequest struct {
	Status models.PostStatus `json:"status" validate:"required,oneof=visible hidden deleted"`
	Reason string            `json:"reason,omitempty" validate:"max=500"`
}
