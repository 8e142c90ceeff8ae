package models

import (
	"time"

	"github.com/lib/pq"
)

// PostStatus is the moderation state of a post.
type PostStatus string

const (
	PostStatusVisible PostStatus = "visible"
	PostStatusHidden  PostStatus = "hidden"
	PostStatusDeleted PostStatus = "deleted"
)

// Post is a community post as consumed by the feed.
type Post struct {
	ID            string         `db:"id" json:"id" yaml:"id"`
	AuthorID      string         `db:"author_id" json:"authorId" yaml:"authorId"`
	PostType      string         `db:"post_type" json:"postType" yaml:"postType"`
	Content       string         `db:"content" json:"content" yaml:"content"`
	Tags          pq.StringArray `db:"tags" json:"tags" yaml:"tags"`
	LikesCount    int            `db:"likes_count" json:"likesCount" yaml:"likesCount"`
	CommentsCount int            `db:"comments_count" json:"commentsCount" yaml:"commentsCount"`
	Status        PostStatus     `db:"status" json:"status" yaml:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt" yaml:"createdAt"`
}

// ScoredPost is a post annotated with its personalization score.
type ScoredPost struct {
	Post
	Score float64 `json:"score"`
}

// CandidateFilter selects feed candidates.
type CandidateFilter struct {
	ViewerID     string
	InterestTags []string
	Limit        int
	Offset       int
}
