package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// EngagementAction is the kind of interaction a user had with a post.
type EngagementAction string

const (
	EngagementView    EngagementAction = "view"
	EngagementLike    EngagementAction = "like"
	EngagementComment EngagementAction = "comment"
	EngagementShare   EngagementAction = "share"
	EngagementSave    EngagementAction = "save"
)

// EngagementEvent is an append-only interaction record.
type EngagementEvent struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"userId"`
	PostID    string           `db:"post_id" json:"postId"`
	Action    EngagementAction `db:"action" json:"action"`
	Metadata  json.RawMessage  `db:"metadata" json:"metadata,omitempty" swaggertype:"object"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}

// RecentEngagement is an engagement joined with the tags of its post.
type RecentEngagement struct {
	PostID    string           `db:"post_id"`
	Action    EngagementAction `db:"action"`
	CreatedAt time.Time        `db:"created_at"`
	Tags      pq.StringArray   `db:"tags"`
}
