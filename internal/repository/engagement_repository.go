package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/deep-platform/deep-api/internal/models"
)

// ErrUnknownPost is returned when an engagement references a post that does not exist.
var ErrUnknownPost = errors.New("engagement references an unknown post")

// EngagementRepository appends and reads engagement events.
type EngagementRepository struct {
	db *sqlx.DB
}

// NewEngagementRepository constructs the repository.
func NewEngagementRepository(db *sqlx.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// Create appends an engagement event.
func (r *EngagementRepository) Create(ctx context.Context, event *models.EngagementEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if len(event.Metadata) == 0 {
		event.Metadata = json.RawMessage(`{}`)
	}
	const query = `INSERT INTO engagement_events (id, user_id, post_id, action, metadata, created_at)
	VALUES (:id, :user_id, :post_id, :action, :metadata, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		if isForeignKeyViolation(err) {
			return ErrUnknownPost
		}
		return fmt.Errorf("create engagement event: %w", err)
	}
	return nil
}

// ListRecent returns the user's newest events since the cutoff with the tags of each post.
func (r *EngagementRepository) ListRecent(ctx context.Context, userID string, since time.Time, limit int) ([]models.RecentEngagement, error) {
	const query = `SELECT e.post_id, e.action, e.created_at, COALESCE(p.tags, '{}') AS tags
	FROM engagement_events e
	LEFT JOIN posts p ON p.id = e.post_id
	WHERE e.user_id = $1 AND e.created_at >= $2
	ORDER BY e.created_at DESC
	LIMIT $3`
	events := make([]models.RecentEngagement, 0)
	if err := r.db.SelectContext(ctx, &events, query, userID, since, clampLimit(limit, 50, 500)); err != nil {
		return nil, fmt.Errorf("list recent engagement: %w", err)
	}
	return events, nil
}
