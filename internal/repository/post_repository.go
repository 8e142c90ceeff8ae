package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/deep-platform/deep-api/internal/models"
)

var postColumns = []string{
	"id", "author_id", "post_type", "content", "tags", "likes_count", "comments_count", "status", "created_at",
}

var moderatedStatuses = []string{string(models.PostStatusHidden), string(models.PostStatusDeleted)}

// PostRepository reads community posts for the feed.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository constructs the repository.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// ListCandidates returns one window of feed candidates, newest first.
// When InterestTags is set only posts overlapping those tags qualify.
func (r *PostRepository) ListCandidates(ctx context.Context, filter models.CandidateFilter) ([]models.Post, error) {
	builder := psql.Select(postColumns...).From("posts").
		Where(sq.NotEq{"author_id": filter.ViewerID}).
		Where(sq.NotEq{"status": moderatedStatuses})
	if len(filter.InterestTags) > 0 {
		builder = builder.Where("tags && ?", pq.Array(filter.InterestTags))
	}
	builder = builder.OrderBy("created_at DESC", "id DESC").
		Limit(clampLimit(filter.Limit, 20, 100)).
		Offset(clampOffset(filter.Offset))

	return r.selectPosts(ctx, builder, "list feed candidates")
}

// FindByID fetches a post regardless of status. sql.ErrNoRows is returned unwrapped.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	query, args, err := psql.Select(postColumns...).From("posts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build post query: %w", err)
	}
	var post models.Post
	if err := r.db.GetContext(ctx, &post, query, args...); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListSimilar returns visible posts sharing the anchor's type or any of its tags, most liked first.
func (r *PostRepository) ListSimilar(ctx context.Context, anchor *models.Post, limit int) ([]models.Post, error) {
	tags := []string(anchor.Tags)
	if tags == nil {
		tags = []string{}
	}
	builder := psql.Select(postColumns...).From("posts").
		Where(sq.NotEq{"id": anchor.ID}).
		Where(sq.Eq{"status": models.PostStatusVisible}).
		Where(sq.Or{
			sq.Eq{"post_type": anchor.PostType},
			sq.Expr("tags && ?", pq.Array(tags)),
		}).
		OrderBy("likes_count DESC", "created_at DESC").
		Limit(clampLimit(limit, 10, 50))

	return r.selectPosts(ctx, builder, "list similar posts")
}

// Search matches visible posts whose content contains term, newest first.
func (r *PostRepository) Search(ctx context.Context, term string, limit, offset int) ([]models.Post, error) {
	builder := psql.Select(postColumns...).From("posts").
		Where(sq.Eq{"status": models.PostStatusVisible}).
		Where(sq.ILike{"content": "%" + escapeLike(term) + "%"}).
		OrderBy("created_at DESC", "id DESC").
		Limit(clampLimit(limit, 20, 100)).
		Offset(clampOffset(offset))

	return r.selectPosts(ctx, builder, "search posts")
}

// UpdateStatus sets the moderation status and returns the previous one.
func (r *PostRepository) UpdateStatus(ctx context.Context, id string, status models.PostStatus) (models.PostStatus, error) {
	const query = `UPDATE posts p SET status = $2, updated_at = $3
	FROM (SELECT id, status FROM posts WHERE id = $1 FOR UPDATE) prev
	WHERE p.id = prev.id
	RETURNING prev.status`
	var previous models.PostStatus
	if err := r.db.GetContext(ctx, &previous, query, id, status, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("update post status: %w", err)
	}
	return previous, nil
}

// Upsert inserts or replaces a post. Used by seeding.
func (r *PostRepository) Upsert(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Status == "" {
		post.Status = models.PostStatusVisible
	}
	if post.PostType == "" {
		post.PostType = "text"
	}
	if post.Tags == nil {
		post.Tags = pq.StringArray{}
	}
	const query = `INSERT INTO posts (id, author_id, post_type, content, tags, likes_count, comments_count, status, created_at, updated_at)
	VALUES (:id, :author_id, :post_type, :content, :tags, :likes_count, :comments_count, :status, :created_at, :created_at)
	ON CONFLICT (id) DO UPDATE SET
		post_type = EXCLUDED.post_type,
		content = EXCLUDED.content,
		tags = EXCLUDED.tags,
		likes_count = EXCLUDED.likes_count,
		comments_count = EXCLUDED.comments_count,
		status = EXCLUDED.status,
		updated_at = now()`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("upsert post: %w", err)
	}
	return nil
}

func (r *PostRepository) selectPosts(ctx context.Context, builder sq.SelectBuilder, op string) ([]models.Post, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	posts := make([]models.Post, 0)
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return posts, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
