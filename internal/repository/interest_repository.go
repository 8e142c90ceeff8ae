package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/deep-platform/deep-api/internal/models"
)

// InterestRepository reads user interest snapshots.
type InterestRepository struct {
	db *sqlx.DB
}

// NewInterestRepository constructs the repository.
func NewInterestRepository(db *sqlx.DB) *InterestRepository {
	return &InterestRepository{db: db}
}

// GetByUserID returns the interest row; sql.ErrNoRows when the user declared none.
func (r *InterestRepository) GetByUserID(ctx context.Context, userID string) (*models.UserInterest, error) {
	const query = `SELECT user_id, tags, categories, updated_at FROM user_interests WHERE user_id = $1`
	var interest models.UserInterest
	if err := r.db.GetContext(ctx, &interest, query, userID); err != nil {
		return nil, err
	}
	return &interest, nil
}

// Upsert replaces a user's interests. Used by seeding.
func (r *InterestRepository) Upsert(ctx context.Context, interest *models.UserInterest) error {
	interest.UpdatedAt = time.Now().UTC()
	if interest.Tags == nil {
		interest.Tags = []string{}
	}
	if interest.Categories == nil {
		interest.Categories = []string{}
	}
	const query = `INSERT INTO user_interests (user_id, tags, categories, updated_at)
	VALUES (:user_id, :tags, :categories, :updated_at)
	ON CONFLICT (user_id) DO UPDATE SET tags = EXCLUDED.tags, categories = EXCLUDED.categories, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, interest); err != nil {
		return fmt.Errorf("upsert user interests: %w", err)
	}
	return nil
}
