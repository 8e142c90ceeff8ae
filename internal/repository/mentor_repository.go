package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/deep-platform/deep-api/internal/models"
)

// MentorRepository reads and seeds mentor profiles.
type MentorRepository struct {
	db *sqlx.DB
}

// NewMentorRepository constructs the repository.
func NewMentorRepository(db *sqlx.DB) *MentorRepository {
	return &MentorRepository{db: db}
}

// GetByID fetches a mentor profile. sql.ErrNoRows is returned unwrapped.
func (r *MentorRepository) GetByID(ctx context.Context, id string) (*models.MentorProfile, error) {
	const query = `SELECT id, display_name, hourly_rate, timezone, availability, created_at, updated_at
	FROM mentor_profiles WHERE id = $1`
	var mentor models.MentorProfile
	if err := r.db.GetContext(ctx, &mentor, query, id); err != nil {
		return nil, err
	}
	return &mentor, nil
}

// Upsert inserts or replaces a mentor profile.
func (r *MentorRepository) Upsert(ctx context.Context, mentor *models.MentorProfile) error {
	now := time.Now().UTC()
	if mentor.CreatedAt.IsZero() {
		mentor.CreatedAt = now
	}
	mentor.UpdatedAt = now
	if mentor.Timezone == "" {
		mentor.Timezone = "UTC"
	}
	const query = `INSERT INTO mentor_profiles (id, display_name, hourly_rate, timezone, availability, created_at, updated_at)
	VALUES (:id, :display_name, :hourly_rate, :timezone, :availability, :created_at, :updated_at)
	ON CONFLICT (id) DO UPDATE SET
		display_name = EXCLUDED.display_name,
		hourly_rate = EXCLUDED.hourly_rate,
		timezone = EXCLUDED.timezone,
		availability = EXCLUDED.availability,
		updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, mentor); err != nil {
		return fmt.Errorf("upsert mentor profile: %w", err)
	}
	return nil
}
