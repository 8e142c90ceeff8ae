package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/deep-platform/deep-api/internal/models"
)

// ProfileRepository reads and seeds user profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID fetches a profile. sql.ErrNoRows is returned unwrapped.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	const query = `SELECT id, display_name, role, created_at, updated_at FROM profiles WHERE id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert inserts or updates a profile's display name and role.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	if profile.Role == "" {
		profile.Role = models.RoleViewer
	}
	const query = `INSERT INTO profiles (id, display_name, role, created_at, updated_at)
	VALUES (:id, :display_name, :role, :created_at, :updated_at)
	ON CONFLICT (id) DO UPDATE SET
		display_name = EXCLUDED.display_name,
		role = EXCLUDED.role,
		updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
