package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/deep-platform/deep-api/internal/models"
)

// ErrSlotTaken is returned when the partial unique index on (mentor_id, scheduled_day) rejects an insert.
var ErrSlotTaken = errors.New("mentor already has a scheduled session that day")

var sessionColumns = []string{
	"id", "mentor_id", "learner_id", "learner_name", "scheduled_at", "duration_minutes",
	"topic", "price", "status", "feedback", "rating", "notes", "created_at", "updated_at",
}

// SessionRepository persists mentorship sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session row.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = session.CreatedAt
	const query = `INSERT INTO sessions
	(id, mentor_id, learner_id, learner_name, scheduled_at, scheduled_day, duration_minutes, topic, price, status, created_at, updated_at)
	VALUES (:id, :mentor_id, :learner_id, :learner_name, :scheduled_at, :scheduled_day, :duration_minutes, :topic, :price, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetByID fetches a session by identifier.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query, args, err := psql.Select(sessionColumns...).From("sessions").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session query: %w", err)
	}
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, args...); err != nil {
		return nil, err
	}
	return &session, nil
}

// HasScheduledOnDay reports whether the mentor already has a scheduled session on day (YYYY-MM-DD).
func (r *SessionRepository) HasScheduledOnDay(ctx context.Context, mentorID, day string) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM sessions WHERE mentor_id = $1 AND scheduled_day = $2 AND status = 'scheduled'
	)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, mentorID, day); err != nil {
		return false, fmt.Errorf("check scheduled sessions: %w", err)
	}
	return exists, nil
}

// UpdateStatus applies a transition only if the row still has FromStatus.
// It returns sql.ErrNoRows when the compare-and-set did not match.
func (r *SessionRepository) UpdateStatus(ctx context.Context, update models.SessionUpdate) error {
	if update.UpdatedAt.IsZero() {
		update.UpdatedAt = time.Now().UTC()
	}
	const query = `UPDATE sessions SET
		status = :to_status,
		feedback = COALESCE(:feedback, feedback),
		rating = COALESCE(:rating, rating),
		notes = COALESCE(:notes, notes),
		updated_at = :updated_at
	WHERE id = :id AND status = :from_status`
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":          update.ID,
		"from_status": update.FromStatus,
		"to_status":   update.ToStatus,
		"feedback":    update.Feedback,
		"rating":      update.Rating,
		"notes":       update.Notes,
		"updated_at":  update.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check session update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns sessions for one side of the booking, earliest first.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	builder := psql.Select(sessionColumns...).From("sessions")
	switch filter.Party {
	case models.SessionPartyMentor:
		builder = builder.Where(sq.Eq{"mentor_id": filter.UserID})
	case models.SessionPartyLearner:
		builder = builder.Where(sq.Eq{"learner_id": filter.UserID})
	default:
		builder = builder.Where(sq.Or{sq.Eq{"mentor_id": filter.UserID}, sq.Eq{"learner_id": filter.UserID}})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.From != nil {
		builder = builder.Where(sq.GtOrEq{"scheduled_at": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(sq.Lt{"scheduled_at": *filter.To})
	}
	builder = builder.OrderBy("scheduled_at ASC", "id ASC").
		Limit(clampLimit(filter.Limit, 50, 1000)).
		Offset(clampOffset(filter.Offset))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session list: %w", err)
	}
	sessions := make([]models.Session, 0)
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
