package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deep-platform/deep-api/internal/models"
)

func TestMentorRepositoryGetByIDDecodesAvailability(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM mentor_profiles WHERE id = $1")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name", "hourly_rate", "timezone", "availability", "created_at", "updated_at"}).
			AddRow("m1", "Ada", "120.00", "Europe/Berlin", []byte(`{"monday":["09:00"]}`), now, now))

	mentor, err := repo.GetByID(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, 120.0, mentor.HourlyRate)
	assert.True(t, mentor.Availability.Allows("monday", "09:00"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileAndAuditRepositories(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).WillReturnResult(sqlmock.NewResult(0, 1))
	profile := &models.Profile{ID: "u1", DisplayName: "Root"}
	require.NoError(t, NewProfileRepository(db).Upsert(context.Background(), profile))
	assert.Equal(t, models.RoleViewer, profile.Role)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).WillReturnResult(sqlmock.NewResult(0, 1))
	entry := &models.AuditLog{Action: models.AuditActionAdminSeed, Resource: "profile"}
	require.NoError(t, NewAuditRepository(db).Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
