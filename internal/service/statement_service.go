package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/deep-platform/deep-api/internal/dto"
	"github.com/deep-platform/deep-api/internal/models"
	appErrors "github.com/deep-platform/deep-api/pkg/errors"
	"github.com/deep-platform/deep-api/pkg/export"
	"github.com/deep-platform/deep-api/pkg/storage"
)

const (
	maxStatementRange = 366 * 24 * time.Hour
	statementPageSize = 500
)

type statementSessions interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
}

type documentStore interface {
	Save(name string, data []byte) error
	Open(name string) (*os.File, error)
	Sweep(cutoff time.Time) ([]string, error)
}

type downloadSigner interface {
	Sign(owner, path string) (string, time.Time, error)
	Verify(token string) (storage.Grant, error)
}

// StatementConfig tunes statement links and retention.
type StatementConfig struct {
	APIPrefix string
	Retention time.Duration
}

// StatementFile is an opened statement ready to stream.
type StatementFile struct {
	File        *os.File
	Name        string
	ContentType string
}

// StatementService renders mentor earnings statements from completed sessions.
type StatementService struct {
	sessions  statementSessions
	mentors   mentorStore
	store     documentStore
	signer    downloadSigner
	audit     auditSink
	validator *validator.Validate
	logger    *zap.Logger
	cfg       StatementConfig
	now       func() time.Time
}

// NewStatementService constructs a StatementService.
func NewStatementService(sessions statementSessions, mentors mentorStore, store documentStore, signer downloadSigner, audit auditSink, validate *validator.Validate, logger *zap.Logger, cfg StatementConfig) *StatementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	if cfg.Retention <= 0 {
		cfg.Retention = time.Hour
	}
	return &StatementService{
		sessions:  sessions,
		mentors:   mentors,
		store:     store,
		signer:    signer,
		audit:     audit,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Export renders the caller's completed sessions between From and To (inclusive dates).
func (s *StatementService) Export(ctx context.Context, mentorID string, req dto.StatementRequest) (*dto.StatementResponse, error) {
	if mentorID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid statement request")
	}
	from := truncateDay(req.From)
	to := truncateDay(req.To).Add(24 * time.Hour)
	if !to.After(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	if to.Sub(from) > maxStatementRange {
		return nil, appErrors.Clone(appErrors.ErrValidation, "statement range cannot exceed one year")
	}
	format := req.Format
	if format == "" {
		format = "csv"
	}
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported format")
	}

	if !isResourceID(mentorID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only mentors have statements")
	}
	mentor, err := s.mentors.GetByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only mentors have statements")
		}
		return nil, appErrors.Internal(err, "failed to load mentor")
	}

	sessions, err := s.completedSessions(ctx, mentor.ID, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load sessions")
	}

	table, total := statementTable(mentor, sessions, from, to)
	payload, err := renderer.Render(table)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render statement")
	}

	name := path.Join(sanitizeFilename(mentor.ID), fmt.Sprintf("statement_%s_%s_%s.%s",
		from.Format("20060102"), to.Add(-time.Nanosecond).Format("20060102"), s.now().UTC().Format("150405"), renderer.Extension()))
	if err := s.store.Save(name, payload); err != nil {
		return nil, appErrors.Internal(err, "failed to store statement")
	}
	token, expiresAt, err := s.signer.Sign(mentor.ID, name)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign statement link")
	}

	if s.audit != nil {
		s.audit.Record(ctx, &models.AuditLog{
			UserID:   &mentorID,
			Action:   models.AuditActionStatementExport,
			Resource: "statement",
			NewValues: []byte(fmt.Sprintf(`{"from":%q,"to":%q,"format":%q,"sessions":%d}`,
				from.Format("2006-01-02"), to.Add(-time.Nanosecond).Format("2006-01-02"), format, len(sessions))),
		})
	}

	return &dto.StatementResponse{
		URL:       strings.TrimRight(s.cfg.APIPrefix, "/") + "/statements/" + token,
		ExpiresAt: expiresAt,
		Format:    format,
		Sessions:  len(sessions),
		Total:     total,
	}, nil
}

// completedSessions pages through every completed session in [from, to).
func (s *StatementService) completedSessions(ctx context.Context, mentorID string, from, to time.Time) ([]models.Session, error) {
	var sessions []models.Session
	for offset := 0; ; offset += statementPageSize {
		page, err := s.sessions.List(ctx, models.SessionFilter{
			UserID: mentorID,
			Party:  models.SessionPartyMentor,
			Status: models.SessionStatusCompleted,
			From:   &from,
			To:     &to,
			Limit:  statementPageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, page...)
		if len(page) < statementPageSize {
			return sessions, nil
		}
	}
}

// Open verifies a download token and opens the referenced statement.
func (s *StatementService) Open(token string) (*StatementFile, error) {
	grant, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	file, err := s.store.Open(grant.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "statement no longer available")
		}
		return nil, appErrors.Internal(err, "failed to open statement")
	}
	contentType := "application/octet-stream"
	if renderer, err := export.ForFormat(strings.TrimPrefix(path.Ext(grant.Path), ".")); err == nil {
		contentType = renderer.ContentType()
	}
	return &StatementFile{File: file, Name: path.Base(grant.Path), ContentType: contentType}, nil
}

// Cleanup removes statements older than the retention window.
func (s *StatementService) Cleanup() ([]string, error) {
	removed, err := s.store.Sweep(s.now().Add(-s.cfg.Retention))
	if err != nil {
		return removed, err
	}
	if len(removed) > 0 {
		s.logger.Info("statements cleaned up", zap.Int("count", len(removed)))
	}
	return removed, nil
}

func statementTable(mentor *models.MentorProfile, sessions []models.Session, from, to time.Time) (export.Table, float64) {
	rows := make([][]string, 0, len(sessions))
	var total float64
	for _, session := range sessions {
		total += session.Price
		rows = append(rows, []string{
			session.ScheduledAt.UTC().Format("2006-01-02 15:04"),
			session.LearnerName,
			session.Topic,
			strconv.Itoa(session.DurationMinutes),
			strconv.FormatFloat(session.Price, 'f', 2, 64),
		})
	}
	name := mentor.DisplayName
	if name == "" {
		name = mentor.ID
	}
	return export.Table{
		Title:   fmt.Sprintf("Statement for %s, %s to %s", name, from.Format("2006-01-02"), to.Add(-time.Nanosecond).Format("2006-01-02")),
		Columns: []string{"Date (UTC)", "Learner", "Topic", "Minutes", "Price"},
		Rows:    rows,
		Footer:  []string{"Total", "", "", "", strconv.FormatFloat(total, 'f', 2, 64)},
	}, total
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
