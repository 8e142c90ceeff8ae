package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/deep-platform/deep-api/internal/models"
)

type profileWriter interface {
	Upsert(ctx context.Context, profile *models.Profile) error
}

type mentorWriter interface {
	Upsert(ctx context.Context, mentor *models.MentorProfile) error
}

type postWriter interface {
	Upsert(ctx context.Context, post *models.Post) error
}

type interestWriter interface {
	Upsert(ctx context.Context, interest *models.UserInterest) error
}

// Fixtures is the YAML document accepted by the seed command.
type Fixtures struct {
	Profiles  []models.Profile       `yaml:"profiles"`
	Mentors   []models.MentorProfile `yaml:"mentors"`
	Interests []models.UserInterest  `yaml:"interests"`
	Posts     []models.Post          `yaml:"posts"`
}

// SeedSummary counts rows written by Apply.
type SeedSummary struct {
	Profiles  int
	Mentors   int
	Interests int
	Posts     int
}

// LoadFixtures decodes and checks a fixtures document; unknown keys are rejected.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fixtures Fixtures
	if err := dec.Decode(&fixtures); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	for i := range fixtures.Profiles {
		p := &fixtures.Profiles[i]
		if _, err := uuid.Parse(p.ID); err != nil {
			return nil, fmt.Errorf("profiles[%d]: invalid id %q", i, p.ID)
		}
		if p.Role == "" {
			p.Role = models.RoleViewer
		}
		role, ok := models.ParseRole(string(p.Role))
		if !ok {
			return nil, fmt.Errorf("profiles[%d]: unknown role %q", i, p.Role)
		}
		p.Role = role
	}
	for i, m := range fixtures.Mentors {
		if _, err := uuid.Parse(m.ID); err != nil {
			return nil, fmt.Errorf("mentors[%d]: invalid id %q", i, m.ID)
		}
		if m.HourlyRate < 0 {
			return nil, fmt.Errorf("mentors[%d]: hourlyRate must not be negative", i)
		}
	}
	for i, p := range fixtures.Posts {
		if _, err := uuid.Parse(p.AuthorID); err != nil {
			return nil, fmt.Errorf("posts[%d]: invalid authorId %q", i, p.AuthorID)
		}
	}
	return &fixtures, nil
}

// SeedService loads fixtures and bootstraps administrators.
type SeedService struct {
	profiles  profileWriter
	mentors   mentorWriter
	interests interestWriter
	posts     postWriter
	audit     auditSink
	logger    *zap.Logger
}

// NewSeedService constructs the service.
func NewSeedService(profiles profileWriter, mentors mentorWriter, interests interestWriter, posts postWriter, audit auditSink, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{profiles: profiles, mentors: mentors, interests: interests, posts: posts, audit: audit, logger: logger}
}

// Apply upserts fixtures in dependency order. Mentors without a listed profile get one.
func (s *SeedService) Apply(ctx context.Context, fixtures *Fixtures) (SeedSummary, error) {
	var summary SeedSummary
	listed := make(map[string]struct{}, len(fixtures.Profiles))
	for i := range fixtures.Profiles {
		if err := s.profiles.Upsert(ctx, &fixtures.Profiles[i]); err != nil {
			return summary, err
		}
		listed[fixtures.Profiles[i].ID] = struct{}{}
		summary.Profiles++
	}
	for i := range fixtures.Mentors {
		mentor := &fixtures.Mentors[i]
		if _, ok := listed[mentor.ID]; !ok {
			if err := s.profiles.Upsert(ctx, &models.Profile{ID: mentor.ID, DisplayName: mentor.DisplayName, Role: models.RoleViewer}); err != nil {
				return summary, err
			}
			summary.Profiles++
		}
		if err := s.mentors.Upsert(ctx, mentor); err != nil {
			return summary, err
		}
		summary.Mentors++
	}
	for i := range fixtures.Interests {
		if err := s.interests.Upsert(ctx, &fixtures.Interests[i]); err != nil {
			return summary, err
		}
		summary.Interests++
	}
	for i := range fixtures.Posts {
		if err := s.posts.Upsert(ctx, &fixtures.Posts[i]); err != nil {
			return summary, err
		}
		summary.Posts++
	}
	s.logger.Info("fixtures applied",
		zap.Int("profiles", summary.Profiles),
		zap.Int("mentors", summary.Mentors),
		zap.Int("interests", summary.Interests),
		zap.Int("posts", summary.Posts),
	)
	return summary, nil
}

// SeedAdmin upserts an administrator profile. The audit entry is best-effort.
func (s *SeedService) SeedAdmin(ctx context.Context, id, displayName string, role models.Role) (*models.Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid id %q", id)
	}
	if role == "" {
		role = models.RoleAdmin
	}
	if !role.HasAtLeast(models.RoleModerator) {
		return nil, fmt.Errorf("role %q cannot administer the platform", role)
	}
	profile := &models.Profile{ID: id, DisplayName: displayName, Role: role}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	if s.audit != nil {
		payload, _ := json.Marshal(profile)
		s.audit.Record(ctx, &models.AuditLog{
			UserID:     &profile.ID,
			Action:     models.AuditActionAdminSeed,
			Resource:   "profile",
			ResourceID: &profile.ID,
			NewValues:  payload,
			UserAgent:  "deepctl",
		})
	}
	return profile, nil
}
