package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/deep-platform/deep-api/internal/models"
	appErrors "github.com/deep-platform/deep-api/pkg/errors"
)

// IdentityConfig holds the shared secret and expected claims of caller tokens.
type IdentityConfig struct {
	Secret   string
	Issuer   string
	Audience []string
	TTL      time.Duration
}

// IdentityService validates HS256 access tokens issued by the identity provider.
// Issue exists for operators and tests.
type IdentityService struct {
	cfg IdentityConfig
	now func() time.Time
}

// NewIdentityService constructs the service.
func NewIdentityService(cfg IdentityConfig) *IdentityService {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &IdentityService{cfg: cfg, now: time.Now}
}

// ValidateToken parses and verifies a bearer token.
func (s *IdentityService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if len(s.cfg.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.Identity() == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if role, ok := models.ParseRole(string(claims.Role)); ok {
		claims.Role = role
	} else {
		claims.Role = models.RoleViewer
	}
	return claims, nil
}

// Issue signs a token for userID with role.
func (s *IdentityService) Issue(userID string, role models.Role) (string, time.Time, error) {
	if strings.TrimSpace(userID) == "" {
		return "", time.Time{}, fmt.Errorf("user id required")
	}
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("unknown role %q", role)
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.cfg.TTL)
	claims := &models.JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   userID,
			Audience:  s.cfg.Audience,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
