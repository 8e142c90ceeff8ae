package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deep-platform/deep-api/internal/models"
	appErrors "github.com/deep-platform/deep-api/pkg/errors"
)

func TestIdentityIssueAndValidate(t *testing.T) {
	svc := NewIdentityService(IdentityConfig{Secret: "s3cret", Issuer: "deep-auth", Audience: []string{"deep-api"}, TTL: time.Hour})

	token, expiresAt, err := svc.Issue("user-1", models.RoleModerator)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Identity())
	assert.Equal(t, models.RoleModerator, claims.Role)
}

func TestIdentityRejectsBadTokens(t *testing.T) {
	svc := NewIdentityService(IdentityConfig{Secret: "s3cret", Issuer: "deep-auth"})
	token, _, err := svc.Issue("user-1", models.RoleViewer)
	require.NoError(t, err)

	other := NewIdentityService(IdentityConfig{Secret: "different", Issuer: "deep-auth"})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	wrongIssuer := NewIdentityService(IdentityConfig{Secret: "s3cret", Issuer: "someone-else"})
	_, err = wrongIssuer.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestIdentityFallsBackToSubjectAndViewer(t *testing.T) {
	svc := NewIdentityService(IdentityConfig{Secret: "s3cret"})
	claims := jwt.MapClaims{"sub": "user-9", "role": "wizard", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	parsed, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", parsed.Identity())
	assert.Equal(t, models.RoleViewer, parsed.Role)
}

func TestIdentityRejectsNoneAlgorithm(t *testing.T) {
	svc := NewIdentityService(IdentityConfig{Secret: "s3cret"})
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestIdentityIssueValidatesInput(t *testing.T) {
	svc := NewIdentityService(IdentityConfig{Secret: "s3cret"})
	_, _, err := svc.Issue(" ", models.RoleViewer)
	assert.Error(t, err)
	_, _, err = svc.Issue("user-1", "wizard")
	assert.Error(t, err)
}
