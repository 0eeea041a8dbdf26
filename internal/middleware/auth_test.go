package middleware

import (
	"net/http"
	"testing"
	"time"

	"meridian/config"
	"meridian/internal/core"
	cErr "meridian/internal/pkg/error"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "auth-test-secret"

func newAuthForTest(issuer, audience string) *Auth {
	conf := &config.Configuration{}
	conf.JWT.Secret = testSecret
	conf.JWT.Issuer = issuer
	conf.JWT.Audience = audience
	return &Auth{config: conf}
}

func signToken(t *testing.T, claims *core.Claims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func baseClaims() *core.Claims {
	return &core.Claims{
		UserID: "user-1",
		Role:   core.RoleOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestParseClaims_valid(t *testing.T) {
	auth := newAuthForTest("", "")
	token := signToken(t, baseClaims(), testSecret)

	claims, err := auth.parseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, core.RoleOperator, claims.Role)
}

func TestParseClaims_wrongSecret(t *testing.T) {
	auth := newAuthForTest("", "")
	token := signToken(t, baseClaims(), "someone-else")

	_, err := auth.parseClaims(token)
	require.Error(t, err)
	appErr := cErr.From(err)
	assert.Equal(t, cErr.INVALID_TOKEN, appErr.ErrorCode())
}

func TestParseClaims_expired(t *testing.T) {
	auth := newAuthForTest("", "")
	claims := baseClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	token := signToken(t, claims, testSecret)

	_, err := auth.parseClaims(token)
	require.Error(t, err)
	appErr := cErr.From(err)
	assert.Equal(t, cErr.TOKEN_EXPIRED, appErr.ErrorCode())
	assert.Equal(t, http.StatusUnauthorized, appErr.HttpCode())
}

func TestParseClaims_issuerVerification(t *testing.T) {
	auth := newAuthForTest("meridian", "")

	claims := baseClaims()
	claims.Issuer = "meridian"
	_, err := auth.parseClaims(signToken(t, claims, testSecret))
	assert.NoError(t, err)

	claims = baseClaims()
	claims.Issuer = "someone-else"
	_, err = auth.parseClaims(signToken(t, claims, testSecret))
	require.Error(t, err)
	assert.Equal(t, cErr.INVALID_TOKEN, cErr.From(err).ErrorCode())

	// token 完全沒帶 issuer 也要拒絕
	_, err = auth.parseClaims(signToken(t, baseClaims(), testSecret))
	assert.Error(t, err)
}

func TestParseClaims_audienceVerification(t *testing.T) {
	auth := newAuthForTest("", "erp-api")

	claims := baseClaims()
	claims.Audience = jwt.ClaimStrings{"erp-api"}
	_, err := auth.parseClaims(signToken(t, claims, testSecret))
	assert.NoError(t, err)

	claims = baseClaims()
	claims.Audience = jwt.ClaimStrings{"other-api"}
	_, err = auth.parseClaims(signToken(t, claims, testSecret))
	require.Error(t, err)
	assert.Equal(t, cErr.INVALID_TOKEN, cErr.From(err).ErrorCode())
}

func TestParseClaims_missingUserID(t *testing.T) {
	auth := newAuthForTest("", "")
	claims := baseClaims()
	claims.UserID = ""

	_, err := auth.parseClaims(signToken(t, claims, testSecret))
	assert.Error(t, err)
}

func TestReadBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := newAuthForTest("", "")

	c := &gin.Context{Request: &http.Request{Header: http.Header{}}}
	c.Request.Header.Set("Authorization", "Bearer abc.def.ghi")
	token, from := auth.readBearerToken(c)
	assert.Equal(t, "abc.def.ghi", token)
	assert.Equal(t, "bearer", from)

	c.Request.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	token, _ = auth.readBearerToken(c)
	assert.Empty(t, token)
}
