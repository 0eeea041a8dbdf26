package middleware

import (
	"errors"
	"strings"

	"meridian/config"
	"meridian/internal/core"
	cErr "meridian/internal/pkg/error"
	"meridian/internal/pkg/response"
	"meridian/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

type Auth struct {
	logger *zap.Logger
	trace  *telemetry.Trace
	config *config.Configuration
}

func NewAuth(
	logger *zap.Logger,
	trace *telemetry.Trace,
	config *config.Configuration,
) *Auth {
	return &Auth{
		logger: logger,
		trace:  trace,
		config: config,
	}
}

func (middleware *Auth) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanAuthMiddleware))
		var cause error = nil
		tokenString, from := middleware.readBearerToken(c)
		meta := core.TraceAuthMeta{Where: from}

		if tokenString == "" {
			meta.Status = "missing_token"
			middleware.trace.ApplyTraceAttributes(span, meta)
			cause = cErr.Unauthorized("missing bearer token")
			response.AbortWithError(c, cause)
			end(cause)
			return
		}

		claims, err := middleware.parseClaims(tokenString)
		if err != nil {
			meta.Status = "invalid_token"
			middleware.trace.ApplyTraceAttributes(span, meta)
			response.AbortWithError(c, err)
			end(err)
			return
		}

		meta.UserID = claims.UserID
		meta.Role = string(claims.Role)
		meta.Status = "success"
		middleware.trace.ApplyTraceAttributes(span, meta)
		end(nil)

		// 下游（permission middleware、handler）從這裡拿身分
		c.Set(core.ContextClaimsKey, claims)
		c.Next()
	}
}

func (middleware *Auth) parseClaims(tokenString string) (*core.Claims, error) {
	claims := &core.Claims{}
	token, parseError := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(middleware.config.JWT.Secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if parseError != nil {
		if errors.Is(parseError, jwt.ErrTokenExpired) {
			return nil, cErr.TokenExpired("token expired")
		}
		return nil, cErr.InvalidToken("invalid token")
	}
	if !token.Valid || claims.UserID == "" {
		return nil, cErr.InvalidToken("invalid token")
	}
	// issuer/audience 設定為空字串時不驗證
	if issuer := middleware.config.JWT.Issuer; issuer != "" {
		if !claims.RegisteredClaims.VerifyIssuer(issuer, true) {
			return nil, cErr.InvalidToken("invalid issuer")
		}
	}
	if audience := middleware.config.JWT.Audience; audience != "" {
		if !claims.RegisteredClaims.VerifyAudience(audience, true) {
			return nil, cErr.InvalidToken("invalid audience")
		}
	}
	return claims, nil
}

func (middleware *Auth) readBearerToken(c *gin.Context) (token string, from string) {
	if auth := strings.TrimSpace(c.GetHeader("Authorization")); auth != "" {
		if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			return strings.TrimSpace(auth[len("Bearer "):]), "bearer"
		}
	}
	return "", ""
}

// ClaimsFromContext 取出 auth middleware 放進 gin context 的身分，沒驗證過就是 nil
func ClaimsFromContext(c *gin.Context) *core.Claims {
	raw, ok := c.Get(core.ContextClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := raw.(*core.Claims)
	return claims
}
