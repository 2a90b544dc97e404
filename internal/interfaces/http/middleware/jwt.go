package middleware

import (
	"errors"
	"strings"

	"github.com/MuratKus/burbarshop/internal/infrastructure/auth"
	"github.com/MuratKus/burbarshop/internal/infrastructure/logger"
	"github.com/MuratKus/burbarshop/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTSubjectKey = "jwt_subject"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator checks a bearer token
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// AdminAuth requires a valid bearer token with the admin role
func AdminAuth(validator TokenValidator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, log, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			handleAuthError(c, log, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := validator.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, log, err, "Token validation failed")
			return
		}
		if !claims.IsAdmin() {
			log.Warn("Non-admin token rejected",
				zap.String("subject", claims.Subject),
				zap.String("role", claims.Role),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeForbidden),
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Admin access required"))
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTSubjectKey, claims.Subject)

		// Also set in request context for logger
		ctx, _ := logger.WithAdmin(c.Request.Context(), logger.FromContext(c.Request.Context()), claims.Subject)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// handleAuthError answers 401 with a code naming the token problem
func handleAuthError(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code := dto.ErrCodeUnauthorized
	msg := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		msg = "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
		code = dto.ErrCodeTokenInvalid
		msg = "Invalid token"
	}
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, msg))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTSubject retrieves the token subject from context
func GetJWTSubject(c *gin.Context) string {
	return c.GetString(JWTSubjectKey)
}
