package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/waitingboard/api/internal/model"
	"github.com/waitingboard/api/pkg/auth"
	apperrors "github.com/waitingboard/api/pkg/errors"
	"github.com/waitingboard/api/pkg/httputil"
)

// ContextClaims holds the *model.TokenClaims of an authenticated request.
const ContextClaims = "claims"

type AuthMiddleware struct {
	jwtService auth.JWTService
}

func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Authenticate verifies the bearer token and stores its claims in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized("missing authorization header"))
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized("invalid authorization format"))
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized("invalid token"))
			return
		}

		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims set by Authenticate, if any.
func ClaimsFrom(c *gin.Context) (*model.TokenClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*model.TokenClaims)
	return claims, ok
}
