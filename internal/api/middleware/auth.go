package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/martijn/homedash/internal/api/dto"
	"github.com/martijn/homedash/internal/core/domain"
	"github.com/martijn/homedash/internal/core/service"
)

const (
	AuthHeaderKey  = "Authorization"
	UserContextKey = "user"
)

// AuthMiddleware resolves the bearer token to a live user and stores it in the
// request context. Every failure is a 401 with a Bearer challenge, except
// storage errors, which are a 500.
func AuthMiddleware(authService *service.AuthService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			unauthorized(c, domain.ErrMissingToken.Reason)
			return
		}

		// Check if it's a Bearer token
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			unauthorized(c, "Invalid authorization header format. Expected 'Bearer <token>'")
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			var authErr *domain.AuthError
			if errors.As(err, &authErr) {
				unauthorized(c, authErr.Reason)
				return
			}

			logger.Error("failed to resolve token subject", "error", err, "request_id", GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(http.StatusInternalServerError, "An unexpected error occurred"))
			return
		}

		c.Set(UserContextKey, user)

		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(http.StatusUnauthorized, message))
}

// GetCurrentUser retrieves the authenticated user from context
func GetCurrentUser(c *gin.Context) (*domain.User, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}

	user, ok := value.(*domain.User)
	return user, ok
}
