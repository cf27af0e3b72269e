package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studiobooking/internal/domain"
	"studiobooking/internal/pkg/jwt"
	"studiobooking/internal/pkg/response"
	"studiobooking/internal/policy"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth requires a valid bearer token and stores the caller's id and role
// on the context.
func JWTAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			return
		}

		scheme, token, ok := strings.Cut(h, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}
		if _, ok := domain.ParseUserRole(claims.Role); !ok {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Unknown role in token")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// Actor returns the caller set by JWTAuth; the zero Actor when unauthenticated.
func Actor(c *gin.Context) policy.Actor {
	id, _ := c.Get(ctxUserID)
	uid, _ := id.(uuid.UUID)
	return policy.Actor{UserID: uid, Role: domain.UserRole(c.GetString(ctxRole))}
}
