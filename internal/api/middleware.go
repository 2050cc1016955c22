package api

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/service"
)

// Context keys set by AuthMiddleware and RequestID.
const (
	ContextUserIDKey    = "userID"
	ContextUserRoleKey  = "userRole"
	ContextClaimsKey    = "claims"
	ContextRequestIDKey = "requestID"

	requestIDHeader = "X-Request-ID"
)

// RequestID tags every request with an ID, reusing the caller's header
// when present, and logs the request once it completes.
func RequestID(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		logger.Info("request",
			"id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// AuthMiddleware validates the bearer token through the auth service, so
// revoked tokens are rejected as well as expired ones.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := authService.ParseToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenRevoked):
				abortWithError(c, http.StatusUnauthorized, "Token has been revoked")
			case errors.Is(err, service.ErrInvalidToken):
				abortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			default:
				abortWithError(c, http.StatusInternalServerError, "Could not verify token")
			}
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserRoleKey, claims.Role)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware must run after AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := getUserRoleFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if !slices.Contains(allowedRoles, role) {
			abortWithError(c, http.StatusForbidden, "Access denied: role '"+string(role)+"' does not have permission")
			return
		}
		c.Next()
	}
}

func getUserIDFromContext(c *gin.Context) (primitive.ObjectID, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return primitive.NilObjectID, errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid user ID type in context")
	}
	return primitive.ObjectIDFromHex(idStr)
}

func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}

func getClaimsFromContext(c *gin.Context) (*service.Claims, bool) {
	raw, exists := c.Get(ContextClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := raw.(*service.Claims)
	return claims, ok
}

// pathObjectID parses an ObjectID route parameter, writing a 400 on failure.
func pathObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+param+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}
