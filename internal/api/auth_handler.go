package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type RegisterRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"omitempty,oneof=owner staff"`
	GymName  string      `json:"gymName"`
}

// UserResponse excludes the password hash.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	GymName   string      `json:"gymName,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// Register creates an account. The first account on an empty deployment
// becomes the owner; after that an owner's bearer token is required, so
// the token is checked here rather than by the middleware.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	var caller *service.Claims
	if token, ok := bearerToken(c); ok {
		claims, err := h.authService.ParseToken(c.Request.Context(), token)
		if err != nil {
			writeServiceError(c, h.logger, err)
			return
		}
		caller = claims
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		GymName:  req.GymName,
	}, caller)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      MapUserToResponse(res.User),
	})
}

// Logout revokes the presented token until it would have expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := getClaimsFromContext(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Missing token claims")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		GymName:   user.GymName,
		CreatedAt: user.CreatedAt,
	}
}
