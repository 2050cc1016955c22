package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"alcyxob/gym-membership/internal/clock"
	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/repository"
)

var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrTokenRevoked         = errors.New("token has been revoked")
	ErrOwnerRequired        = errors.New("only the gym owner can add accounts")
	ErrInvalidRole          = errors.New("role must be owner or staff")
	ErrUserNotFound         = errors.New("user not found")
)

// TokenRevoker remembers tokens that were signed out before they expired.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Claims is the JWT payload.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput carries a new account's details.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role // defaults to staff
	GymName  string
}

// LoginResult is a freshly issued token with the user it belongs to.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	// Register creates an account. The very first account becomes the gym
	// owner; after that only an owner (caller) may add accounts.
	Register(ctx context.Context, in RegisterInput, caller *Claims) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// ParseToken verifies signature, expiry and revocation.
	ParseToken(ctx context.Context, token string) (*Claims, error)
	Logout(ctx context.Context, claims *Claims) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	revoker       TokenRevoker
	clock         clock.Clock
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates the auth service. revoker may be nil, in which case
// Logout is a no-op and tokens stay valid until they expire.
func NewAuthService(userRepo repository.UserRepository, revoker TokenRevoker, clk clock.Clock, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		revoker:       revoker,
		clock:         clk,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput, caller *Claims) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidationFailed)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidationFailed)
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case count == 0:
		in.Role = domain.RoleOwner
	case caller == nil || caller.Role != domain.RoleOwner:
		return nil, ErrOwnerRequired
	case in.Role == "":
		in.Role = domain.RoleStaff
	case in.Role != domain.RoleOwner && in.Role != domain.RoleStaff:
		return nil, ErrInvalidRole
	}

	_, err = s.userRepo.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Role:         in.Role,
		GymName:      in.GymName,
	}
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// Lost a race with another registration of the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password cannot be empty", ErrValidationFailed)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, err
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthenticationFailed
	}

	token, expiresAt, err := s.generateJWT(user)
	if err != nil {
		return nil, ErrTokenGeneration
	}
	user.PasswordHash = ""
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

func (s *authService) Logout(ctx context.Context, claims *Claims) error {
	if s.revoker == nil || claims == nil || claims.ID == "" {
		return nil
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.revoker.Revoke(ctx, claims.ID, expiresAt)
}

func (s *authService) GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) generateJWT(user *domain.User) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.jwtExpiration)
	claims := &Claims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gym-membership",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signedToken, expiresAt, nil
}
