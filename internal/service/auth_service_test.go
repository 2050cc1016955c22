package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/gym-membership/internal/clock"
	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/repository/memory"
	"alcyxob/gym-membership/internal/session"
)

func newAuthFixture(t *testing.T) (AuthService, *memory.Users) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := memory.NewUsers()
	svc := NewAuthService(users, session.NewRevocations(rdb, "test"), clock.NewSystemClock(time.UTC), "test-secret", time.Hour)
	return svc, users
}

func TestRegister_FirstUserBecomesOwner(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	owner, err := svc.Register(ctx, RegisterInput{Name: "Asha", Email: "Asha@Gym.test", Password: "s3cretpass", Role: domain.RoleStaff}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, owner.Role)
	assert.Equal(t, "asha@gym.test", owner.Email)
	assert.Empty(t, owner.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Name: "Bo", Email: "bo@gym.test", Password: "s3cretpass"}, nil)
	assert.ErrorIs(t, err, ErrOwnerRequired)

	staffClaims := &Claims{UserID: "x", Role: domain.RoleStaff}
	_, err = svc.Register(ctx, RegisterInput{Name: "Bo", Email: "bo@gym.test", Password: "s3cretpass"}, staffClaims)
	assert.ErrorIs(t, err, ErrOwnerRequired)

	ownerClaims := &Claims{UserID: owner.ID.Hex(), Role: domain.RoleOwner}
	staff, err := svc.Register(ctx, RegisterInput{Name: "Bo", Email: "bo@gym.test", Password: "s3cretpass"}, ownerClaims)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, staff.Role)

	_, err = svc.Register(ctx, RegisterInput{Name: "Bo2", Email: "BO@gym.test", Password: "s3cretpass"}, ownerClaims)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Register(ctx, RegisterInput{Name: "Cy", Email: "cy@gym.test", Password: "s3cretpass", Role: "admin"}, ownerClaims)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@gym.test", Password: "short"}, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.Register(context.Background(), RegisterInput{Email: "a@gym.test", Password: "longenough"}, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestLogin_IssuesTokenThatLogoutRevokes(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@gym.test", Password: "s3cretpass", GymName: "Iron Den"}, nil)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "asha@gym.test", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, err = svc.Login(ctx, "nobody@gym.test", "s3cretpass")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	res, err := svc.Login(ctx, "asha@gym.test", "s3cretpass")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Iron Den", res.User.GymName)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, 5*time.Second)

	claims, err := svc.ParseToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleOwner, claims.Role)
	assert.NotEmpty(t, claims.ID)

	require.NoError(t, svc.Logout(ctx, claims))
	_, err = svc.ParseToken(ctx, res.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// A second login gets a fresh, unrevoked token.
	again, err := svc.Login(ctx, "asha@gym.test", "s3cretpass")
	require.NoError(t, err)
	_, err = svc.ParseToken(ctx, again.Token)
	assert.NoError(t, err)
}

func TestParseToken_RejectsForeignAndExpiredTokens(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@gym.test", Password: "s3cretpass"}, nil)
	require.NoError(t, err)

	_, err = svc.ParseToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(users, nil, clock.NewSystemClock(time.UTC), "other-secret", time.Hour)
	res, err := other.Login(ctx, "asha@gym.test", "s3cretpass")
	require.NoError(t, err)
	_, err = svc.ParseToken(ctx, res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	past := NewAuthService(users, nil, clock.NewManualClock(time.Now().Add(-3*time.Hour)), "test-secret", time.Hour)
	res, err = past.Login(ctx, "asha@gym.test", "s3cretpass")
	require.NoError(t, err)
	_, err = svc.ParseToken(ctx, res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
