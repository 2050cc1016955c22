package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/gym-membership/internal/api"
	"alcyxob/gym-membership/internal/clock"
	"alcyxob/gym-membership/internal/directory"
	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/repository/memory"
	"alcyxob/gym-membership/internal/service"
	"alcyxob/gym-membership/internal/session"
)

var today = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	color.NoColor = true
}

// newBackend serves the real API over in-memory repositories and registers
// the owner account asha@gym.test.
func newBackend(t *testing.T, seed ...domain.Member) *httptest.Server {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	members := memory.NewMembers(seed...)
	payments := memory.NewPayments()
	clk := clock.NewManualClock(today)
	dir := directory.NewDeduped(members)
	auth := service.NewAuthService(memory.NewUsers(), session.NewRevocations(rdb, "test"), clock.NewSystemClock(time.UTC), "test-secret", time.Hour)

	_, err := auth.Register(context.Background(), service.RegisterInput{Name: "Asha", Email: "asha@gym.test", Password: "s3cretpass", GymName: "Iron Den"}, nil)
	require.NoError(t, err)

	router := gin.New()
	api.SetupRoutes(router, api.Services{
		Auth:      auth,
		Members:   service.NewMemberService(members, payments, dir, nil, clk, logger),
		Payments:  service.NewPaymentService(members, payments, clk, logger),
		Dashboard: service.NewDashboardService(dir, clk),
		Broadcast: service.NewBroadcastService(dir, clk, service.Templates{}, "91", logger),
		Exercises: service.NewExerciseService(memory.NewExercises()),
	}, logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type cli struct {
	server    string
	configDir string
}

func (c cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(&app{clock: clock.NewManualClock(today)})
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append(args, "--config-dir", c.configDir, "--server", c.server))
	err := root.Execute()
	return buf.String(), err
}

func sampleRoster() []domain.Member {
	return []domain.Member{
		{Name: "Ravi", Phone: "98765 43210", Plan: "Monthly", ExpiryDate: "2025-04-30", JoiningDate: "2025-03-02", Amount: 800},
		{Name: "Anita", Phone: "09811122233", Plan: "Monthly", ExpiryDate: "2025-03-07", Amount: 1500},
		{Name: "Rahul", Phone: "12345", Plan: "Yearly", ExpiryDate: "2025-03-12", Amount: 8000},
	}
}

func TestLoginSavesSessionFile(t *testing.T) {
	c := cli{server: newBackend(t).URL, configDir: t.TempDir()}

	_, err := c.run(t, "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)

	_, err = c.run(t, "login", "--email", "asha@gym.test", "--password", "wrong-pass")
	assert.ErrorIs(t, err, directory.ErrUnauthorized)

	outText, err := c.run(t, "login", "--email", "asha@gym.test", "--password", "s3cretpass")
	require.NoError(t, err)
	assert.Contains(t, outText, "Signed in as Asha (owner)")

	info, err := os.Stat(filepath.Join(c.configDir, "session.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	outText, err = c.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, outText, "asha@gym.test")
	assert.Contains(t, outText, "Iron Den")

	outText, err = c.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, outText, "Signed out")
	_, err = os.Stat(filepath.Join(c.configDir, "session.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestMembersAndDashboard(t *testing.T) {
	c := cli{server: newBackend(t, sampleRoster()...).URL, configDir: t.TempDir()}
	_, err := c.run(t, "members")
	assert.ErrorIs(t, err, errNotSignedIn)

	_, err = c.run(t, "login", "--email", "asha@gym.test", "--password", "s3cretpass")
	require.NoError(t, err)

	outText, err := c.run(t, "members")
	require.NoError(t, err)
	assert.Contains(t, outText, "3 of 3 member(s)")
	assert.Less(t, strings.Index(outText, "Ravi"), strings.Index(outText, "Anita"), "members tab keeps roster order")

	outText, err = c.run(t, "members", "--status", "expired")
	require.NoError(t, err)
	assert.Contains(t, outText, "Anita")
	assert.NotContains(t, outText, "Ravi")
	assert.Contains(t, outText, "1 of 3 member(s)")

	outText, err = c.run(t, "members", "--tab", "messaging", "--search", "98111")
	require.NoError(t, err)
	assert.Contains(t, outText, "Anita")
	assert.Contains(t, outText, "1 of 3")

	_, err = c.run(t, "members", "--status", "gold")
	assert.Error(t, err)

	outText, err = c.run(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, outText, "Members:        3")
	assert.Contains(t, outText, "Expired:        1")
	assert.Contains(t, outText, "Fees on roster: 10300")
	assert.Contains(t, outText, "Rahul  2 day(s) left")
}

func TestRemindPrintsWebLinks(t *testing.T) {
	c := cli{server: newBackend(t, sampleRoster()...).URL, configDir: t.TempDir()}
	_, err := c.run(t, "login", "--email", "asha@gym.test", "--password", "s3cretpass")
	require.NoError(t, err)

	outText, err := c.run(t, "remind")
	require.NoError(t, err)
	assert.Contains(t, outText, "https://wa.me/919811122233?text=")
	assert.Contains(t, outText, "https://wa.me/919876543210?text=")
	assert.Contains(t, outText, "Prepared 2 reminder(s), 1 skipped")
	assert.Less(t, strings.Index(outText, "Anita"), strings.Index(outText, "Ravi"), "lapsed members first")

	outText, err = c.run(t, "remind", "--status", "Expiring Soon", "--template", "Hi {name}")
	require.NoError(t, err)
	assert.Contains(t, outText, "Rahul")
	assert.Contains(t, outText, "Prepared 0 reminder(s), 1 skipped")
}

func TestBMIIsOffline(t *testing.T) {
	c := cli{server: "http://127.0.0.1:1", configDir: t.TempDir()}
	outText, err := c.run(t, "bmi", "--weight", "70", "--height", "175")
	require.NoError(t, err)
	assert.Equal(t, "BMI 22.9: Normal\n", outText)

	_, err = c.run(t, "bmi", "--weight", "70")
	assert.Error(t, err)
}

func TestRootShowsHelp(t *testing.T) {
	c := cli{server: "http://127.0.0.1:1", configDir: t.TempDir()}
	outText, err := c.run(t)
	require.NoError(t, err)
	assert.Contains(t, outText, "Usage:")
	assert.Contains(t, outText, "remind")
}
