package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"alcyxob/gym-membership/internal/clock"
	"alcyxob/gym-membership/internal/config"
	"alcyxob/gym-membership/internal/directory"
	"alcyxob/gym-membership/internal/session"
)

var errNotSignedIn = errors.New("not signed in, run 'gymctl login' first")

// app holds what the subcommands share. It is populated lazily by init so
// offline commands such as bmi never touch the config or the network.
type app struct {
	configDir string
	server    string

	// clock overrides the configured time zone's wall clock when set.
	clock clock.Clock

	cfg    config.ClientConfig
	store  *session.Store
	client *directory.Client
	rdb    *redis.Client
}

func (a *app) init(ctx context.Context) error {
	if a.store != nil {
		return nil
	}

	cfg, err := config.LoadClientConfig(a.configDir, filepath.Join(a.configDir, "session.yaml"))
	if err != nil {
		return err
	}
	if a.server != "" {
		cfg.BaseURL = a.server
	}
	a.cfg = cfg

	if a.clock == nil {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
		a.clock = clock.NewSystemClock(loc)
	}

	var backend session.Backend = session.FileBackend{Path: cfg.SessionFile}
	if cfg.RedisAddr != "" {
		a.rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		backend = session.NewRedisBackend(a.rdb, "gymctl", "default")
	}
	store := session.NewStore(backend)
	if err := store.Hydrate(ctx); err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	client, err := directory.NewClient(cfg.BaseURL, store, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		return err
	}
	a.store = store
	a.client = client
	return nil
}

func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}

// logger writes warnings and errors to the command's stderr.
func (a *app) logger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// requireSession returns the saved session, failing when there is none or
// it has expired.
func (a *app) requireSession() (session.Session, error) {
	sess, err := a.store.Get()
	if errors.Is(err, session.ErrNoSession) {
		return sess, errNotSignedIn
	}
	if err != nil {
		return sess, err
	}
	if sess.Expired(a.clock.Now()) {
		return sess, fmt.Errorf("session expired at %s, run 'gymctl login' again", sess.ExpiresAt.Format(time.RFC1123))
	}
	return sess, nil
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".gymctl"
	}
	return filepath.Join(dir, "gymctl")
}

// NewRootCmd builds the gymctl command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "gymctl",
		Short: "gymctl - front-desk client for the gym membership backend",
		Long: `gymctl talks to the gym membership backend: sign in, browse the
roster by status, see the dashboard and prepare WhatsApp renewal reminders.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", defaultConfigDir(), "directory holding gymctl.yaml and the session file")
	root.PersistentFlags().StringVar(&a.server, "server", "", "backend URL, overrides base_url from the config")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newMembersCmd(a),
		newDashboardCmd(a),
		newRemindCmd(a),
		newBMICmd(),
	)
	return root
}

// Execute runs gymctl and prints a failure in red.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
