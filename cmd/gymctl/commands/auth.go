package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"alcyxob/gym-membership/internal/directory"
	"alcyxob/gym-membership/internal/session"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Long: `Sign in with an owner or staff account. The token is saved to the
session file (or Redis when redis_addr is configured) for later commands.
Without --password the password is read from standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.init(ctx); err != nil {
				return err
			}
			if password == "" {
				fmt.Fprint(out(cmd), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			res, err := a.client.Login(ctx, email, password)
			if err != nil {
				return err
			}
			err = a.store.Set(ctx, session.Session{
				Token:     res.Token,
				ExpiresAt: res.ExpiresAt,
				User: session.Profile{
					ID:      res.User.ID,
					Name:    res.User.Name,
					Email:   res.User.Email,
					Role:    res.User.Role,
					GymName: res.User.GymName,
				},
			})
			if err != nil {
				return fmt.Errorf("signed in but could not save the session: %w", err)
			}
			printSuccess(out(cmd), "Signed in as %s (%s)", res.User.Name, res.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the token and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.init(ctx); err != nil {
				return err
			}
			if _, err := a.store.Get(); errors.Is(err, session.ErrNoSession) {
				printWarning(out(cmd), "Not signed in")
				return nil
			}
			// An already-expired token is fine, the local copy goes either way.
			if err := a.client.Logout(ctx); err != nil && !errors.Is(err, directory.ErrUnauthorized) {
				printWarning(out(cmd), "Could not revoke the token on the server: %v", err)
			}
			if err := a.store.Clear(ctx); err != nil {
				return err
			}
			printSuccess(out(cmd), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(cmd.Context()); err != nil {
				return err
			}
			sess, err := a.requireSession()
			if err != nil {
				return err
			}
			w := out(cmd)
			fmt.Fprintf(w, "%s <%s>\n", sess.User.Name, sess.User.Email)
			fmt.Fprintf(w, "role:    %s\n", sess.User.Role)
			if sess.User.GymName != "" {
				fmt.Fprintf(w, "gym:     %s\n", sess.User.GymName)
			}
			fmt.Fprintf(w, "server:  %s\n", a.cfg.BaseURL)
			return nil
		},
	}
}
