package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"alcyxob/gym-membership/internal/messaging"
	"alcyxob/gym-membership/internal/roster"
)

func newRemindCmd(a *app) *cobra.Command {
	var status, search, template string
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Prepare WhatsApp reminders for members",
		Long: `Render a reminder for each matching member and print the wa.me link
that opens the chat with the message filled in. Lapsed members come first.

Templates may use {name}, {plan}, {expiry}, {days}, {amount} and {status}.
Without --template each member gets the default text for their status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := roster.ParseStatusFilter(status)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			members, err := a.fetchRoster(ctx)
			if err != nil {
				return err
			}

			asOf := a.clock.Now()
			targets := roster.Query(members, asOf, roster.Options{Status: filter, Search: search, Tab: roster.TabMessaging})
			w := out(cmd)
			if len(targets) == 0 {
				printWarning(w, "No members to remind")
				return nil
			}

			wa := messaging.NewWhatsApp(messaging.WriterOpener{W: w}, a.cfg.CountryCode, a.logger(cmd))
			skipped := 0
			for _, m := range targets {
				st := roster.Classify(m, asOf)
				tpl := template
				if strings.TrimSpace(tpl) == "" {
					tpl = messaging.DefaultTemplate(st)
				}
				cyan.Fprintf(w, "%s (%s)\n", m.Name, st)
				if err := wa.Send(ctx, m.Phone, messaging.RenderTemplate(tpl, m, asOf)); err != nil {
					skipped++
					printWarning(w, "skipped: %v", err)
				}
			}
			printSuccess(w, "Prepared %d reminder(s), %d skipped", len(targets)-skipped, skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "All", "status filter")
	cmd.Flags().StringVar(&search, "search", "", "name or phone search")
	cmd.Flags().StringVar(&template, "template", "", "message template")
	return cmd
}
