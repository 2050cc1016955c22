package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/roster"
)

// fetchRoster loads every member for the signed-in account.
func (a *app) fetchRoster(ctx context.Context) ([]domain.Member, error) {
	if err := a.init(ctx); err != nil {
		return nil, err
	}
	if _, err := a.requireSession(); err != nil {
		return nil, err
	}
	return a.client.ListMembers(ctx)
}

func newMembersCmd(a *app) *cobra.Command {
	var status, search, tab string
	cmd := &cobra.Command{
		Use:   "members",
		Short: "List members, optionally filtered by status or search text",
		Long: `List the roster with each member's status as of today.

  --status   All, Active, "Expiring Soon" (or expiring) or Expired
  --search   matches names; on the messaging tab also phone digits
  --tab      members (default), dashboard or messaging`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := roster.ParseStatusFilter(status)
			if err != nil {
				return err
			}
			t, err := roster.ParseTab(tab)
			if err != nil {
				return err
			}
			members, err := a.fetchRoster(cmd.Context())
			if err != nil {
				return err
			}

			asOf := a.clock.Now()
			list := roster.Query(members, asOf, roster.Options{Status: filter, Search: search, Tab: t})
			w := out(cmd)
			if len(list) == 0 {
				fmt.Fprintln(w, "No members found.")
				return nil
			}

			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPHONE\tPLAN\tEXPIRY\tDAYS LEFT\tSTATUS")
			for _, m := range list {
				days, ok := roster.DaysLeft(m, asOf)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					m.Name, m.Phone, m.Plan, m.ExpiryDate, daysText(days, ok), statusText(roster.Classify(m, asOf)))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(w, "\n%d of %d member(s)\n", len(list), len(members))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "All", "status filter")
	cmd.Flags().StringVar(&search, "search", "", "search text")
	cmd.Flags().StringVar(&tab, "tab", "members", "which screen's rules to apply")
	return cmd
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show roster counts and who expires this week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := a.fetchRoster(cmd.Context())
			if err != nil {
				return err
			}
			sum := roster.Summarize(members, a.clock.Now())

			w := out(cmd)
			fmt.Fprintf(w, "Members:        %d\n", sum.Total)
			fmt.Fprintf(w, "Active:         %s\n", green.Sprint(sum.Active))
			fmt.Fprintf(w, "Expiring soon:  %s\n", yellow.Sprint(sum.ExpiringSoon))
			fmt.Fprintf(w, "Expired:        %s\n", red.Sprint(sum.Expired))
			fmt.Fprintf(w, "Fees on roster: %s\n", money(sum.TotalFees))
			fmt.Fprintf(w, "New this month: %d\n", sum.NewThisMonth)

			if len(sum.Expiring) == 0 {
				return nil
			}
			fmt.Fprintln(w)
			cyan.Fprintln(w, "Expiring within a week:")
			for _, e := range sum.Expiring {
				fmt.Fprintf(w, "  %s  %d day(s) left  %s\n", e.Member.Name, e.DaysLeft, e.Member.Phone)
			}
			return nil
		},
	}
}
