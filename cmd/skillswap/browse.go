package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakif/skillswap/internal/apperror"
	"github.com/sakif/skillswap/internal/match"
	"github.com/sakif/skillswap/internal/model"
	"github.com/sakif/skillswap/internal/service"
)

func init() {
	rootCmd.AddCommand(usersCmd, browseCmd, adminCmd)
	adminCmd.AddCommand(adminStatsCmd)
}

var usersCmd = &cobra.Command{
	Use:   "users [user-id]",
	Short: "List the directory, or show one user",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := services()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			user, _, err := svc.Identity.ResolveUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, user)
			}
			printProfile(cmd, &user)
			return nil
		}

		users, err := svc.Identity.Users(cmd.Context())
		if err != nil {
			return err
		}
		return printUsers(cmd, users)
	},
}

var browseFlags match.Filter

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Find public users to swap with",
	Long: `browse lists public users other than you. All filters are optional
and every given filter must match:

  --text      case-insensitive match on name or offered skills
  --category  category of at least one offered skill
  --location  exact location`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := services()
		if err != nil {
			return err
		}
		current, err := svc.Identity.CurrentUser(cmd.Context())
		if err != nil {
			return err
		}
		users, err := svc.Identity.Users(cmd.Context())
		if err != nil {
			return err
		}
		return printUsers(cmd, match.FindCandidates(current, users, browseFlags))
	},
}

func init() {
	f := browseCmd.Flags()
	f.StringVarP(&browseFlags.Text, "text", "t", "", "search text")
	f.StringVar(&browseFlags.Category, "category", "", "one of: "+strings.Join(match.Categories, ", "))
	f.StringVar(&browseFlags.Location, "location", "", "exact location")
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative views (admin role only)",
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count users and swap requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := services()
		if err != nil {
			return err
		}
		me, err := currentUser(cmd, svc)
		if err != nil {
			return err
		}
		if !me.IsAdmin() {
			return apperror.Forbidden("admin role required")
		}

		o, err := service.BuildOverview(cmd.Context(), svc.Identity, svc.Ledger)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, o)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "users\t%d\n", o.Users)
		fmt.Fprintf(tw, "public users\t%d\n", o.PublicUsers)
		fmt.Fprintf(tw, "swaps\t%d\n", o.Swaps.Total)
		fmt.Fprintf(tw, "  pending\t%d\n", o.Swaps.Pending)
		fmt.Fprintf(tw, "  accepted\t%d\n", o.Swaps.Accepted)
		fmt.Fprintf(tw, "  rejected\t%d\n", o.Swaps.Rejected)
		fmt.Fprintf(tw, "  completed\t%d\n", o.Swaps.Completed)
		return tw.Flush()
	},
}

func printUsers(cmd *cobra.Command, users []model.User) error {
	if jsonOutput {
		return printJSON(cmd, users)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tRATING\tOFFERS")
	for _, u := range users {
		offers := make([]string, 0, len(u.SkillsOffered))
		for _, s := range u.SkillsOffered {
			offers = append(offers, s.Name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\n", u.ID, u.Name, u.Location, u.Rating, strings.Join(offers, ", "))
	}
	return tw.Flush()
}
