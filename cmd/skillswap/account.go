package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/skillswap/internal/match"
	"github.com/sakif/skillswap/internal/model"
	"github.com/sakif/skillswap/internal/service"
)

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, profileCmd, skillCmd)
	profileCmd.AddCommand(profileSetCmd)
	skillCmd.AddCommand(skillAddCmd, skillRemoveCmd)
}

// ── login / logout / whoami ─────────────────────────────────────────────────

var loginFlags struct {
	id, name, email, location string
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as an existing user (--id) or create a new profile (--name)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := services()
		if err != nil {
			return err
		}
		res, err := svc.Sessions.Login(cmd.Context(), service.LoginInput{
			UserID:   loginFlags.id,
			Name:     loginFlags.name,
			Email:    loginFlags.email,
			Location: loginFlags.location,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, map[string]any{"user": res.User, "token": res.Token})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", res.User.Name, res.User.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "API token: %s\n", res.Token)
		return nil
	},
}

func init() {
	f := loginCmd.Flags()
	f.StringVar(&loginFlags.id, "id", "", "existing user id")
	f.StringVar(&loginFlags.name, "name", "", "display name for a new profile")
	f.StringVar(&loginFlags.email, "email", "", "email for a new profile")
	f.StringVar(&loginFlags.location, "location", "", "location for a new profile")
	loginCmd.MarkFlagsMutuallyExclusive("id", "name")
	loginCmd.MarkFlagsOneRequired("id", "name")
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := services()
		if err != nil {
			return err
		}
		if err := svc.Sessions.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user's profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := services()
		if err != nil {
			return err
		}
		user, err := currentUser(cmd, svc)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, user)
		}
		dash, err := service.BuildDashboard(cmd.Context(), svc.Identity, svc.Ledger, user.ID)
		if err != nil {
			return err
		}
		printProfile(cmd, user)
		printDashboard(cmd, dash)
		return nil
	},
}

// ── profile ─────────────────────────────────────────────────────────────────

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Edit the logged-in user's profile",
}

var profileFlags struct {
	name, email, location, photo string
	availability                 []string
	public                       bool
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change profile fields; flags not given are left alone",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := services()
		if err != nil {
			return err
		}
		user, err := currentUser(cmd, svc)
		if err != nil {
			return err
		}

		// Flags().Changed tells "not given" apart from "given as empty".
		f := cmd.Flags()
		if f.Changed("name") {
			user.Name = profileFlags.name
		}
		if f.Changed("email") {
			user.Email = profileFlags.email
		}
		if f.Changed("location") {
			user.Location = profileFlags.location
		}
		if f.Changed("photo") {
			user.ProfilePhoto = profileFlags.photo
		}
		if f.Changed("availability") {
			for _, slot := range profileFlags.availability {
				if !slices.Contains(match.Availability, slot) {
					return fmt.Errorf("unknown availability %q (want one of: %s)", slot, strings.Join(match.Availability, ", "))
				}
			}
			user.Availability = profileFlags.availability
		}
		if f.Changed("public") {
			user.IsPublic = profileFlags.public
		}

		if err := svc.Identity.UpdateUser(cmd.Context(), *user); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, user)
		}
		printProfile(cmd, user)
		return nil
	},
}

func init() {
	f := profileSetCmd.Flags()
	f.StringVar(&profileFlags.name, "name", "", "display name")
	f.StringVar(&profileFlags.email, "email", "", "email address")
	f.StringVar(&profileFlags.location, "location", "", "location")
	f.StringVar(&profileFlags.photo, "photo", "", "profile photo URL")
	f.StringSliceVar(&profileFlags.availability, "availability", nil, "availability slots, comma separated")
	f.BoolVar(&profileFlags.public, "public", true, "show the profile in discovery")
}

// ── skill ───────────────────────────────────────────────────────────────────

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Manage the skills you offer and want",
}

var skillFlags struct {
	description, category string
}

var skillAddCmd = &cobra.Command{
	Use:   "add <offered|wanted> <name>",
	Short: "Add a skill to one of your lists",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := services()
		if err != nil {
			return err
		}
		if _, err := currentUser(cmd, svc); err != nil {
			return err
		}
		user, err := svc.Identity.AddSkill(cmd.Context(), model.SkillKind(args[0]), model.Skill{
			Name:        args[1],
			Description: skillFlags.description,
			Category:    skillFlags.category,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, user)
		}
		skills := user.Skills(model.SkillKind(args[0]))
		added := skills[len(skills)-1]
		fmt.Fprintf(cmd.OutOrStdout(), "added %s skill %q (%s)\n", args[0], added.Name, added.ID)
		return nil
	},
}

func init() {
	skillAddCmd.Flags().StringVar(&skillFlags.description, "description", "", "what you can teach or want to learn")
	skillAddCmd.Flags().StringVar(&skillFlags.category, "category", "", "one of: "+strings.Join(match.Categories, ", "))
}

var skillRemoveCmd = &cobra.Command{
	Use:     "rm <offered|wanted> <skill-id>",
	Aliases: []string{"remove"},
	Short:   "Remove a skill from one of your lists",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := services()
		if err != nil {
			return err
		}
		if _, err := currentUser(cmd, svc); err != nil {
			return err
		}
		if _, err := svc.Identity.RemoveSkill(cmd.Context(), model.SkillKind(args[0]), args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s skill %s\n", args[0], args[1])
		return nil
	},
}

func printProfile(cmd *cobra.Command, u *model.User) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", u.Name, u.ID)
	fmt.Fprintf(out, "  email:      %s\n", u.Email)
	fmt.Fprintf(out, "  location:   %s\n", u.Location)
	fmt.Fprintf(out, "  public:     %t\n", u.IsPublic)
	fmt.Fprintf(out, "  role:       %s\n", u.Role)
	fmt.Fprintf(out, "  rating:     %.1f (%d swaps)\n", u.Rating, u.SwapsCompleted)
	if len(u.Availability) > 0 {
		fmt.Fprintf(out, "  available:  %s\n", strings.Join(u.Availability, ", "))
	}
	for _, kind := range []model.SkillKind{model.SkillsOffered, model.SkillsWanted} {
		for _, s := range u.Skills(kind) {
			fmt.Fprintf(out, "  %-7s     %s  %s [%s]\n", kind, s.ID, s.Name, s.Category)
		}
	}
}

func printDashboard(cmd *cobra.Command, d service.Dashboard) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "dashboard")
	fmt.Fprintf(out, "  skills offered:    %d\n", d.SkillsOffered)
	fmt.Fprintf(out, "  skills wanted:     %d\n", d.SkillsWanted)
	fmt.Fprintf(out, "  swaps completed:   %d\n", d.SwapsCompleted)
	fmt.Fprintf(out, "  pending requests:  %d\n", d.PendingRequests)
}
