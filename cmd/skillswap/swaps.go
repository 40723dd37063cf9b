package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakif/skillswap/internal/model"
	"github.com/sakif/skillswap/internal/server"
	"github.com/sakif/skillswap/internal/service"
)

func init() {
	rootCmd.AddCommand(swapCmd)
	swapCmd.AddCommand(
		swapRequestCmd, swapListCmd,
		transitionCmd("accept", "Accept a pending request you received", func(s *server.Services) transition { return s.Ledger.Accept }),
		transitionCmd("reject", "Reject a pending request you received", func(s *server.Services) transition { return s.Ledger.Reject }),
		transitionCmd("complete", "Mark an accepted swap as done", func(s *server.Services) transition { return s.Reputation.Complete }),
		swapCancelCmd, swapRateCmd,
	)
}

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Propose, answer and rate skill swaps",
}

// ── swap request ────────────────────────────────────────────────────────────

var requestFlags struct {
	want, offer, message string
}

var swapRequestCmd = &cobra.Command{
	Use:   "request <user-id>",
	Short: "Ask a user to swap one of their skills for one of yours",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := services()
		if err != nil {
			return err
		}
		me, err := currentUser(cmd, svc)
		if err != nil {
			return err
		}
		swap, err := svc.Ledger.CreateSwapRequest(cmd.Context(), service.NewSwapRequest{
			RequesterID:      me.ID,
			TargetID:         args[0],
			RequestedSkillID: requestFlags.want,
			OfferedSkillID:   requestFlags.offer,
			Message:          requestFlags.message,
		})
		if err != nil {
			return err
		}
		return printSwap(cmd, swap)
	},
}

func init() {
	f := swapRequestCmd.Flags()
	f.StringVar(&requestFlags.want, "want", "", "id of the skill you want from them")
	f.StringVar(&requestFlags.offer, "offer", "", "id of the skill you offer in return")
	f.StringVarP(&requestFlags.message, "message", "m", "", "note for the other user")
	swapRequestCmd.MarkFlagRequired("want")
	swapRequestCmd.MarkFlagRequired("offer")
}

// ── accept / reject / complete ──────────────────────────────────────────────

type transition func(ctx context.Context, id, actorID string) (*model.SwapRequest, error)

// transitionCmd builds one of the lifecycle subcommands. pick selects the
// service method once the services exist.
func transitionCmd(use, short string, pick func(*server.Services) transition) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <swap-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := services()
			if err != nil {
				return err
			}
			me, err := currentUser(cmd, svc)
			if err != nil {
				return err
			}
			swap, err := pick(svc)(cmd.Context(), args[0], me.ID)
			if err != nil {
				return err
			}
			return printSwap(cmd, swap)
		},
	}
}

var swapCancelCmd = &cobra.Command{
	Use:   "cancel <swap-id>",
	Short: "Withdraw a pending request you sent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := services()
		if err != nil {
			return err
		}
		me, err := currentUser(cmd, svc)
		if err != nil {
			return err
		}
		if err := svc.Ledger.Cancel(cmd.Context(), args[0], me.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cancelled %s\n", args[0])
		return nil
	},
}

// ── rate ────────────────────────────────────────────────────────────────────

var rateFeedback string

var swapRateCmd = &cobra.Command{
	Use:   "rate <swap-id> <1-5>",
	Short: "Rate the other party of a completed swap",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stars, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rating must be a whole number from %d to %d", service.MinRating, service.MaxRating)
		}
		svc, err := services()
		if err != nil {
			return err
		}
		me, err := currentUser(cmd, svc)
		if err != nil {
			return err
		}
		swap, err := svc.Reputation.Rate(cmd.Context(), args[0], me.ID, stars, rateFeedback)
		if err != nil {
			return err
		}
		return printSwap(cmd, swap)
	},
}

func init() {
	swapRateCmd.Flags().StringVarP(&rateFeedback, "feedback", "f", "", "a few words about the swap")
}

// ── list ────────────────────────────────────────────────────────────────────

var listBox string

var swapListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your received, sent or completed swaps",
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

		ctx := cmd.Context()
		var requests []model.SwapRequest
		switch listBox {
		case "received":
			requests, err = svc.Ledger.Received(ctx, me.ID)
		case "sent":
			requests, err = svc.Ledger.Sent(ctx, me.ID)
		case "completed":
			requests, err = svc.Ledger.CompletedFor(ctx, me.ID)
		default:
			return fmt.Errorf("unknown box %q (want received, sent or completed)", listBox)
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, requests)
		}

		users, err := svc.Identity.Users(ctx)
		if err != nil {
			return err
		}
		names := make(map[string]string, len(users))
		for _, u := range users {
			names[u.ID] = u.Name
		}
		name := func(id string) string {
			if n, ok := names[id]; ok {
				return n
			}
			return service.UnknownUserName
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tFROM\tTO\tSTATUS\tRATING\tUPDATED")
		for _, r := range requests {
			rating := "-"
			if r.Rating != nil {
				rating = strconv.Itoa(*r.Rating)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, name(r.RequesterID), name(r.TargetID), r.Status, rating,
				r.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

func init() {
	swapListCmd.Flags().StringVar(&listBox, "box", "received", "received, sent or completed")
}

func printSwap(cmd *cobra.Command, r *model.SwapRequest) error {
	if jsonOutput {
		return printJSON(cmd, r)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "swap %s is %s\n", r.ID, r.Status)
	return nil
}
