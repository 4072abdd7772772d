package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"missionhub/internal/cli"
	"missionhub/pkg/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List submissions waiting for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cli.AuthedClient()
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		page, err := c.ReviewQueue(cmd.Context(), models.SubmissionStatus(status), limit, offset)
		if err != nil {
			return err
		}
		if cli.WantJSON() {
			return cli.PrintJSON(cmd.OutOrStdout(), page)
		}
		cli.RenderReviewQueue(cmd.OutOrStdout(), page)
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <submission-id>",
	Short: "Approve a submission and award points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return review(cmd, args[0], models.StatusApproved)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <submission-id>",
	Short: "Reject a submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return review(cmd, args[0], models.StatusRejected)
	},
}

func review(cmd *cobra.Command, id string, status models.SubmissionStatus) error {
	c, err := cli.AuthedClient()
	if err != nil {
		return err
	}

	req := models.ReviewRequest{Status: status}
	if cmd.Flags().Changed("points") {
		points, _ := cmd.Flags().GetInt("points")
		req.PointsAwarded = &points
	}
	if cmd.Flags().Changed("feedback") {
		feedback, _ := cmd.Flags().GetString("feedback")
		req.AdminFeedback = &feedback
	}

	sub, err := c.Review(cmd.Context(), id, req)
	if err != nil {
		return err
	}
	if cli.WantJSON() {
		return cli.PrintJSON(cmd.OutOrStdout(), sub)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Submission %s is now %s\n", sub.ID, sub.Status)
	return nil
}

func init() {
	listCmd.Flags().String("status", string(models.StatusPending), "Filter by status")
	listCmd.Flags().IntP("limit", "n", 50, "Entries per page")
	listCmd.Flags().Int("offset", 0, "Entries to skip")

	for _, c := range []*cobra.Command{approveCmd, rejectCmd} {
		c.Flags().String("feedback", "", "Feedback shown to the author")
	}
	approveCmd.Flags().Int("points", 0, "Points to award (mission default when omitted)")

	reviewCmd.AddCommand(listCmd, approveCmd, rejectCmd)
}
