package feed

import (
	"time"

	"github.com/spf13/cobra"

	"missionhub/internal/cli"
)

var FeedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the community activity feed",
	Long:  "List recent approved submissions and profile updates, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		feed, err := cli.NewClient().Feed(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if cli.WantJSON() {
			return cli.PrintJSON(cmd.OutOrStdout(), feed)
		}
		cli.RenderFeed(cmd.OutOrStdout(), feed, time.Now())
		return nil
	},
}

func init() {
	FeedCmd.Flags().IntP("limit", "n", 0, "Maximum entries (server default when 0)")
}
