package leaderboard

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"missionhub/internal/cli"
)

var LeaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"lb"},
	Short:   "Show the points leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		page, err := cli.NewClient().Leaderboard(cmd.Context(), limit, offset)
		if err != nil {
			return err
		}
		if cli.WantJSON() {
			return cli.PrintJSON(cmd.OutOrStdout(), page)
		}
		cli.RenderLeaderboard(cmd.OutOrStdout(), page)
		return nil
	},
}

// RankCmd looks up one profile; without an argument it uses the session user
var RankCmd = &cobra.Command{
	Use:   "rank [profile-id]",
	Short: "Show the rank of a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := viper.GetString(cli.KeyUserID)
		if len(args) == 1 {
			id = args[0]
		}
		if id == "" {
			return errors.New("no profile id given and not logged in")
		}

		r, err := cli.NewClient().Rank(cmd.Context(), id)
		if err != nil {
			return err
		}
		if cli.WantJSON() {
			return cli.PrintJSON(cmd.OutOrStdout(), r)
		}
		cli.RenderRank(cmd.OutOrStdout(), r)
		return nil
	},
}

func init() {
	LeaderboardCmd.Flags().IntP("limit", "n", 20, "Entries per page")
	LeaderboardCmd.Flags().Int("offset", 0, "Entries to skip")
}
