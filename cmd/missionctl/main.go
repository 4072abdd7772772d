package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"missionhub/internal/cli"
	"missionhub/internal/cli/admin"
	"missionhub/internal/cli/auth"
	"missionhub/internal/cli/config"
	"missionhub/internal/cli/feed"
	"missionhub/internal/cli/leaderboard"
	"missionhub/internal/cli/like"
)

var rootCmd = &cobra.Command{
	Use:   "missionctl",
	Short: "MissionHub command line client",
	Long: `missionctl talks to a MissionHub server.

Log in once with 'missionctl auth login'; the session is kept in
~/.missionhub/config.yaml (or $MISSIONHUB_HOME).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cli.InitConfig()
	},
}

func main() {
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("server", "", "server URL (overrides the saved one)")
	_ = viper.BindPFlag(cli.KeyJSON, rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag(cli.KeyServerURL, rootCmd.PersistentFlags().Lookup("server"))
}

func registerCommands() {
	rootCmd.AddCommand(
		auth.AuthCmd,
		config.ConfigCmd,
		feed.FeedCmd,
		leaderboard.LeaderboardCmd,
		leaderboard.RankCmd,
		like.LikeCmd,
		admin.AdminCmd,
	)
}
