package admin

import (
	"github.com/spf13/cobra"
)

var AdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Moderation commands (admin role required)",
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review submitted missions",
}

func init() {
	AdminCmd.AddCommand(reviewCmd, roleCmd)
}
