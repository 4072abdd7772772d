package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"missionhub/internal/cli"
	"missionhub/pkg/models"
)

var roleCmd = &cobra.Command{
	Use:   "role <profile-id> <admin|participant|view_only>",
	Short: "Change a profile's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role := models.Role(args[1])
		if !role.Valid() {
			return fmt.Errorf("invalid role %q: must be admin, participant or view_only", args[1])
		}
		c, err := cli.AuthedClient()
		if err != nil {
			return err
		}
		if err := c.UpdateRole(cmd.Context(), args[0], role); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s\n", args[0], role)
		return nil
	},
}
