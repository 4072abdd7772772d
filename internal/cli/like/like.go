package like

import (
	"fmt"

	"github.com/spf13/cobra"

	"missionhub/internal/cli"
)

var LikeCmd = &cobra.Command{
	Use:   "like <submission-id>",
	Short: "Toggle your like on an approved submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cli.AuthedClient()
		if err != nil {
			return err
		}
		id := args[0]

		info, err := c.LikeInfo(cmd.Context(), id)
		if err != nil {
			return err
		}
		resp, err := c.ToggleLike(cmd.Context(), id, info.Liked)
		if err != nil {
			return err
		}
		if cli.WantJSON() {
			return cli.PrintJSON(cmd.OutOrStdout(), resp)
		}

		verb := "Unliked"
		if resp.Liked {
			verb = "Liked"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s %s (%d likes)\n", verb, id, resp.Count)
		return nil
	},
}
