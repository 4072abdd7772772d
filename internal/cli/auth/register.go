package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"missionhub/internal/cli"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	Long:  "Create a MissionHub profile with name, email and password, then log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrompter(cmd)
		out := cmd.OutOrStdout()

		name, _ := cmd.Flags().GetString("name")
		name = p.line("Name", name)
		email, _ := cmd.Flags().GetString("email")
		email = p.line("Email", email)

		password, err := p.password()
		if err != nil {
			return err
		}
		if len(password) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}

		resp, err := cli.NewClient().Register(cmd.Context(), name, email, password)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		if _, err := saveSession(email, resp); err != nil {
			return err
		}

		fmt.Fprintln(out, "✓ Registration successful!")
		fmt.Fprintf(out, "  Logged in as %s (%s)\n", resp.Profile.Name, resp.Profile.Role)
		return nil
	},
}

func init() {
	registerCmd.Flags().String("name", "", "Display name")
	registerCmd.Flags().String("email", "", "Email address")
	AuthCmd.AddCommand(registerCmd)
}
