package auth

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"missionhub/internal/cli"
	"missionhub/pkg/models"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to MissionHub",
	Long:  "Authenticate with your email and password and save the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrompter(cmd)
		email, _ := cmd.Flags().GetString("email")
		email = p.line("Email", email)

		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			var err error
			if password, err = p.password(); err != nil {
				return err
			}
		}

		c := cli.NewClient()
		resp, err := c.Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		path, err := saveSession(email, resp)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "✓ Login successful!")
		fmt.Fprintf(out, "  Welcome back, %s!\n", resp.Profile.Name)
		fmt.Fprintf(out, "  Token saved to: %s\n", path)
		return nil
	},
}

func saveSession(email string, resp *models.LoginResponse) (string, error) {
	viper.Set(cli.KeyUserID, resp.Profile.ID)
	viper.Set(cli.KeyUserName, resp.Profile.Name)
	viper.Set(cli.KeyUserEmail, email)
	viper.Set(cli.KeyUserRole, string(resp.Profile.Role))
	viper.Set(cli.KeyToken, resp.Token)
	return cli.SaveConfig()
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, k := range []string{cli.KeyUserID, cli.KeyUserName, cli.KeyUserEmail, cli.KeyUserRole, cli.KeyToken} {
			viper.Set(k, "")
		}
		if _, err := cli.SaveConfig(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Email address")
	loginCmd.Flags().String("password", "", "Password (prompted when omitted)")
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(logoutCmd)
}
