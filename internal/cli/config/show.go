package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"missionhub/internal/cli"
)

type sessionView struct {
	Path      string `json:"path"`
	ServerURL string `json:"server_url"`
	UserID    string `json:"user_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	Token     string `json:"token,omitempty"`
	LoggedIn  bool   `json:"logged_in"`
}

func currentSession() sessionView {
	path, _ := cli.ConfigPath()
	token := viper.GetString(cli.KeyToken)
	return sessionView{
		Path:      path,
		ServerURL: viper.GetString(cli.KeyServerURL),
		UserID:    viper.GetString(cli.KeyUserID),
		Name:      viper.GetString(cli.KeyUserName),
		Email:     viper.GetString(cli.KeyUserEmail),
		Role:      viper.GetString(cli.KeyUserRole),
		Token:     cli.MaskToken(token),
		LoggedIn:  token != "",
	}
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the server address and saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := currentSession()
		out := cmd.OutOrStdout()
		if cli.WantJSON() {
			return cli.PrintJSON(out, s)
		}

		fmt.Fprintln(out, "MissionHub Configuration:")
		fmt.Fprintf(out, "  File:   %s\n", s.Path)
		fmt.Fprintf(out, "  Server: %s\n", s.ServerURL)
		fmt.Fprintln(out)
		if !s.LoggedIn {
			fmt.Fprintln(out, "User: Not logged in")
			fmt.Fprintln(out, "  Run 'missionctl auth login' to authenticate")
			return nil
		}
		fmt.Fprintln(out, "User:")
		fmt.Fprintf(out, "  Name:  %s <%s>\n", s.Name, s.Email)
		fmt.Fprintf(out, "  ID:    %s\n", s.UserID)
		fmt.Fprintf(out, "  Role:  %s\n", s.Role)
		fmt.Fprintf(out, "  Token: %s\n", s.Token)
		return nil
	},
}

var setServerCmd = &cobra.Command{
	Use:   "set-server <url>",
	Short: "Point the CLI at another server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		viper.Set(cli.KeyServerURL, args[0])
		path, err := cli.SaveConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Server set to %s (%s)\n", args[0], path)
		return nil
	},
}

func init() {
	ConfigCmd.AddCommand(showCmd)
	ConfigCmd.AddCommand(setServerCmd)
}
