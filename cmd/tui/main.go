package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"missionhub/internal/cli"
	"missionhub/internal/tui"
	"missionhub/internal/tui/config"
)

var rootCmd = &cobra.Command{
	Use:          "missionhub-tui",
	Short:        "Terminal client for the MissionHub community feed",
	SilenceUsage: true,
	RunE:         run,
}

func main() {
	rootCmd.Flags().String("config", "", "session file (defaults to ~/.missionhub/config.yaml)")
	rootCmd.Flags().String("server", "", "server URL override")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if p, err := cli.ConfigPath(); err == nil {
			path = p
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error loading config: %v\nUsing default configuration...\n", err)
		cfg = config.Default()
	}
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.Server.URL = server
	}

	p := tea.NewProgram(tui.New(cfg, path), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
