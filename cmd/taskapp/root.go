package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"taskapp/internal/ui"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "taskapp",
	Short:         "A task list with local reminders",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		// The terminal belongs to the UI; send log output to a file.
		f, err := tea.LogToFile(a.cfg.LogPath, "taskapp")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()

		if err := ui.Run(a.ctrl, a.editor, a.scheduler, a.cfg); err != nil {
			return fmt.Errorf("error running program: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $TASKAPP_CONFIG or the user config dir)")
}
