package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Show pending reminders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Task ID", "Fires", "Title", "Body"})
		for _, r := range a.scheduler.Pending() {
			t.AppendRow(table.Row{r.ID, r.FireAt.Format("2006-01-02 15:04"), r.Title, r.Body})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pendingCmd)
}
