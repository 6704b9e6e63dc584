package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"taskapp/internal/tasklist"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tasks by date",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ctrl.Load(); err != nil {
			return err
		}
		renderTasks(cmd.OutOrStdout(), a.ctrl)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [category]",
	Short: "List tasks whose category matches exactly",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		if err := a.ctrl.Search(query); err != nil {
			return err
		}
		renderTasks(cmd.OutOrStdout(), a.ctrl)
		return nil
	},
}

func renderTasks(w io.Writer, ctrl *tasklist.Controller) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{
		text.Bold.Sprint("ID"), text.Bold.Sprint("Title"), text.Bold.Sprint("Date"), text.Bold.Sprint("Category"),
	})
	for i, task := range ctrl.Tasks() {
		row, _ := ctrl.Row(i)
		t.AppendRow(table.Row{task.ID, row.Title, row.Date, task.Category})
	}
	if ctrl.State() == tasklist.Filtered {
		t.SetCaption(fmt.Sprintf("category = %q", ctrl.Query()))
	}
	t.Render()
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
}
