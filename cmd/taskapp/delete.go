package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [Task ID]",
	Short:   "Delete a task and cancel its reminder",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id %q", args[0])
		}

		a, err := openApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		task, err := a.store.Task(id)
		if err != nil {
			return err
		}
		if err := a.ctrl.Delete(task); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d %q\n", task.ID, task.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
