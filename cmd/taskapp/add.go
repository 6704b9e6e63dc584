package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	addTitle    string
	addContents string
	addDate     string
	addCategory string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a task and schedule its reminder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		task, err := a.ctrl.NewTask()
		if err != nil {
			return err
		}
		if strings.TrimSpace(addDate) != "" {
			date, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(addDate), time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date (want YYYY-MM-DD HH:MM): %w", err)
			}
			task.Date = date
		}
		task.Title = addTitle
		task.Contents = addContents
		task.Category = addCategory

		if err := a.editor.Save(task); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added task #%d\n", task.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "task title")
	addCmd.Flags().StringVar(&addContents, "contents", "", "task contents")
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "due date, YYYY-MM-DD HH:MM (default now)")
	addCmd.Flags().StringVar(&addCategory, "category", "", "task category")
	rootCmd.AddCommand(addCmd)
}
