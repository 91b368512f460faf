package main

import (
	"encoding/json"
	"fmt"
	"time"

	"task-secretary-api/internal/dates"
	"task-secretary-api/internal/scheduler"

	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	var today, deadline string

	cmd := &cobra.Command{
		Use:   "plan <step>...",
		Short: "Print the local schedule for steps as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			if today != "" {
				t, ok := dates.Parse(today)
				if !ok {
					return fmt.Errorf("invalid --today %q", today)
				}
				start = t
			}
			subtasks := scheduler.DistributeDates(args, start, deadline)

			out, err := json.MarshalIndent(subtasks, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&today, "today", "", "first day of the plan (default today)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "last allowed day, YYYY-MM-DD")
	return cmd
}
