package main

import (
	"fmt"
	"time"

	"github.com/quailyquaily/groupwarden/stats"
	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Print recent moderation actions recorded for a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, _ := cmd.Flags().GetInt64("group-id")
			if groupID == 0 {
				return fmt.Errorf("missing --group-id")
			}
			limit := flagOrViperInt(cmd, "limit", "")

			store, err := stats.Open(stats.Options{
				Path: flagOrViperString(cmd, "db-path", "db.path"),
			})
			if err != nil {
				return fmt.Errorf("open stats store: %w", err)
			}
			defer func() { _ = store.Close() }()

			actions, err := store.RecentModActions(cmd.Context(), groupID, limit)
			if err != nil {
				return err
			}
			if len(actions) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No moderation actions recorded for this group.")
				return nil
			}
			for _, a := range actions {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %-7s actor=%d target=%d\n",
					a.CreatedAt.Format(time.RFC3339), a.Action, a.ActorID, a.TargetID)
			}
			return nil
		},
	}

	cmd.Flags().Int64("group-id", 0, "Group chat ID to inspect.")
	cmd.Flags().Int("limit", 20, "Maximum number of actions to print.")

	return cmd
}
