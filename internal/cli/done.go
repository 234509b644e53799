package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as done",
	Long: `Close a single task on ClickUp.

The cached list is refreshed right after, so the next read reflects it.

Examples:
  taskdeck done 86c2j4k9x`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	taskID := args[0]
	ctx := context.Background()

	if err := a.syncer.MarkDone(ctx, taskID); err != nil {
		return fmt.Errorf("failed to close task %s: %w", taskID, err)
	}
	fmt.Printf("✓ Completed: %s\n", taskID)

	// Mutations do not touch the cache; re-sync so cached reads see it.
	timeline := a.syncer.Refresh(ctx)
	if timeline.Err == "" {
		fmt.Printf("🔄 Cache refreshed, %d task(s) remaining.\n", len(timeline.Tasks))
	}
	return nil
}
