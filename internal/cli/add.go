package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/existflow/taskdeck/internal/sync"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a task in your default list",
	Long: `Create a task on ClickUp, assigned to you.

The task goes into the default list chosen with 'taskdeck lists --use'.

Examples:
  taskdeck add "Review the Q3 report"
  taskdeck add Ship the widget`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name := strings.Join(args, " ")
	ctx := context.Background()

	task, err := a.syncer.CreateInDefaultList(ctx, name)
	if errors.Is(err, sync.ErrNoListSelected) {
		fmt.Println("No default list chosen. Pick one first:")
		fmt.Println("  taskdeck lists --use LIST_ID")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	fmt.Printf("✓ Created: \"%s\" (%s)\n", name, task.URL())

	timeline := a.syncer.Refresh(ctx)
	if timeline.Err == "" {
		fmt.Printf("🔄 Cache refreshed, %d open task(s).\n", len(timeline.Tasks))
	}
	return nil
}
