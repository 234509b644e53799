package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/taskdeck/internal/model"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch your open tasks from ClickUp",
	Long: `Fetch your open tasks, refresh the shared cache, and print the result.

When the live fetch fails but a previous sync succeeded, the cached tasks are
printed with their age instead of an error.`,
	RunE: runSync,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the cached task list",
	RunE:  runClear,
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("🔄 Synchronizing...")
	timeline := a.syncer.Refresh(context.Background())

	if timeline.Err != "" {
		fmt.Printf("✗ %s\n", timeline.Err)
		return nil
	}

	printTimeline(timeline.Tasks, timeline.LastUpdated)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.syncer.ClearCache(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Println("✓ Cache cleared.")
	return nil
}

func printTimeline(tasks []model.Task, lastUpdated *time.Time) {
	if len(tasks) == 0 {
		fmt.Println("No open tasks. 🎉")
		return
	}

	fmt.Printf("\n📋 %d open task(s)\n", len(tasks))
	fmt.Println(strings.Repeat("─", 60))
	now := time.Now()
	for _, t := range tasks {
		printTask(t, now)
	}
	if lastUpdated != nil {
		fmt.Printf("\nLast updated %s\n", lastUpdated.Local().Format("Jan 2 15:04"))
	}
}

func printTask(t model.Task, now time.Time) {
	priority := "    "
	if t.Priority != nil {
		marker := "  "
		if *t.Priority <= model.PriorityHigh {
			marker = "▲ "
		}
		priority = fmt.Sprintf("%sP%d", marker, *t.Priority)
	}

	due := ""
	if t.DueDate != nil {
		due = t.DueDate.Local().Format("Jan 2")
		if t.Overdue(now) {
			due = "⚠ " + due
		}
	}

	name := truncateName(t.Name, 44)

	fmt.Printf("  %-9s  %-44s  %-9s  %s\n", t.ID, name, due, priority)
}

// truncateName shortens a task name to max characters. Counting runes, not
// bytes, so multi-byte names never get cut mid-rune.
func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
