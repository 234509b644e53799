package cli

import (
	"context"
	"fmt"

	"github.com/existflow/taskdeck/internal/store"
	"github.com/spf13/cobra"
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Show your ClickUp lists",
	Long: `Resolve every list in your workspace (spaces, folders, folderless
lists) and optionally pick the default target for 'taskdeck add'.

Examples:
  taskdeck lists
  taskdeck lists --use 901802xyz`,
	RunE: runLists,
}

func init() {
	listsCmd.Flags().String("use", "", "Select this list id as the task-creation target")
}

func runLists(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	lists, err := a.syncer.Lists(context.Background())
	if err != nil {
		return fmt.Errorf("failed to resolve lists: %w", err)
	}
	if len(lists) == 0 {
		fmt.Println("No lists found.")
		return nil
	}

	useID, _ := cmd.Flags().GetString("use")

	selected, hasSelection, _ := a.store.ListSelection()
	for _, l := range lists {
		marker := "  "
		if hasSelection && l.ID == selected.ListID {
			marker = "✓ "
		}
		fmt.Printf("%s%-12s  %s\n", marker, l.ID, l.Name)
	}

	if useID == "" {
		return nil
	}

	for _, l := range lists {
		if l.ID == useID {
			sel := store.ListSelection{ListID: l.ID, ListName: l.Name}
			if err := a.syncer.SelectList(sel); err != nil {
				return fmt.Errorf("failed to save list selection: %w", err)
			}
			fmt.Printf("\n✓ New tasks go to [%s]\n", l.Name)
			return nil
		}
	}
	return fmt.Errorf("list not found: %s", useID)
}
