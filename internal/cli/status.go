package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sign-in and cache status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	credential, signedIn := a.creds.Token()
	if !signedIn {
		fmt.Println("Auth:       not signed in")
	} else if a.creds.HasOAuthToken() {
		fmt.Println("Auth:       OAuth token")
	} else {
		fmt.Println("Auth:       API key")
	}

	if id, ok, _ := a.store.Identity(); ok {
		fmt.Printf("Team:       %s (user %d)\n", id.TeamID, id.UserID)
	}

	if sel, ok, _ := a.store.ListSelection(); ok {
		fmt.Printf("Add target: %s (%s)\n", sel.ListName, sel.ListID)
	} else {
		fmt.Println("Add target: none (task creation disabled)")
	}

	entry, _ := a.syncer.CachedEntry()
	if entry != nil {
		fmt.Printf("Cache:      %d task(s), fetched %s\n",
			len(entry.Tasks), entry.FetchedAt.Local().Format("Jan 2 15:04"))
	} else {
		fmt.Println("Cache:      empty")
	}

	// Connection check: one cheap authenticated call.
	if signedIn {
		if _, err := a.api.Teams(context.Background(), credential); err != nil {
			fmt.Printf("API:        ✗ %v\n", err)
		} else {
			fmt.Printf("API:        ✓ reachable (quota left: %d)\n", a.api.RateLimitRemaining())
		}
	}
	return nil
}
