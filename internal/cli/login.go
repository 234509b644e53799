package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to ClickUp",
	Long: `Sign in with OAuth or a personal API key.

The OAuth flow needs an OAuth app (create one at app.clickup.com/settings/apps):
  taskdeck login --client-id ID --client-secret SECRET   # store the app once
  taskdeck login                                         # print the authorize URL
  taskdeck login --code CODE                             # finish with the redirect code

Or skip OAuth entirely:
  taskdeck login --api-key`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget credentials",
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().String("client-id", "", "OAuth app client id")
	loginCmd.Flags().String("client-secret", "", "OAuth app client secret")
	loginCmd.Flags().String("code", "", "Authorization code from the OAuth redirect")
	loginCmd.Flags().Bool("api-key", false, "Enter a personal API key instead of OAuth")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Store OAuth app credentials when provided.
	clientID, _ := cmd.Flags().GetString("client-id")
	clientSecret, _ := cmd.Flags().GetString("client-secret")
	if clientID != "" || clientSecret != "" {
		if clientID == "" || clientSecret == "" {
			return fmt.Errorf("both --client-id and --client-secret are required")
		}
		a.cfg.ClientID = clientID
		a.cfg.ClientSecret = clientSecret
		if err := a.cfg.Save(); err != nil {
			return err
		}
		fmt.Println("✓ OAuth app saved.")
	}

	if useKey, _ := cmd.Flags().GetBool("api-key"); useKey {
		fmt.Print("API key: ")
		keyBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return err
		}
		key := strings.TrimSpace(string(keyBytes))
		if key == "" {
			return fmt.Errorf("API key required")
		}
		if err := a.creds.SetAPIKey(key); err != nil {
			return err
		}
		fmt.Println("✅ Signed in with API key.")
		return nil
	}

	if !a.cfg.HasOAuthApp() {
		fmt.Println("No OAuth app configured. Store one first:")
		fmt.Println("  taskdeck login --client-id ID --client-secret SECRET")
		fmt.Println("Or sign in with: taskdeck login --api-key")
		return nil
	}

	if code, _ := cmd.Flags().GetString("code"); code != "" {
		fmt.Println("🔄 Exchanging authorization code...")
		token, err := a.oauth().ExchangeCode(context.Background(), code)
		if err != nil {
			return fmt.Errorf("token exchange failed: %w", err)
		}
		if err := a.creds.SetOAuthToken(token); err != nil {
			return err
		}
		fmt.Println("✅ Signed in with ClickUp!")
		return nil
	}

	// Print the URL; the serve command's /oauth/callback completes the flow,
	// or the user pastes the code back with --code.
	fmt.Println("Open this URL in your browser to authorize TaskDeck:")
	fmt.Printf("\n  %s\n\n", a.oauth().AuthorizationURL(uuid.New().String()))
	fmt.Println("Run 'taskdeck serve' first to catch the redirect automatically,")
	fmt.Println("or finish manually with: taskdeck login --code CODE")

	// Offer to read the code interactively.
	fmt.Print("Authorization code (enter to skip): ")
	reader := bufio.NewReader(os.Stdin)
	code, _ := reader.ReadString('\n')
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}

	fmt.Println("🔄 Exchanging authorization code...")
	token, err := a.oauth().ExchangeCode(context.Background(), code)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}
	if err := a.creds.SetOAuthToken(token); err != nil {
		return err
	}
	fmt.Println("✅ Signed in with ClickUp!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, ok := a.creds.Token(); !ok {
		fmt.Println("Not signed in.")
		return nil
	}

	if err := a.creds.Clear(); err != nil {
		return err
	}
	fmt.Println("✅ Signed out.")
	return nil
}
