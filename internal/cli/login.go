// internal/cli/login.go
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tender-radar/tenderscrape/internal/creds"
	"github.com/tender-radar/tenderscrape/internal/ui"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login <site>",
	Short: "Store portal credentials in the OS keyring",
	Long: `Prompts for the portal's username and password and saves them in the
operating system keyring. Stored credentials are picked up automatically on
the next run; environment variables still take precedence.`,
	Example: `  tenderscrape login adm`,
	Args:    cobra.ExactArgs(1),
	RunE:    runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	appCtx := GetApp()
	id := args[0]
	if _, ok := appCtx.Scraper(id); !ok {
		return fmt.Errorf("unknown site %q (known sites: %v)", id, appCtx.ScraperIDs())
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Fprintf(os.Stdout, "Username for %s: ", id)
	username, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username must not be empty")
	}

	fmt.Fprintf(os.Stdout, "Password for %s: ", id)
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimSpace(string(passwordBytes))
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	if err := creds.Store(id, creds.Credentials{Username: username, Password: password}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s credentials for %s stored in the keyring\n", ui.Success("✓"), id)
	return nil
}
