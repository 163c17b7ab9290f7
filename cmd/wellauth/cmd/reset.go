package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wellman-connect/wellauth/internal/adapter/outbound/state"
	"github.com/wellman-connect/wellauth/internal/config"
)

var (
	resetKeepAccounts bool
	resetForce        bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove persisted state",
	Long: `Reset wellauth by removing persisted state files.

By default the session, user collection, and CSRF token files (and their
backups) are removed from the storage directory. On next start, wellauth
boots with no accounts and no active session.

Optional flags:
  --keep-accounts   Keep the user collection, clear only session and CSRF state
  --force           Skip confirmation prompt

Examples:
  # Full reset (interactive confirmation)
  wellauth reset

  # Clear the active session but keep registered accounts
  wellauth reset --keep-accounts --force`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetKeepAccounts, "keep-accounts", false, "Keep the user collection, clear only session and CSRF state")
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Skip confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dir, err := storageDir(cfg)
	if err != nil {
		return err
	}

	keys := []string{state.KeySession, state.KeyCSRFToken}
	if !resetKeepAccounts {
		keys = append(keys, state.KeyUsers)
	}

	if !resetForce {
		fmt.Printf("About to remove the following from %s:\n", dir)
		for _, key := range keys {
			fmt.Printf("  - %s.json (and backup)\n", key)
		}
		fmt.Print("Continue? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	removed := 0
	for _, key := range keys {
		for _, name := range []string{key + ".json", key + ".json.bak"} {
			path := filepath.Join(dir, name)
			err := os.Remove(path)
			switch {
			case err == nil:
				fmt.Printf("Removed %s\n", path)
				removed++
			case os.IsNotExist(err):
				// Nothing to do.
			default:
				return fmt.Errorf("remove %s: %w", path, err)
			}
		}
	}

	if removed == 0 {
		fmt.Println("Nothing to remove; state was already clean.")
	}
	return nil
}
