package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wellman-connect/wellauth/internal/domain/security"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Hash a password for manual account seeding",
	Long: `Hash a password with Argon2id for use in a hand-edited user
collection file.

The output is a PHC-format string that can be placed directly in the
passwordHash field of a wellman_users.json entry.

Example:
  wellauth hash-password "my-secret-password"
  # Output: $argon2id$v=19$m=48128,t=1,p=1$...

Security note: The password will appear in shell history.
Consider clearing history after use or using an environment variable:
  wellauth hash-password "$MY_PASSWORD"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := security.HashPassword(args[0])
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}
