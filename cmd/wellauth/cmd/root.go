// Package cmd provides the CLI commands for wellauth.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wellman-connect/wellauth/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "wellauth",
	Short: "wellauth - session and route authorization service",
	Long: `wellauth is a session and route authorization service.

It manages user accounts, password hashing, session lifecycle with
automatic refresh, CSRF tokens, login rate limiting, and a route guard
that decides which screens a visitor may enter.

Quick start:
  1. Create a config file: wellauth.yaml
  2. Run: wellauth serve

Configuration:
  Config is loaded from wellauth.yaml in the current directory,
  $HOME/.wellauth/, or /etc/wellauth/.

  Environment variables can override config values with the WELLAUTH_ prefix.
  Example: WELLAUTH_SERVER_HTTP_ADDR=:9090

Commands:
  serve           Start the HTTP service
  reset           Remove persisted state (sessions, accounts, CSRF token)
  hash-password   Hash a password for manual account seeding
  version         Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./wellauth.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
