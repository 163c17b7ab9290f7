package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wellman-connect/wellauth/internal/config"
)

var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration as YAML, after defaults and
environment overrides have been applied.

Useful for checking what the service will actually run with:
  wellauth config
  WELLAUTH_SERVER_HTTP_ADDR=:9090 wellauth config`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}

		if file := config.ConfigFileUsed(); file != "" {
			fmt.Printf("# loaded from %s\n", file)
		} else {
			fmt.Println("# no config file found; defaults and environment only")
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showConfigCmd)
}
