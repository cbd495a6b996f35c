package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pubapi/internal/config"
	"pubapi/internal/errors"
	"pubapi/internal/paths"
)

var (
	configShowFormat string
	configInitForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pubapi configuration",
	Long:  "View and manage pubapi configuration stored in .pubapi/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults, .pubapi/config.json and
PUBAPI_* environment overrides are applied.

Examples:
  pubapi config show
  pubapi config show --format toml
  PUBAPI_DIFF_DENY=removed pubapi config show`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to .pubapi/config.json",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configShowCmd.Flags().StringVar(&configShowFormat, "format", "json", "Output format (json, toml)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing configuration")
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	switch configShowFormat {
	case "json":
		return cli.cfg.WriteJSON(cli.stdout)
	case "toml":
		return cli.cfg.WriteTOML(cli.stdout)
	default:
		return fmt.Errorf("unsupported format %q (want json or toml)", configShowFormat)
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := paths.GetConfigPath(cli.repoRoot)
	if _, err := os.Stat(path); err == nil && !configInitForce {
		return errors.Newf(errors.ConfigInvalid, "%s already exists (use --force to overwrite)", path).WithFixes()
	}
	if err := config.DefaultConfig().Save(cli.repoRoot); err != nil {
		return errors.New(errors.InternalError, "failed to write configuration", err)
	}
	fmt.Fprintf(cli.stdout, "Wrote %s\n", path)
	return nil
}
