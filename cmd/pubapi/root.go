package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pubapi/internal/config"
	"pubapi/internal/errors"
	"pubapi/internal/slogutil"
	"pubapi/internal/version"
)

var (
	repoFlag  string
	verbosity int
	quiet     bool
)

// cli is the state of the current invocation, replaced by run.
var cli = &app{stdout: os.Stdout, stderr: os.Stderr}

// app is the state shared by every subcommand of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	repoRoot string
	cfg      *config.Config
	logger   *slog.Logger
	factory  *slogutil.LoggerFactory
}

var rootCmd = &cobra.Command{
	Use:   "pubapi",
	Short: "List and diff the public API of Rust crates",
	Long: `pubapi reads rustdoc JSON and prints one canonical signature per public
item. Two listings can be diffed into removed, changed and added items,
and listings can be stored as snapshots for later comparison.`,
	Version:           version.Version,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate("pubapi version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Only log errors")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "Repository root (default: current directory)")
}

// setup resolves the repository, loads and validates the configuration and
// builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	root := repoFlag
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.New(errors.InternalError, "cannot determine working directory", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return errors.New(errors.InternalError, fmt.Sprintf("invalid repository path %s", root), err)
	}
	cli.repoRoot = abs

	cfg, err := config.LoadConfig(cli.repoRoot)
	if err != nil {
		return errors.New(errors.ConfigInvalid, "failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return errors.New(errors.ConfigInvalid, err.Error(), err)
	}
	cli.cfg = cfg

	cli.factory = slogutil.NewLoggerFactory(cli.repoRoot, cfg, slogutil.LevelFromVerbosity(verbosity, quiet))
	cli.factory.SetConsole(cli.stderr)
	cli.logger = cli.factory.CLILogger()
	cli.logger.Debug("Configuration loaded", "repo", cli.repoRoot, "storage", cfg.Storage.Enabled)
	return nil
}

func (a *app) close() {
	if a.factory != nil {
		_ = a.factory.Close()
	}
}

// resetFlags puts every flag of the command tree back to its default, so
// that one process can execute the tree more than once.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
