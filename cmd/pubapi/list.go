package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pubapi/internal/publicapi"
)

var (
	listFormat      string
	listWithBlanket bool
)

// ListResponse is the structured form of `pubapi list`.
type ListResponse struct {
	listing `yaml:",inline"`
	Items   []string `json:"items" yaml:"items"`
}

var listCmd = &cobra.Command{
	Use:   "list [rustdoc.json]",
	Short: "Print the public API of a crate",
	Long: `Print one canonical signature per public item, sorted.

Without an argument the rustdoc JSON of the crate in the repository root is
used (target/doc/<crate>.json).

Examples:
  pubapi list target/doc/serde.json
  pubapi list --format json
  pubapi list --with-blanket-implementations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFormat, "format", "human", "Output format (human, json, yaml)")
	listCmd.Flags().BoolVar(&listWithBlanket, "with-blanket-implementations", false, "Include items from blanket and auto-trait implementations")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	f, err := parseFormat(listFormat)
	if err != nil {
		return err
	}
	path, _, err := cli.rustdocPath(firstArg(args))
	if err != nil {
		return err
	}
	l, err := cli.buildListing(cmd.Context(), path, listWithBlanket)
	if err != nil {
		return err
	}

	if f == FormatHuman {
		for _, item := range l.Items {
			fmt.Fprintln(cli.stdout, item.String())
		}
		return nil
	}
	return writeStructured(cli.stdout, f, ListResponse{listing: *l, Items: publicapi.Strings(l.Items)})
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
