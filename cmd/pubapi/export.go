package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pubapi/internal/export"
)

var (
	exportSCIPPath    string
	exportOutline     bool
	exportFormat      string
	exportWithBlanket bool
)

var exportCmd = &cobra.Command{
	Use:   "export [rustdoc.json]",
	Short: "Export a listing as a SCIP index or a module outline",
	Long: `Write the public API in a form other tools consume.

--scip writes a SCIP index with one symbol per public item; the rendered
signature is the symbol's signature documentation. --outline prints the
listing grouped by module.

Examples:
  pubapi export target/doc/example_api.json --scip api.scip
  pubapi export --outline
  pubapi export --outline --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportSCIPPath, "scip", "", "Write a SCIP index to this file")
	exportCmd.Flags().BoolVar(&exportOutline, "outline", false, "Print the listing grouped by module")
	exportCmd.Flags().StringVar(&exportFormat, "format", "human", "Outline format (human, json, yaml)")
	exportCmd.Flags().BoolVar(&exportWithBlanket, "with-blanket-implementations", false, "Include items from blanket and auto-trait implementations")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportSCIPPath == "" && !exportOutline {
		return fmt.Errorf("nothing to export: pass --scip <file> or --outline")
	}
	f, err := parseFormat(exportFormat)
	if err != nil {
		return err
	}
	path, _, err := cli.rustdocPath(firstArg(args))
	if err != nil {
		return err
	}
	l, err := cli.buildListing(cmd.Context(), path, exportWithBlanket)
	if err != nil {
		return err
	}

	if exportSCIPPath != "" {
		index, err := export.BuildSCIP(l.Items, export.SCIPOptions{
			Crate:     l.Crate,
			Version:   l.Version,
			Source:    l.Source,
			RepoRoot:  cli.repoRoot,
			Arguments: os.Args[1:],
		})
		if err != nil {
			return err
		}
		if err := export.WriteSCIP(exportSCIPPath, index); err != nil {
			return err
		}
		cli.logger.Info("SCIP index written", "path", exportSCIPPath, "symbols", len(index.Documents[0].Symbols))
	}

	if exportOutline {
		o := export.BuildOutline(l.Crate, l.Items)
		if f == FormatHuman {
			fmt.Fprint(cli.stdout, export.FormatOutline(o))
			return nil
		}
		return writeStructured(cli.stdout, f, o)
	}
	return nil
}
