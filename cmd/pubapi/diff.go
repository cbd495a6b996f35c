package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"pubapi/internal/breaking"
	"pubapi/internal/errors"
	"pubapi/internal/publicapi"
)

// DiffResponse is the structured diff artifact. Every list keeps the sorted
// order of the diff, and changed entries keep their old/new pairing.
type DiffResponse struct {
	Old     listing            `json:"old" yaml:"old"`
	New     listing            `json:"new" yaml:"new"`
	Summary *breaking.Summary  `json:"summary" yaml:"summary"`
	Removed []string           `json:"removed" yaml:"removed"`
	Changed []ChangedSignature `json:"changed" yaml:"changed"`
	Added   []string           `json:"added" yaml:"added"`
	Denied  []string           `json:"denied,omitempty" yaml:"denied,omitempty"`
}

// ChangedSignature is one changed item as text.
type ChangedSignature struct {
	Path string `json:"path" yaml:"path"`
	Old  string `json:"old" yaml:"old"`
	New  string `json:"new" yaml:"new"`
}

var (
	diffFormat      string
	diffDeny        []string
	diffWithBlanket bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Diff the public API of two crate versions",
	Long: `Compare two listings and print removed, changed and added items.

Each side is a rustdoc JSON path or snapshot:<id|label>. With --deny the
command exits with status 2 when the diff contains a denied class of change.
diff.deny in the configuration adds to --deny.

Examples:
  pubapi diff old/example_api.json new/example_api.json
  pubapi diff snapshot:example_api@0.1.0 target/doc/example_api.json
  pubapi diff snapshot:v1 snapshot:v2 --deny removed,changed
  pubapi diff a.json b.json --format yaml`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffFormat, "format", "human", "Output format (human, json, yaml)")
	diffCmd.Flags().StringSliceVar(&diffDeny, "deny", nil, "Fail when the diff contains these classes (removed, changed, added)")
	diffCmd.Flags().BoolVar(&diffWithBlanket, "with-blanket-implementations", false, "Include items from blanket and auto-trait implementations")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	f, err := parseFormat(diffFormat)
	if err != nil {
		return err
	}
	denied, err := parseDeny(append(slices.Clone(cli.cfg.Diff.Deny), diffDeny...))
	if err != nil {
		return err
	}

	oldListing, err := cli.loadSide(cmd.Context(), args[0], diffWithBlanket)
	if err != nil {
		return err
	}
	newListing, err := cli.loadSide(cmd.Context(), args[1], diffWithBlanket)
	if err != nil {
		return err
	}

	analyzer := breaking.NewAnalyzer(nil)
	if cli.cfg.Diff.DebugDump {
		analyzer = breaking.NewAnalyzer(cli.logger)
	}
	diff := analyzer.Between(oldListing.Items, newListing.Items)
	violations := diff.Violations(denied)

	cli.logger.Info("Diff computed",
		"removed", len(diff.Removed),
		"changed", len(diff.Changed),
		"added", len(diff.Added),
	)

	if f == FormatHuman {
		writeDiffHuman(cli.stdout, diff)
	} else {
		resp := newDiffResponse(oldListing, newListing, diff, violations)
		if err := writeStructured(cli.stdout, f, resp); err != nil {
			return err
		}
	}

	if len(violations) > 0 {
		return errors.Newf(errors.PolicyViolation, "diff contains denied changes: %s", joinKinds(violations)).
			WithDetails(diff.Summary())
	}
	return nil
}

// parseDeny validates and deduplicates change class names.
func parseDeny(names []string) ([]breaking.ChangeKind, error) {
	var out []breaking.ChangeKind
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		k, ok := breaking.ParseChangeKind(name)
		if !ok {
			return nil, fmt.Errorf("unknown change class %q in --deny (want removed, changed or added)", name)
		}
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out, nil
}

func joinKinds(kinds []breaking.ChangeKind) string {
	s := make([]string, len(kinds))
	for i, k := range kinds {
		s[i] = string(k)
	}
	return strings.Join(s, ", ")
}

func newDiffResponse(oldListing, newListing *listing, diff *breaking.PublicItemsDiff, violations []breaking.ChangeKind) *DiffResponse {
	resp := &DiffResponse{
		Old:     *oldListing,
		New:     *newListing,
		Summary: diff.Summary(),
		Removed: publicapi.Strings(diff.Removed),
		Changed: make([]ChangedSignature, len(diff.Changed)),
		Added:   publicapi.Strings(diff.Added),
	}
	for i, c := range diff.Changed {
		resp.Changed[i] = ChangedSignature{Path: c.New.PathString(), Old: c.Old.String(), New: c.New.String()}
	}
	for _, v := range violations {
		resp.Denied = append(resp.Denied, string(v))
	}
	return resp
}

func writeDiffHuman(w io.Writer, diff *breaking.PublicItemsDiff) {
	section := func(title string) {
		fmt.Fprintln(w, title)
		fmt.Fprintln(w, strings.Repeat("=", len(title)))
	}

	section("Removed items from the public API")
	if len(diff.Removed) == 0 {
		fmt.Fprintln(w, "(none)")
	}
	for _, item := range diff.Removed {
		fmt.Fprintf(w, "-%s\n", item)
	}
	fmt.Fprintln(w)

	section("Changed items in the public API")
	if len(diff.Changed) == 0 {
		fmt.Fprintln(w, "(none)")
	}
	for _, c := range diff.Changed {
		fmt.Fprintf(w, "-%s\n+%s\n", c.Old, c.New)
	}
	fmt.Fprintln(w)

	section("Added items to the public API")
	if len(diff.Added) == 0 {
		fmt.Fprintln(w, "(none)")
	}
	for _, item := range diff.Added {
		fmt.Fprintf(w, "+%s\n", item)
	}
}
