package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"pubapi/internal/errors"
	"pubapi/internal/publicapi"
	"pubapi/internal/storage"
)

var (
	snapshotLabel       string
	snapshotSaveFormat  string
	snapshotWithBlanket bool
	snapshotListCrate   string
	snapshotListFormat  string
	snapshotShowFormat  string
)

// SnapshotResponse is the structured form of one snapshot.
type SnapshotResponse struct {
	Snapshot *storage.Snapshot `json:"snapshot" yaml:"snapshot"`
	Created  bool              `json:"created" yaml:"created"`
	Items    []string          `json:"items,omitempty" yaml:"items,omitempty"`
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Store listings for later diffs",
	Long: `Snapshots keep a listing in .pubapi/snapshots.db so that it can be diffed
after the rustdoc JSON it came from is gone. Refer to a snapshot by id, by
label, or by an id prefix of at least eight characters.`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save [rustdoc.json]",
	Short: "Save a listing as a snapshot",
	Long: `Build a listing and store it. Saving the same rustdoc JSON under the same
label and with the same render options again returns the existing snapshot.

Without an argument the crate in the repository root is used and, unless
--label is given, the snapshot is labelled <crate>@<version> from Cargo.toml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshotSave,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id|label>",
	Short: "Print a stored listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotShow,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id|label>",
	Short: "Delete a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

func init() {
	snapshotSaveCmd.Flags().StringVar(&snapshotLabel, "label", "", "Unique label for the snapshot, e.g. v1.2.0")
	snapshotSaveCmd.Flags().StringVar(&snapshotSaveFormat, "format", "human", "Output format (human, json, yaml)")
	snapshotSaveCmd.Flags().BoolVar(&snapshotWithBlanket, "with-blanket-implementations", false, "Include items from blanket and auto-trait implementations")

	snapshotListCmd.Flags().StringVar(&snapshotListCrate, "crate", "", "Only list snapshots of this crate")
	snapshotListCmd.Flags().StringVar(&snapshotListFormat, "format", "human", "Output format (human, json, yaml)")

	snapshotShowCmd.Flags().StringVar(&snapshotShowFormat, "format", "human", "Output format (human, json, yaml)")

	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotListCmd, snapshotShowCmd, snapshotDeleteCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	f, err := parseFormat(snapshotSaveFormat)
	if err != nil {
		return err
	}
	path, manifest, err := cli.rustdocPath(firstArg(args))
	if err != nil {
		return err
	}
	l, err := cli.buildListing(cmd.Context(), path, snapshotWithBlanket)
	if err != nil {
		return err
	}

	store, closeStore, err := cli.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	label := snapshotLabel
	if label == "" && manifest != nil {
		label = manifest.DefaultLabel()
		if l.Version == "" {
			l.Version = manifest.Version()
		}
		// A default label already naming a different listing is dropped.
		if existing, err := store.Get(cmd.Context(), label); err == nil &&
			(existing.Digest != l.Digest || existing.WithBlanketImplementations != l.WithBlanket) {
			cli.logger.Warn("Default label already in use, saving without a label",
				"label", label, "holder", existing.ID)
			label = ""
		}
	}

	snap, created, err := store.Save(cmd.Context(), storage.SnapshotMeta{
		Crate:                      l.Crate,
		Version:                    l.Version,
		Label:                      label,
		Digest:                     l.Digest,
		FormatVersion:              l.FormatVersion,
		WithBlanketImplementations: l.WithBlanket,
	}, l.Items)
	if err != nil {
		return err
	}

	if f != FormatHuman {
		return writeStructured(cli.stdout, f, SnapshotResponse{Snapshot: snap, Created: created})
	}
	if created {
		fmt.Fprintf(cli.stdout, "Saved snapshot %s%s with %d items\n", snap.ID, labelSuffix(snap.Label), snap.ItemCount)
	} else {
		fmt.Fprintf(cli.stdout, "Snapshot %s%s already stored\n", snap.ID, labelSuffix(snap.Label))
	}
	return nil
}

func labelSuffix(label string) string {
	if label == "" {
		return ""
	}
	return " (" + label + ")"
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	f, err := parseFormat(snapshotListFormat)
	if err != nil {
		return err
	}
	store, closeStore, err := cli.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	snaps, err := store.List(cmd.Context(), snapshotListCrate)
	if err != nil {
		return err
	}
	if f != FormatHuman {
		return writeStructured(cli.stdout, f, snaps)
	}
	if len(snaps) == 0 {
		fmt.Fprintln(cli.stdout, "No snapshots stored.")
		return nil
	}

	w := tabwriter.NewWriter(cli.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tCRATE\tVERSION\tITEMS\tCREATED")
	for _, s := range snaps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			s.ID[:8], orDash(s.Label), s.Crate, orDash(s.Version), s.ItemCount,
			s.CreatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	f, err := parseFormat(snapshotShowFormat)
	if err != nil {
		return err
	}
	store, closeStore, err := cli.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	snap, items, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if f != FormatHuman {
		return writeStructured(cli.stdout, f, SnapshotResponse{Snapshot: snap, Items: publicapi.Strings(items)})
	}
	for _, item := range items {
		fmt.Fprintln(cli.stdout, item.String())
	}
	return nil
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	store, closeStore, err := cli.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	snap, err := store.Delete(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, errors.SnapshotNotFound) {
			cli.logger.Debug("Nothing to delete", "ref", args[0])
		}
		return err
	}
	fmt.Fprintf(cli.stdout, "Deleted snapshot %s%s\n", snap.ID, labelSuffix(snap.Label))
	return nil
}
