package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"pubapi/internal/errors"
	"pubapi/internal/paths"
	"pubapi/internal/project"
	"pubapi/internal/publicapi"
	"pubapi/internal/rustdoc"
	"pubapi/internal/storage"
)

// snapshotPrefix marks a diff side that names a stored snapshot.
const snapshotPrefix = "snapshot:"

// listing is a built or loaded public API listing and where it came from.
type listing struct {
	Crate   string `json:"crate" yaml:"crate"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Digest  string `json:"digest,omitempty" yaml:"digest,omitempty"`
	// Source is the rustdoc JSON path or "snapshot:<id>".
	Source string                 `json:"source" yaml:"source"`
	Items  []publicapi.PublicItem `json:"-" yaml:"-"`
	// FormatVersion is the rustdoc JSON format_version.
	FormatVersion int `json:"-" yaml:"-"`
	// WithBlanket records whether blanket implementations were rendered.
	WithBlanket bool `json:"-" yaml:"-"`
}

// rustdocPath returns arg, or the rustdoc JSON location cargo uses for the
// crate whose manifest encloses the repository root.
func (a *app) rustdocPath(arg string) (string, *project.Manifest, error) {
	if arg != "" {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return "", nil, errors.New(errors.InputNotFound, fmt.Sprintf("invalid path %s", arg), err)
		}
		return abs, nil, nil
	}
	m, err := project.LoadManifest(a.repoRoot)
	if err != nil {
		return "", nil, errors.New(errors.InputNotFound, "no rustdoc JSON given and no Cargo.toml found", err)
	}
	if m.Name() == "" {
		return "", nil, errors.Newf(errors.InputNotFound, "%s is a virtual workspace; pass a rustdoc JSON path", m.Path)
	}
	return m.RustdocJSONPath(), m, nil
}

// buildOptions merges the config with the command-line blanket flag.
func (a *app) buildOptions(withBlanket bool) publicapi.Options {
	opts := publicapi.DefaultOptions()
	opts.WithBlanketImplementations = withBlanket || a.cfg.Render.WithBlanketImplementations
	if a.cfg.Render.Workers > 0 {
		opts.Workers = a.cfg.Render.Workers
	}
	return opts
}

// buildListing decodes the rustdoc JSON at path and renders its listing.
func (a *app) buildListing(ctx context.Context, path string, withBlanket bool) (*listing, error) {
	a.logger.Debug("Loading rustdoc JSON", "path", path)
	crate, err := rustdoc.Load(path)
	if err != nil {
		return nil, err
	}
	opts := a.buildOptions(withBlanket)
	items, err := publicapi.Build(ctx, crate, opts)
	if err != nil {
		return nil, errors.New(errors.InternalError, "listing interrupted", err)
	}

	name := ""
	if root, ok := crate.RootItem(); ok {
		name = root.NameOr("")
	}
	a.logger.Info("Listing built", "crate", name, "items", len(items), "format_version", crate.FormatVersion)
	return &listing{
		Crate:         name,
		Version:       crate.CrateVersion,
		Digest:        crate.Digest,
		Source:        path,
		Items:         items,
		FormatVersion: crate.FormatVersion,
		WithBlanket:   opts.WithBlanketImplementations,
	}, nil
}

// loadSide resolves one diff argument: "snapshot:<ref>" loads a stored
// listing, anything else is a rustdoc JSON path.
func (a *app) loadSide(ctx context.Context, arg string, withBlanket bool) (*listing, error) {
	ref, ok := strings.CutPrefix(arg, snapshotPrefix)
	if !ok {
		path, _, err := a.rustdocPath(arg)
		if err != nil {
			return nil, err
		}
		return a.buildListing(ctx, path, withBlanket)
	}

	store, closeStore, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore()

	snap, items, err := store.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &listing{
		Crate:         snap.Crate,
		Version:       snap.Version,
		Digest:        snap.Digest,
		Source:        snapshotPrefix + snap.ID,
		Items:         items,
		FormatVersion: snap.FormatVersion,
		WithBlanket:   snap.WithBlanketImplementations,
	}, nil
}

// openStore opens the snapshot database named by storage.path.
func (a *app) openStore() (*storage.SnapshotStore, func(), error) {
	if !a.cfg.Storage.Enabled {
		return nil, nil, errors.New(errors.ConfigInvalid, "snapshot storage is disabled (storage.enabled = false)", nil)
	}
	db, err := storage.Open(paths.ResolveRepoPath(a.repoRoot, a.cfg.Storage.Path), a.logger)
	if err != nil {
		return nil, nil, errors.New(errors.StorageError, "failed to open snapshot database", err)
	}
	return storage.NewSnapshotStore(db), func() { _ = db.Close() }, nil
}
