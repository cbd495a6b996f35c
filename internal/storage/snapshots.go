package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pubapi/internal/errors"
	"pubapi/internal/publicapi"
)

// minIDPrefix is the shortest id prefix accepted as a snapshot reference.
const minIDPrefix = 8

// timeLayout is fixed-width so that created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Snapshot describes one stored listing.
type Snapshot struct {
	ID            string `json:"id" yaml:"id"`
	Crate         string `json:"crate" yaml:"crate"`
	Version       string `json:"version,omitempty" yaml:"version,omitempty"`
	Label         string `json:"label,omitempty" yaml:"label,omitempty"`
	Digest        string `json:"digest" yaml:"digest"`
	FormatVersion int    `json:"formatVersion" yaml:"formatVersion"`

	// WithBlanketImplementations is the render option the listing was built
	// with. The same rustdoc JSON gives a different listing without it.
	WithBlanketImplementations bool      `json:"withBlanketImplementations" yaml:"withBlanketImplementations"`
	CreatedAt                  time.Time `json:"createdAt" yaml:"createdAt"`
	ItemCount                  int       `json:"itemCount" yaml:"itemCount"`
}

// SnapshotMeta is what a caller knows about a listing before it is stored.
type SnapshotMeta struct {
	Crate                      string
	Version                    string
	Label                      string
	Digest                     string
	FormatVersion              int
	WithBlanketImplementations bool
}

// SnapshotStore persists listings so that later diffs can use them.
type SnapshotStore struct {
	db  *DB
	now func() time.Time
}

// NewSnapshotStore wraps an open database.
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db, now: time.Now}
}

const snapshotColumns = `id, crate, version, label, digest, format_version, with_blanket, created_at, item_count`

// Save stores items under meta. When a snapshot with the same digest, label
// and render options already exists it is returned instead and created is
// false. A label held by a different snapshot is a STORAGE_ERROR.
func (s *SnapshotStore) Save(ctx context.Context, meta SnapshotMeta, items []publicapi.PublicItem) (snap *Snapshot, created bool, err error) {
	if meta.Crate == "" || meta.Digest == "" {
		return nil, false, errors.New(errors.InternalError, "snapshot needs a crate name and digest", nil)
	}

	existing, err := s.findByDigest(ctx, meta)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		s.db.logger.Debug("Snapshot already stored", "id", existing.ID, "digest", meta.Digest)
		return existing, false, nil
	}

	payload, err := encodeListing(items)
	if err != nil {
		return nil, false, errors.New(errors.InternalError, "failed to encode listing", err)
	}

	snap = &Snapshot{
		ID:                         uuid.New().String(),
		Crate:                      meta.Crate,
		Version:                    meta.Version,
		Label:                      meta.Label,
		Digest:                     meta.Digest,
		FormatVersion:              meta.FormatVersion,
		WithBlanketImplementations: meta.WithBlanketImplementations,
		CreatedAt:                  s.now().UTC(),
		ItemCount:                  len(items),
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if snap.Label != "" {
			var holder string
			err := tx.QueryRowContext(ctx, `SELECT id FROM snapshots WHERE label = ?`, snap.Label).Scan(&holder)
			if err == nil {
				return errors.Newf(errors.StorageError, "label %q is already used by snapshot %s", snap.Label, holder)
			}
			if !stderrors.Is(err, sql.ErrNoRows) {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO snapshots (`+snapshotColumns+`, payload)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, snap.ID, snap.Crate, snap.Version, nullString(snap.Label), snap.Digest, snap.FormatVersion,
			snap.WithBlanketImplementations, snap.CreatedAt.Format(timeLayout), snap.ItemCount, payload)
		return err
	})
	if err != nil {
		return nil, false, wrapStorage("failed to save snapshot", err)
	}

	s.db.logger.Info("Snapshot saved",
		"id", snap.ID,
		"crate", snap.Crate,
		"items", snap.ItemCount,
		"bytes", len(payload),
	)
	return snap, true, nil
}

func (s *SnapshotStore) findByDigest(ctx context.Context, meta SnapshotMeta) (*Snapshot, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots WHERE digest = ? AND with_blanket = ? ORDER BY created_at, id`,
		meta.Digest, meta.WithBlanketImplementations)
	if err != nil {
		return nil, wrapStorage("failed to query snapshots", err)
	}
	defer rows.Close()

	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, wrapStorage("failed to read snapshot", err)
		}
		if meta.Label == "" || snap.Label == meta.Label {
			return snap, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("failed to read snapshots", err)
	}
	return nil, nil
}

// List returns snapshots newest first, optionally only those of one crate.
func (s *SnapshotStore) List(ctx context.Context, crate string) ([]Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots`
	var args []any
	if crate != "" {
		query += ` WHERE crate = ?`
		args = append(args, crate)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStorage("failed to list snapshots", err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, wrapStorage("failed to read snapshot", err)
		}
		out = append(out, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("failed to list snapshots", err)
	}
	return out, nil
}

// Get resolves ref as a full id, then a label, then a unique id prefix of at
// least eight characters.
func (s *SnapshotStore) Get(ctx context.Context, ref string) (*Snapshot, error) {
	if ref == "" {
		return nil, errors.New(errors.SnapshotNotFound, "empty snapshot reference", nil)
	}

	lookups := []struct {
		where string
		arg   string
	}{
		{`id = ?`, ref},
		{`label = ?`, ref},
	}
	if len(ref) >= minIDPrefix {
		lookups = append(lookups, struct {
			where string
			arg   string
		}{`id LIKE ? ESCAPE '\'`, escapeLike(ref) + "%"})
	}

	for _, l := range lookups {
		matches, err := s.query(ctx, l.where, l.arg)
		if err != nil {
			return nil, err
		}
		switch len(matches) {
		case 0:
			continue
		case 1:
			return &matches[0], nil
		default:
			return nil, errors.Newf(errors.SnapshotNotFound, "snapshot reference %q is ambiguous", ref).
				WithDetails(map[string]int{"matches": len(matches)})
		}
	}
	return nil, errors.Newf(errors.SnapshotNotFound, "no snapshot matches %q", ref)
}

func (s *SnapshotStore) query(ctx context.Context, where, arg string) ([]Snapshot, error) {
	rows, err := s.db.conn.QueryContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots WHERE `+where+` LIMIT 2`, arg)
	if err != nil {
		return nil, wrapStorage("failed to query snapshots", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, wrapStorage("failed to read snapshot", err)
		}
		out = append(out, *snap)
	}
	return out, wrapStorage("failed to query snapshots", rows.Err())
}

// Load resolves ref and decodes its listing.
func (s *SnapshotStore) Load(ctx context.Context, ref string) (*Snapshot, []publicapi.PublicItem, error) {
	snap, err := s.Get(ctx, ref)
	if err != nil {
		return nil, nil, err
	}

	var payload []byte
	err = s.db.conn.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE id = ?`, snap.ID).Scan(&payload)
	if err != nil {
		return nil, nil, wrapStorage("failed to read snapshot payload", err)
	}
	items, err := decodeListing(payload)
	if err != nil {
		return nil, nil, errors.New(errors.StorageError, "snapshot payload is corrupt", err).
			WithDetails(map[string]string{"id": snap.ID})
	}
	return snap, items, nil
}

// Delete removes the snapshot ref resolves to and returns it.
func (s *SnapshotStore) Delete(ctx context.Context, ref string) (*Snapshot, error) {
	snap, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.conn.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, snap.ID); err != nil {
		return nil, wrapStorage("failed to delete snapshot", err)
	}
	s.db.logger.Info("Snapshot deleted", "id", snap.ID)
	return snap, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(r rowScanner) (*Snapshot, error) {
	var (
		snap    Snapshot
		label   sql.NullString
		created string
	)
	if err := r.Scan(&snap.ID, &snap.Crate, &snap.Version, &label, &snap.Digest,
		&snap.FormatVersion, &snap.WithBlanketImplementations, &created, &snap.ItemCount); err != nil {
		return nil, err
	}
	snap.Label = label.String
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, err
	}
	snap.CreatedAt = t
	return &snap, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// wrapStorage returns nil for nil and passes typed errors through.
func wrapStorage(msg string, err error) error {
	if err == nil {
		return nil
	}
	var pe *errors.PubapiError
	if stderrors.As(err, &pe) {
		return err
	}
	return errors.New(errors.StorageError, msg, err)
}
