package breaking

import (
	"context"
	"log/slog"
	"slices"

	"pubapi/internal/publicapi"
	"pubapi/internal/tokens"
)

// Analyzer diffs public API listings.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer. When logger is non-nil and has debug
// enabled, the sorted inputs of every diff are logged at debug level.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// Between diffs two listings with no diagnostics.
func Between(oldItems, newItems []publicapi.PublicItem) *PublicItemsDiff {
	return (&Analyzer{}).Between(oldItems, newItems)
}

// Between computes which items were removed, changed or added going from
// oldItems to newItems. Both slices are consumed: they are sorted in place and their
// elements move into the result.
//
// Items are matched by position in the sorted order, not by hashing, so
// several items that render identically are each accounted for. Two items
// with the same path and different tokens form one changed pair.
func (a *Analyzer) Between(oldItems, newItems []publicapi.PublicItem) *PublicItemsDiff {
	publicapi.Sort(oldItems)
	publicapi.Sort(newItems)
	a.dump(oldItems, newItems)

	diff := &PublicItemsDiff{
		Removed: []publicapi.PublicItem{},
		Changed: []ChangedPublicItem{},
		Added:   []publicapi.PublicItem{},
	}

	// Both sides are stacks drained from the high end. A side that is
	// not consumed by a comparison stays on its stack for the next round.
	i, j := len(oldItems)-1, len(newItems)-1
	for i >= 0 || j >= 0 {
		switch {
		case j < 0:
			diff.Removed = append(diff.Removed, oldItems[i])
			i--
		case i < 0:
			diff.Added = append(diff.Added, newItems[j])
			j--
		default:
			o, n := oldItems[i], newItems[j]
			if o.SamePath(n) && !tokens.Equal(o.Tokens, n.Tokens) {
				diff.Changed = append(diff.Changed, ChangedPublicItem{Old: o, New: n})
				i--
				j--
				continue
			}
			switch c := publicapi.Compare(o, n); {
			case c < 0:
				diff.Added = append(diff.Added, n)
				j--
			case c > 0:
				diff.Removed = append(diff.Removed, o)
				i--
			default:
				i--
				j--
			}
		}
	}

	publicapi.Sort(diff.Removed)
	slices.SortFunc(diff.Changed, ChangedPublicItem.Compare)
	publicapi.Sort(diff.Added)
	return diff
}

func (a *Analyzer) dump(oldItems, newItems []publicapi.PublicItem) {
	if a.logger == nil || !a.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	a.logger.Debug("Diffing public items",
		"old", publicapi.Strings(oldItems),
		"new", publicapi.Strings(newItems),
	)
}

// Summary counts the entries of a diff, also grouped by item kind.
func (d *PublicItemsDiff) Summary() *Summary {
	s := &Summary{
		Removed: len(d.Removed),
		Changed: len(d.Changed),
		Added:   len(d.Added),
		ByKind:  make(map[string]int),
	}
	s.TotalChanges = s.Removed + s.Changed + s.Added

	for _, item := range d.Removed {
		s.ByKind[item.Kind()]++
	}
	for _, c := range d.Changed {
		s.ByKind[c.New.Kind()]++
	}
	for _, item := range d.Added {
		s.ByKind[item.Kind()]++
	}
	return s
}

// Changes flattens the diff into report rows: removed, then changed, then
// added, each in sorted order.
func (d *PublicItemsDiff) Changes() []APIChange {
	changes := make([]APIChange, 0, len(d.Removed)+len(d.Changed)+len(d.Added))
	for _, item := range d.Removed {
		changes = append(changes, APIChange{Kind: ChangeRemoved, Path: item.PathString(), OldValue: item.String()})
	}
	for _, c := range d.Changed {
		changes = append(changes, APIChange{
			Kind:     ChangeChanged,
			Path:     c.New.PathString(),
			OldValue: c.Old.String(),
			NewValue: c.New.String(),
		})
	}
	for _, item := range d.Added {
		changes = append(changes, APIChange{Kind: ChangeAdded, Path: item.PathString(), NewValue: item.String()})
	}
	return changes
}

// Violations returns the kinds in deny that the diff contains.
func (d *PublicItemsDiff) Violations(deny []ChangeKind) []ChangeKind {
	var out []ChangeKind
	for _, k := range AllChangeKinds {
		if slices.Contains(deny, k) && d.Count(k) > 0 {
			out = append(out, k)
		}
	}
	return out
}
