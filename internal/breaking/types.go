package breaking

import (
	"pubapi/internal/publicapi"
)

// ChangeKind is the class a diffed item falls into.
type ChangeKind string

const (
	ChangeRemoved ChangeKind = "removed" // Only in the old listing
	ChangeChanged ChangeKind = "changed" // Same path, different signature
	ChangeAdded   ChangeKind = "added"   // Only in the new listing
)

// AllChangeKinds lists the kinds in output order.
var AllChangeKinds = []ChangeKind{ChangeRemoved, ChangeChanged, ChangeAdded}

// ParseChangeKind accepts "removed", "changed" or "added".
func ParseChangeKind(s string) (ChangeKind, bool) {
	for _, k := range AllChangeKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// ChangedPublicItem pairs the old and new rendering of one path.
type ChangedPublicItem struct {
	Old publicapi.PublicItem `json:"old" yaml:"old"`
	New publicapi.PublicItem `json:"new" yaml:"new"`
}

// Compare orders by the old item, then the new one.
func (c ChangedPublicItem) Compare(other ChangedPublicItem) int {
	if n := publicapi.Compare(c.Old, other.Old); n != 0 {
		return n
	}
	return publicapi.Compare(c.New, other.New)
}

// PublicItemsDiff partitions two listings. Every slice is sorted.
type PublicItemsDiff struct {
	Removed []publicapi.PublicItem `json:"removed" yaml:"removed"`
	Changed []ChangedPublicItem    `json:"changed" yaml:"changed"`
	Added   []publicapi.PublicItem `json:"added" yaml:"added"`
}

// IsEmpty reports whether the two listings were identical.
func (d *PublicItemsDiff) IsEmpty() bool {
	return len(d.Removed) == 0 && len(d.Changed) == 0 && len(d.Added) == 0
}

// Count returns the number of entries of one kind.
func (d *PublicItemsDiff) Count(kind ChangeKind) int {
	switch kind {
	case ChangeRemoved:
		return len(d.Removed)
	case ChangeChanged:
		return len(d.Changed)
	case ChangeAdded:
		return len(d.Added)
	}
	return 0
}

// Summary provides an overview of the changes
type Summary struct {
	TotalChanges int            `json:"totalChanges" yaml:"totalChanges"`
	Removed      int            `json:"removed" yaml:"removed"`
	Changed      int            `json:"changed" yaml:"changed"`
	Added        int            `json:"added" yaml:"added"`
	ByKind       map[string]int `json:"byKind,omitempty" yaml:"byKind,omitempty"`
}

// APIChange is one flattened diff entry, convenient for reports.
type APIChange struct {
	Kind     ChangeKind `json:"kind" yaml:"kind"`
	Path     string     `json:"path" yaml:"path"`
	OldValue string     `json:"oldValue,omitempty" yaml:"oldValue,omitempty"`
	NewValue string     `json:"newValue,omitempty" yaml:"newValue,omitempty"`
}
