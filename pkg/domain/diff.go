package domain

// SnapshotDiff represents the changes between two topology snapshots.
// It is designed to be serialized to JSON so clients can tell whether a rebuild changed anything.
type SnapshotDiff struct {
	Sequence uint64   `json:"sequence"`
	Added    []string `json:"added,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	// Changed lists segments whose endpoints, valve or reservation differ.
	Changed []string `json:"changed,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, every segment of newSnap is reported as added (initial load).
// Returns nil when nothing changed.
func Diff(oldSnap, newSnap *TopologySnapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{Sequence: newSnap.Sequence}

	previous := make(map[string]Segment, oldSnap.Len())
	if oldSnap != nil {
		for _, seg := range oldSnap.Segments {
			previous[seg.Name] = seg
		}
	}

	seen := make(map[string]struct{}, len(newSnap.Segments))
	for _, seg := range newSnap.Segments {
		seen[seg.Name] = struct{}{}
		old, ok := previous[seg.Name]
		switch {
		case !ok:
			diff.Added = append(diff.Added, seg.Name)
		case old != seg:
			diff.Changed = append(diff.Changed, seg.Name)
		}
	}

	if oldSnap != nil {
		for _, seg := range oldSnap.Segments {
			if _, ok := seen[seg.Name]; !ok {
				diff.Removed = append(diff.Removed, seg.Name)
			}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}
