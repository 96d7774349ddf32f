package manifest

import "time"

// SnapshotName returns the default snapshot name for t.
func SnapshotName(t time.Time) string {
	return "snapshot_" + t.UTC().Format("20060102_150405")
}

// Snapshot returns a copy of m in which every repository listed in heads
// has its tag set to the recorded commit id. Other repositories and all
// other fields are unchanged. m is not modified.
func Snapshot(m *Manifest, heads map[RepoKey]string) *Manifest {
	out := m.Clone()
	for i := range out.Repositories {
		if id, ok := heads[out.Repositories[i].Key()]; ok {
			out.Repositories[i].Tag = id
		}
	}
	return out
}
