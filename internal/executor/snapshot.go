package executor

import (
	"encoding/json"
	"fmt"

	"github.com/harrison/dispatch/internal/filelock"
)

// FileSnapshotSink persists progress snapshots to a JSON file so external
// tooling can watch a running plan. Writes are locked and atomic; a watcher
// reading the file never sees a partial snapshot.
type FileSnapshotSink struct {
	path string
}

// NewFileSnapshotSink creates a sink writing to the given path.
func NewFileSnapshotSink(path string) *FileSnapshotSink {
	return &FileSnapshotSink{path: path}
}

// WriteSnapshot serializes the snapshot and replaces the file atomically.
func (s *FileSnapshotSink) WriteSnapshot(snapshot ProgressSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal progress snapshot: %w", err)
	}
	if err := filelock.LockAndWrite(s.path, data); err != nil {
		return fmt.Errorf("failed to write progress snapshot: %w", err)
	}
	return nil
}
