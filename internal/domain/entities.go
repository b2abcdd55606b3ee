package domain

import "time"

// FileRecord is a file selected for the snapshot. RelPath is relative to the
// base directory and always uses "/" as separator.
type FileRecord struct {
	Path    string
	RelPath string
}

type ReadFailure struct {
	Record FileRecord
	Err    error
}

type WalkWarning struct {
	Path string
	Err  error
}

type WalkResult struct {
	Files    []FileRecord
	Warnings []WalkWarning
}

// ReportStats describes what the report writer produced.
type ReportStats struct {
	FilesWritten int
	BytesWritten int64
	ReadFailures []ReadFailure
}

type SnapshotResult struct {
	RunID        string
	BaseDir      string
	OutputPath   string
	FilesMatched int
	FilesWritten int
	BytesWritten int64
	ReadFailures []ReadFailure
	Warnings     []WalkWarning
	Duration     time.Duration
}
