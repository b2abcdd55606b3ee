package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"codesnap/internal/domain"
	"codesnap/internal/port"
)

// SnapshotUseCase scans a project and writes its snapshot report.
type SnapshotUseCase struct {
	walker port.FileWalker
	writer port.ReportWriter
	log    port.Logger
}

// NewSnapshotUseCase creates a new snapshot use case.
func NewSnapshotUseCase(walker port.FileWalker, writer port.ReportWriter, log port.Logger) *SnapshotUseCase {
	return &SnapshotUseCase{
		walker: walker,
		writer: writer,
		log:    log,
	}
}

// Collect walks root and returns the selected files, deduplicated and sorted
// by relative path, together with any walk warnings.
func (u *SnapshotUseCase) Collect(root string) ([]domain.FileRecord, []domain.WalkWarning, error) {
	walked, err := u.walker.Walk(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	for _, w := range walked.Warnings {
		u.log.LogWarn(fmt.Sprintf("skipping %s: %v", w.Path, w.Err))
	}

	files := SortAndDedupe(walked.Files)
	for _, f := range files {
		u.log.LogTrace(fmt.Sprintf("matched %s", f.RelPath))
	}
	return files, walked.Warnings, nil
}

// Snapshot collects the files under root and writes the report to output.
// Unreadable files are annotated in the report and listed in the result;
// only a failure to produce the report itself is returned as an error.
func (u *SnapshotUseCase) Snapshot(root, output string, progress port.ProgressFunc) (*domain.SnapshotResult, error) {
	start := time.Now()
	result := &domain.SnapshotResult{
		RunID:      uuid.NewString(),
		BaseDir:    root,
		OutputPath: output,
	}

	u.log.LogInfo(fmt.Sprintf("snapshot %s: scanning %s", result.RunID, root))

	files, warnings, err := u.Collect(root)
	if err != nil {
		return nil, err
	}
	result.FilesMatched = len(files)
	result.Warnings = warnings

	u.log.LogInfo(fmt.Sprintf("found %d files, writing %s", len(files), output))

	stats, err := u.writer.WriteReport(output, files, progress)
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	for _, f := range stats.ReadFailures {
		u.log.LogWarn(fmt.Sprintf("could not read %s: %v", f.Record.Path, f.Err))
	}

	result.FilesWritten = stats.FilesWritten
	result.BytesWritten = stats.BytesWritten
	result.ReadFailures = stats.ReadFailures
	result.Duration = time.Since(start)

	u.log.LogDebug(fmt.Sprintf("snapshot %s finished in %s", result.RunID, result.Duration))
	return result, nil
}

// SortAndDedupe removes duplicate records and orders the rest by relative
// path (byte-wise), breaking ties on the absolute path.
func SortAndDedupe(files []domain.FileRecord) []domain.FileRecord {
	seen := make(map[domain.FileRecord]bool, len(files))
	out := make([]domain.FileRecord, 0, len(files))
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].RelPath != out[j].RelPath {
			return out[i].RelPath < out[j].RelPath
		}
		return out[i].Path < out[j].Path
	})
	return out
}
