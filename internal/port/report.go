package port

import "codesnap/internal/domain"

// ProgressFunc is called after each file has been written to the report.
type ProgressFunc func(processed, total int, currentFile string)

// ReportWriter renders the index and content sections to the report at path.
type ReportWriter interface {
	WriteReport(path string, files []domain.FileRecord, progress ProgressFunc) (*domain.ReportStats, error)
}
