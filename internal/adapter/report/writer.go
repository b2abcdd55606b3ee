package report

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"codesnap/internal/domain"
	"codesnap/internal/port"
)

const (
	contentHeader   = "# CONTENIDO DE ARCHIVOS"
	readErrorMarker = "(ERROR DE LECTURA)"
)

// Writer renders a snapshot report: a numbered index of relative paths
// followed by every file's content under a delimiter line.
type Writer struct {
	reader port.FileReader
	title  string
}

func NewWriter(reader port.FileReader, title string) *Writer {
	return &Writer{
		reader: reader,
		title:  title,
	}
}

// Render writes the report for files, in the given order, to out. Files that
// cannot be read get an inline error annotation and are returned in
// ReportStats.ReadFailures; only write errors on out abort rendering.
func (w *Writer) Render(out io.Writer, files []domain.FileRecord, progress port.ProgressFunc) (*domain.ReportStats, error) {
	cw := &countingWriter{w: out}
	bw := bufio.NewWriter(cw)
	stats := &domain.ReportStats{}

	fmt.Fprintf(bw, "# %s\n\n", w.title)
	for i, f := range files {
		fmt.Fprintf(bw, "%d. %s\n", i+1, f.RelPath)
	}
	bw.WriteString("\n\n")
	bw.WriteString(contentHeader + "\n\n")

	for i, f := range files {
		content, err := w.reader.ReadFile(f.Path)
		if err != nil {
			stats.ReadFailures = append(stats.ReadFailures, domain.ReadFailure{Record: f, Err: err})
			fmt.Fprintf(bw, "\n// ====== [%d] %s %s ======\n", i+1, f.RelPath, readErrorMarker)
			fmt.Fprintf(bw, "// No se pudo leer el archivo. Error: %v\n\n", err)
		} else {
			fmt.Fprintf(bw, "\n// ====== [%d] %s ======\n", i+1, f.RelPath)
			bw.WriteString(content)
			bw.WriteString("\n\n")
			stats.FilesWritten++
		}

		// bufio errors are sticky; stop as soon as the destination fails.
		if err := bw.Flush(); err != nil {
			return stats, err
		}
		if progress != nil {
			progress(i+1, len(files), f.RelPath)
		}
	}

	if err := bw.Flush(); err != nil {
		return stats, err
	}
	stats.BytesWritten = cw.n
	return stats, nil
}

// WriteReport renders the report into a temporary file next to path and
// renames it over path once complete. Concurrent writers of the same path are
// serialized with an advisory lock.
func (w *Writer) WriteReport(path string, files []domain.FileRecord, progress port.ProgressFunc) (*domain.ReportStats, error) {
	lock := flock.New(LockPath(path))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	defer lock.Unlock()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".codesnap-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create report file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	stats, err := w.Render(tmp, files, progress)
	if err != nil {
		return stats, err
	}
	if err := tmp.Sync(); err != nil {
		return stats, fmt.Errorf("failed to sync report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return stats, fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Chmod(tmpPath, reportMode(path)); err != nil {
		return stats, fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return stats, fmt.Errorf("failed to replace %s: %w", path, err)
	}
	committed = true

	return stats, nil
}

// reportMode keeps the permissions of an existing report and uses 0644 for a
// new one.
func reportMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return 0644
}

// LockPath returns the lock file guarding writes to the report at path. It
// lives in the system temp directory so the project tree stays clean.
func LockPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), "codesnap-"+hex.EncodeToString(sum[:8])+".lock")
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
