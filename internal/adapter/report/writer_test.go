package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codesnap/internal/domain"
)

// mapReader serves file contents from memory and fails for paths in errs.
type mapReader struct {
	files map[string]string
	errs  map[string]error
	calls []string
}

func (m *mapReader) ReadFile(path string) (string, error) {
	m.calls = append(m.calls, path)
	if err, ok := m.errs[path]; ok {
		return "", err
	}
	return m.files[path], nil
}

func records(rels ...string) []domain.FileRecord {
	out := make([]domain.FileRecord, 0, len(rels))
	for _, rel := range rels {
		out = append(out, domain.FileRecord{Path: "/base/" + rel, RelPath: rel})
	}
	return out
}

func TestRender_Format(t *testing.T) {
	reader := &mapReader{files: map[string]string{
		"/base/a.ts":         "export const a = 1;\n",
		"/base/package.json": "{}",
	}}
	var buf bytes.Buffer

	stats, err := NewWriter(reader, "SNAPSHOT").Render(&buf, records("a.ts", "package.json"), nil)
	require.NoError(t, err)

	expected := "# SNAPSHOT\n\n" +
		"1. a.ts\n" +
		"2. package.json\n" +
		"\n\n" +
		"# CONTENIDO DE ARCHIVOS\n\n" +
		"\n// ====== [1] a.ts ======\n" +
		"export const a = 1;\n" +
		"\n\n" +
		"\n// ====== [2] package.json ======\n" +
		"{}" +
		"\n\n"
	assert.Equal(t, expected, buf.String())
	assert.Equal(t, 2, stats.FilesWritten)
	assert.Equal(t, int64(len(expected)), stats.BytesWritten)
	assert.Empty(t, stats.ReadFailures)
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	stats, err := NewWriter(&mapReader{}, "T").Render(&buf, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "# T\n\n\n\n# CONTENIDO DE ARCHIVOS\n\n", buf.String())
	assert.Zero(t, stats.FilesWritten)
}

func TestRender_ReadErrorIsInlineAndNonFatal(t *testing.T) {
	denied := errors.New("open /base/b.ts: permission denied")
	reader := &mapReader{
		files: map[string]string{"/base/a.ts": "A", "/base/c.ts": "C"},
		errs:  map[string]error{"/base/b.ts": denied},
	}
	var buf bytes.Buffer

	stats, err := NewWriter(reader, "T").Render(&buf, records("a.ts", "b.ts", "c.ts"), nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "2. b.ts\n")
	assert.Contains(t, out, "\n// ====== [2] b.ts (ERROR DE LECTURA) ======\n"+
		"// No se pudo leer el archivo. Error: open /base/b.ts: permission denied\n\n")
	assert.Contains(t, out, "\n// ====== [3] c.ts ======\nC\n\n")
	assert.Less(t, strings.Index(out, "[2] b.ts"), strings.Index(out, "[3] c.ts"))

	assert.Equal(t, 2, stats.FilesWritten)
	require.Len(t, stats.ReadFailures, 1)
	assert.Equal(t, "b.ts", stats.ReadFailures[0].Record.RelPath)
	assert.ErrorIs(t, stats.ReadFailures[0].Err, denied)
	assert.Equal(t, []string{"/base/a.ts", "/base/b.ts", "/base/c.ts"}, reader.calls)
}

func TestRender_ContentRoundTrip(t *testing.T) {
	contents := map[string]string{
		"/base/a.ts":  "line1\r\nline2\r\n",
		"/base/b.md":  "no trailing newline",
		"/base/c.css": "\n\nleading blank lines\n",
	}
	rels := []string{"a.ts", "b.md", "c.css"}
	var buf bytes.Buffer

	_, err := NewWriter(&mapReader{files: contents}, "T").Render(&buf, records(rels...), nil)
	require.NoError(t, err)

	out := buf.String()
	for i, rel := range rels {
		start := strings.Index(out, "// ====== ["+string(rune('1'+i))+"] "+rel+" ======\n")
		require.GreaterOrEqual(t, start, 0)
		body := out[start+len("// ====== [1] "+rel+" ======\n"):]
		if i+1 < len(rels) {
			next := "\n// ====== [" + string(rune('2'+i)) + "]"
			body = body[:strings.Index(body, next)]
		}
		assert.Equal(t, contents["/base/"+rel], strings.TrimSuffix(body, "\n\n"))
	}
}

func TestRender_Progress(t *testing.T) {
	reader := &mapReader{files: map[string]string{}}
	var seen []string
	progress := func(processed, total int, current string) {
		assert.Equal(t, 3, total)
		seen = append(seen, current)
		assert.Len(t, seen, processed)
	}

	_, err := NewWriter(reader, "T").Render(&bytes.Buffer{}, records("x", "y", "z"), progress)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, seen)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestRender_DestinationErrorIsFatal(t *testing.T) {
	_, err := NewWriter(&mapReader{}, "T").Render(failingWriter{}, records("a.ts"), nil)
	require.Error(t, err)
	assert.EqualError(t, err, "disk full")
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(src, []byte("A"), 0644))
	out := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(out, []byte("stale report that is much longer than the new one"), 0644))

	reader := &mapReader{files: map[string]string{src: "A"}}
	files := []domain.FileRecord{{Path: src, RelPath: "a.ts"}}

	stats, err := NewWriter(reader, "T").WriteReport(out, files, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "# T\n\n1. a.ts\n\n\n# CONTENIDO DE ARCHIVOS\n\n\n// ====== [1] a.ts ======\nA\n\n", string(data))
	assert.Equal(t, int64(len(data)), stats.BytesWritten)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary files must not be left behind")
}

func TestWriteReport_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	dir := t.TempDir()

	fresh := filepath.Join(dir, "fresh.txt")
	_, err := NewWriter(&mapReader{}, "T").WriteReport(fresh, nil, nil)
	require.NoError(t, err)
	info, err := os.Stat(fresh)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	private := filepath.Join(dir, "private.txt")
	require.NoError(t, os.WriteFile(private, []byte("old"), 0600))
	require.NoError(t, os.Chmod(private, 0600))
	_, err = NewWriter(&mapReader{}, "T").WriteReport(private, nil, nil)
	require.NoError(t, err)
	info, err = os.Stat(private)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestWriteReport_MissingDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "report.txt")

	_, err := NewWriter(&mapReader{}, "T").WriteReport(out, nil, nil)
	require.Error(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteReport_DestinationIsDirectory(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.txt")
	require.NoError(t, os.MkdirAll(filepath.Join(out, "child"), 0755))

	_, err := NewWriter(&mapReader{}, "T").WriteReport(out, nil, nil)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be removed on failure")
}

func TestLockPath(t *testing.T) {
	a := LockPath("/x/report.txt")
	assert.Equal(t, a, LockPath("/x/report.txt"))
	assert.NotEqual(t, a, LockPath("/y/report.txt"))
	assert.Equal(t, filepath.Clean(os.TempDir()), filepath.Dir(a))
}
