package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "report.pdf", "report.pdf"},
		{"keeps spaces dots underscores", "my file_v2.tar.gz", "my file_v2.tar.gz"},
		{"strips path separators", "../../etc/passwd", "....etcpasswd"},
		{"strips shell metacharacters", "a;b&c|d.txt", "abcd.txt"},
		{"strips unicode", "résumé.doc", "rsum.doc"},
		{"trims trailing whitespace", "notes.txt   ", "notes.txt"},
		{"interior spaces survive", "a b.txt", "a b.txt"},
		{"everything stripped", "<>:?*", ""},
		{"empty input", "", ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, SanitizeFilename(tc.in))
		})
	}
}

func TestServiceSave(t *testing.T) {
	t.Parallel()

	svc, err := NewService(t.TempDir(), nil)
	require.NoError(t, err)

	filename, path, size, err := svc.Save(context.Background(), "report.pdf", strings.NewReader("hello"))
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", filename)
	assert.Equal(t, int64(5), size)
	assert.True(t, filepath.IsAbs(path))

	base := filepath.Base(path)
	require.True(t, strings.HasSuffix(base, "_report.pdf"),
		"storage name %q should end with the sanitized filename", base)
	prefix := strings.TrimSuffix(base, "_report.pdf")
	assert.Len(t, prefix, 32, "storage prefix should be 32 hex characters")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestServiceSaveUniqueNames(t *testing.T) {
	t.Parallel()

	svc, err := NewService(t.TempDir(), nil)
	require.NoError(t, err)

	_, first, _, err := svc.Save(context.Background(), "same.txt", strings.NewReader("a"))
	require.NoError(t, err)
	_, second, _, err := svc.Save(context.Background(), "same.txt", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestServiceSaveRejectsEmptyFilename(t *testing.T) {
	t.Parallel()

	svc, err := NewService(t.TempDir(), nil)
	require.NoError(t, err)

	_, _, _, err = svc.Save(context.Background(), "<>*?", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrEmptyFilename)

	_, _, _, err = svc.Save(context.Background(), "   ", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrEmptyFilename)
}

func TestServiceOpen(t *testing.T) {
	t.Parallel()

	svc, err := NewService(t.TempDir(), nil)
	require.NoError(t, err)

	_, path, _, err := svc.Save(context.Background(), "data.bin", strings.NewReader("payload"))
	require.NoError(t, err)

	f, err := svc.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	buf := make([]byte, 7)
	_, err = f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(buf))
}

func TestServiceRemove(t *testing.T) {
	t.Parallel()

	svc, err := NewService(t.TempDir(), nil)
	require.NoError(t, err)

	_, path, _, err := svc.Save(context.Background(), "gone.txt", strings.NewReader("x"))
	require.NoError(t, err)

	svc.Remove(context.Background(), path)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing a path that is already gone must not panic or error.
	svc.Remove(context.Background(), path)
}

func TestNewServiceCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewService(dir, nil)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
