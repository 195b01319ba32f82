package filex

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureSubdDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureSubdDir("preupload")
	require.NoError(t, err)

	want := filepath.Join(tmp, "preupload")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureSubdDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	first, err := EnsureSubdDir("preupload")
	require.NoError(t, err)

	second, err := EnsureSubdDir("preupload")
	require.NoError(t, err)

	require.Equal(t, first, second)
	fi, err := os.Stat(second)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureSubdDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("preupload", []byte("x"), 0o660))

	_, err := EnsureSubdDir("preupload")
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestEnsureSubdDir_Absolute(t *testing.T) {
	want := filepath.Join(t.TempDir(), "abs", "out")

	got, err := EnsureSubdDir(want)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestSaveAs(t *testing.T) {
	dir := t.TempDir()

	t.Run("writes under base name", func(t *testing.T) {
		path, err := SaveAs(dir, "../../etc/logo.png", func(w io.Writer) error {
			_, err := w.Write([]byte("png"))
			return err
		})
		require.NoError(t, err)
		require.Equal(t, filepath.Join(dir, "logo.png"), path)

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "png", string(b))
	})

	t.Run("failed write leaves nothing", func(t *testing.T) {
		_, err := SaveAs(dir, "broken.bin", func(w io.Writer) error {
			_, _ = w.Write([]byte("half"))
			return errors.New("connection reset")
		})
		require.Error(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			require.NotEqual(t, "broken.bin", e.Name())
			require.False(t, strings.HasPrefix(e.Name(), ".part-"), "temp file left behind: %s", e.Name())
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := SaveAs(dir, "..", func(io.Writer) error { return nil })
		require.Error(t, err)
	})
}
