package export

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oktaexport/pkg/errs"
)

func TestArchive_ContainsExactlyTheOutputFiles(t *testing.T) {
	dir := t.TempDir()
	want := map[string]string{
		"users.csv":  "id\nu1\n",
		"groups.csv": "id\ng1\n",
		"apps.csv":   "id\na1\n",
	}
	for name, content := range want {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	archivePath := filepath.Join(t.TempDir(), "okta_data.zip")

	require.NoError(t, Archive(zap.NewNop().Sugar(), dir, archivePath))

	zr, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer zr.Close()

	got := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		got[f.Name] = string(b)
	}
	assert.Equal(t, want, got, "archive membership is exactly the directory contents, flat")
}

func TestArchive_EmptyDirFails(t *testing.T) {
	dir := t.TempDir()
	err := Archive(zap.NewNop().Sugar(), dir, filepath.Join(t.TempDir(), "out.zip"))
	require.Error(t, err)
	var ioe *errs.IOError
	assert.ErrorAs(t, err, &ioe)
}

func TestArchive_MissingDirFails(t *testing.T) {
	err := Archive(zap.NewNop().Sugar(), filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "out.zip"))
	require.Error(t, err)
	var ioe *errs.IOError
	assert.ErrorAs(t, err, &ioe)
}
