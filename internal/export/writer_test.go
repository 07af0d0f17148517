package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteCSV_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := Collection{
		FileName: "users.csv",
		Columns:  []string{"id", "email", "status"},
		Rows: [][]string{
			{"u1", "ada@example.com", "ACTIVE"},
			{"u2", "", "DEPROVISIONED"},
			{"u3", "comma, quoted \"value\"", ""},
		},
	}
	require.NoError(t, WriteCSV(zap.NewNop().Sugar(), dir, c))

	f, err := os.Open(filepath.Join(dir, "users.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, c.Columns, records[0])
	for i, row := range c.Rows {
		assert.Equal(t, row, records[i+1])
	}
}

func TestWriteCSV_EmptyCollectionIsHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	c := Collection{FileName: "group_apps_g1.csv", Columns: []string{"id", "label"}}
	require.NoError(t, WriteCSV(zap.NewNop().Sugar(), dir, c))

	b, err := os.ReadFile(filepath.Join(dir, "group_apps_g1.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,label\n", string(b))
}

func TestWriteCSV_Overwrites(t *testing.T) {
	dir := t.TempDir()
	log := zap.NewNop().Sugar()
	require.NoError(t, WriteCSV(log, dir, Collection{FileName: "x.csv", Columns: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}}))
	require.NoError(t, WriteCSV(log, dir, Collection{FileName: "x.csv", Columns: []string{"a"}, Rows: [][]string{{"9"}}}))

	b, err := os.ReadFile(filepath.Join(dir, "x.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a\n9\n", string(b))
}

func TestCleanDir_StartsFresh(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.csv"), []byte("old"), 0o644))

	require.NoError(t, CleanDir(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
