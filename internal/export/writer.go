// internal/export/writer.go
package export

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"oktaexport/pkg/errs"
	"oktaexport/pkg/logger"
)

// CleanDir removes and recreates the output directory so each run
// starts from an empty slate and the archive membership is exactly this
// run's files.
func CleanDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return &errs.IOError{Op: "clean", Path: dir, Err: err}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &errs.IOError{Op: "clean", Path: dir, Err: err}
	}
	return nil
}

// WriteCSV writes one collection: header row in schema order, one data
// row per record, empty string for absent values. An empty collection
// still produces a header-only file so the schema stays visible.
func WriteCSV(log logger.Sugared, dir string, c Collection) error {
	path := filepath.Join(dir, c.FileName)
	f, err := os.Create(path)
	if err != nil {
		return &errs.IOError{Op: "write", Path: path, Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(c.Columns); err != nil {
		return &errs.IOError{Op: "write", Path: path, Err: err}
	}
	for _, row := range c.Rows {
		if err := w.Write(row); err != nil {
			return &errs.IOError{Op: "write", Path: path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &errs.IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &errs.IOError{Op: "write", Path: path, Err: err}
	}
	log.Infow("csv exported", "path", path, "rows", len(c.Rows))
	return nil
}
