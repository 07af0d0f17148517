// internal/export/archive.go
package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"oktaexport/pkg/errs"
	"oktaexport/pkg/logger"
)

// Archive zips every regular file in dir into a single flat archive at
// archivePath. Entry names are the bare file names, sorted, so two runs
// over identical output produce identical member lists.
func Archive(log logger.Sugared, dir, archivePath string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &errs.IOError{Op: "archive", Path: dir, Err: err}
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return &errs.IOError{Op: "archive", Path: dir, Err: fmt.Errorf("no output files to archive")}
	}
	sort.Strings(names)

	out, err := os.Create(archivePath)
	if err != nil {
		return &errs.IOError{Op: "archive", Path: archivePath, Err: err}
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, name := range names {
		if err := addFile(zw, filepath.Join(dir, name), name); err != nil {
			return &errs.IOError{Op: "archive", Path: name, Err: err}
		}
	}
	if err := zw.Close(); err != nil {
		return &errs.IOError{Op: "archive", Path: archivePath, Err: err}
	}
	if err := out.Close(); err != nil {
		return &errs.IOError{Op: "archive", Path: archivePath, Err: err}
	}
	log.Infow("archive created", "path", archivePath, "files", len(names))
	return nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
