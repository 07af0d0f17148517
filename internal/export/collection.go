// internal/export/collection.go
package export

// Collection is one flattened resource set headed for a single CSV
// file: a stable column order shared by every row, and rows in the
// order the server returned them.
type Collection struct {
	// FileName is the output file name, e.g. "users.csv".
	FileName string
	Columns  []string
	Rows     [][]string
}
