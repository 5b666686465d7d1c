// Package fixture materializes txtar archives of F´ description files into
// temporary directory trees for tests.
package fixture

import (
	"embed"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

//go:embed testdata/*.txtar
var archives embed.FS

// Project writes the named embedded archives (testdata/<name>.txtar) into
// one fresh temporary directory, in order, and returns its root.
func Project(t testing.TB, names ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range names {
		data, err := archives.ReadFile("testdata/" + name + ".txtar")
		if err != nil {
			t.Fatalf("fixture %s: %v", name, err)
		}
		Extract(t, root, string(data))
	}
	return root
}

// Write parses archive text and writes its files below a fresh temporary
// directory, returning the root.
func Write(t testing.TB, archive string) string {
	t.Helper()
	root := t.TempDir()
	Extract(t, root, archive)
	return root
}

// Extract writes the files of archive text below root, overwriting any
// file of the same name.
func Extract(t testing.TB, root, archive string) {
	t.Helper()
	ar := txtar.Parse([]byte(archive))
	for _, f := range ar.Files {
		path := filepath.Join(root, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("fixture mkdir: %v", err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatalf("fixture write: %v", err)
		}
	}
}
