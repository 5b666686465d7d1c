package fpxml

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Roots is an ordered list of build roots that included description files
// are resolved against.
type Roots []string

// Find resolves an included file. Absolute paths are used as-is; relative
// paths are tried against every root in order, then against the directory
// of the including file.
func (r Roots) Find(rel, from string) (string, error) {
	rel = filepath.FromSlash(strings.TrimSpace(rel))
	if filepath.IsAbs(rel) {
		if exists(rel) {
			return rel, nil
		}
		return "", fmt.Errorf("%s does not exist", rel)
	}
	tried := make([]string, 0, len(r)+1)
	for _, root := range r {
		if root == "" {
			continue
		}
		candidate := filepath.Join(root, rel)
		if exists(candidate) {
			return candidate, nil
		}
		tried = append(tried, root)
	}
	if from != "" {
		candidate := filepath.Join(filepath.Dir(from), rel)
		if exists(candidate) {
			return candidate, nil
		}
		tried = append(tried, filepath.Dir(from))
	}
	return "", fmt.Errorf("could not find %s in any of [%s]", rel, strings.Join(tried, ", "))
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
