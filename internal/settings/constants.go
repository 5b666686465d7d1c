package settings

import (
	"fmt"
	"os"
)

// Constants holds the named values of an AC constants file. Keys are
// lower-cased; sections are flattened and later sections win.
type Constants map[string]string

// LoadConstants reads the INI constants file at path.
func LoadConstants(path string) (Constants, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read constants: %w", err)
	}
	defer f.Close()
	doc, err := ParseINI(f)
	if err != nil {
		return nil, fmt.Errorf("parse constants %s: %w", path, err)
	}
	c := Constants{}
	for _, name := range doc.sections() {
		for k, v := range doc[name] {
			c[k] = v
		}
	}
	return c, nil
}

// Lookup returns the value of a constant by case-insensitive name. Safe to
// call on a nil Constants.
func (c Constants) Lookup(name string) (string, bool) {
	v, ok := c[lower(name)]
	return v, ok
}
