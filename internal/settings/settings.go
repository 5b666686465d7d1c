// Package settings locates the build roots of an F´ deployment from its
// settings.ini file.
//
// The file is optional. Without it the settings directory itself is the
// only build root.
//
//	[fprime]
//	framework_path: ../fprime
//	project_root: ..
//	library_locations: ../lib/a:../lib/b
//	ac_constants: ../config/AcConstants.ini
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the settings file looked up in the settings directory.
const FileName = "settings.ini"

// Settings holds the resolved locations of one deployment. All paths are
// absolute or relative to the process working directory.
type Settings struct {
	Dir              string
	FrameworkPath    string
	ProjectRoot      string
	LibraryLocations []string
	ACConstants      string
}

// Load reads settings.ini from dir. A missing file yields defaults rooted
// at dir; it is not an error.
func Load(dir string) (*Settings, error) {
	s := &Settings{Dir: dir, ProjectRoot: dir}
	path := filepath.Join(dir, FileName)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()
	doc, err := ParseINI(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if v, ok := doc.Get("fprime", "framework_path"); ok && v != "" {
		s.FrameworkPath = s.resolve(v)
	}
	if v, ok := doc.Get("fprime", "project_root"); ok && v != "" {
		s.ProjectRoot = s.resolve(v)
	}
	if v, ok := doc.Get("fprime", "library_locations"); ok {
		for _, loc := range splitList(v) {
			s.LibraryLocations = append(s.LibraryLocations, s.resolve(loc))
		}
	}
	if v, ok := doc.Get("fprime", "ac_constants"); ok && v != "" {
		s.ACConstants = s.resolve(v)
	}
	return s, nil
}

// DirFor returns the default settings directory of a topology file: the
// parent of the directory holding it.
func DirFor(topologyPath string) string {
	return filepath.Dir(filepath.Dir(topologyPath))
}

// BuildRoots returns the directories included files are resolved against,
// in search order: framework, project root, then libraries.
func (s *Settings) BuildRoots() []string {
	var roots []string
	seen := map[string]bool{}
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		roots = append(roots, p)
	}
	add(s.FrameworkPath)
	add(s.ProjectRoot)
	for _, l := range s.LibraryLocations {
		add(l)
	}
	return roots
}

// Constants loads the AC constants file, or returns nil when none is
// configured.
func (s *Settings) Constants() (Constants, error) {
	if s.ACConstants == "" {
		return nil, nil
	}
	return LoadConstants(s.ACConstants)
}

func (s *Settings) resolve(p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.Dir, p)
}

func splitList(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ':' || r == ';' || r == '\n'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
