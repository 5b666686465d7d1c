package reconcile

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/LeStarch/fplint/internal/fpxml"
	"github.com/LeStarch/fplint/internal/model"
	"github.com/LeStarch/fplint/internal/settings"
)

// Loader reads a topology and everything it imports from disk and
// reconciles it into a model.Topology.
type Loader struct {
	// SettingsDir holds settings.ini. Empty means the parent of the
	// topology file's directory.
	SettingsDir string
	Log         zerolog.Logger
}

// LoadTopology loads and reconciles the topology file at path. Every
// failure is a *LoadError.
func (l *Loader) LoadTopology(path string) (*model.Topology, error) {
	top, err := l.load(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return top, nil
}

// session caches decoded files for the duration of one load.
type session struct {
	log    zerolog.Logger
	roots  fpxml.Roots
	consts fpxml.Constants
	ports  map[string]*fpxml.PortFile
}

func (l *Loader) load(path string) (*model.Topology, error) {
	dir := l.SettingsDir
	if dir == "" {
		dir = settings.DirFor(path)
	}
	s, err := settings.Load(dir)
	if err != nil {
		return nil, err
	}
	sess := &session{
		log:   l.Log.With().Str("topology", filepath.Base(path)).Logger(),
		roots: fpxml.Roots(s.BuildRoots()),
		ports: map[string]*fpxml.PortFile{},
	}
	if s.ACConstants != "" {
		consts, err := s.Constants()
		if err != nil {
			return nil, err
		}
		sess.consts = consts
	}
	sess.log.Debug().Strs("roots", sess.roots).Msg("loading topology")

	tf, err := fpxml.ParseTopology(path)
	if err != nil {
		return nil, err
	}
	specs := map[string]*model.ComponentSpec{}
	seen := map[string]bool{}
	for _, imp := range tf.ComponentImports {
		file, err := sess.roots.Find(imp, path)
		if err != nil {
			return nil, err
		}
		if seen[file] {
			continue
		}
		seen[file] = true
		spec, err := sess.component(file)
		if err != nil {
			return nil, err
		}
		if prior, ok := specs[spec.Kind]; ok {
			if err := model.MergeComponentSpec(prior, spec); err != nil {
				return nil, fmt.Errorf("component %s imported twice: %w", spec.Kind, err)
			}
			continue
		}
		specs[spec.Kind] = spec
	}
	return BuildTopology(tf, specs)
}

func (s *session) component(path string) (*model.ComponentSpec, error) {
	s.log.Debug().Str("path", path).Msg("loading component")
	cf, err := fpxml.ParseComponent(path, s.consts)
	if err != nil {
		return nil, err
	}
	ports := map[string]*fpxml.PortFile{}
	for _, imp := range cf.PortImports {
		file, err := s.roots.Find(imp, path)
		if err != nil {
			return nil, err
		}
		pf, ok := s.ports[file]
		if !ok {
			if pf, err = fpxml.ParsePort(file); err != nil {
				return nil, err
			}
			s.ports[file] = pf
		}
		ports[pf.Name] = pf
	}
	return BuildComponentSpec(cf, ports)
}
