// Package config loads the lint configuration document.
//
// The document is YAML (fplint.yml) or TOML (fplint.toml):
//
//	filters:
//	  <identifier>:
//	    - specifier: <regex matched against the problem location>
//	exclusions:
//	  - <check name>
//	params:
//	  <check parameter>: <value>
//
// Filtered problems are still detected but neither reported nor counted.
// Excluded checks do not run at all.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/LeStarch/fplint/internal/check"
)

//go:embed schema.json
var schemaText string

const schemaURL = "https://fplint.local/config.schema.json"

// DefaultNames are the configuration files looked up when none is given,
// in order.
var DefaultNames = []string{"fplint.yml", "fplint.yaml", "fplint.toml"}

// ConfigurationError reports an unusable configuration document.
type ConfigurationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Path == "" {
		return msg
	}
	return e.Path + ": " + msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Config is the normalized configuration.
type Config struct {
	Exclusions []string
	Filters    []check.Filter
	Params     check.Params
}

// RunOptions returns the engine options the configuration describes.
func (c *Config) RunOptions() check.RunOptions {
	return check.RunOptions{Exclusions: c.Exclusions, Filters: c.Filters, Params: c.Params}
}

type document struct {
	Filters    map[string][]*filterSpec `json:"filters"`
	Exclusions []string                 `json:"exclusions"`
	Params     map[string]any           `json:"params"`
}

type filterSpec struct {
	Specifier string `json:"specifier"`
}

// Find returns the first default configuration file present in dir, or
// "" when there is none.
func Find(dir string) string {
	for _, name := range DefaultNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load reads and validates the configuration at path against the given
// checks. An empty path yields an empty configuration.
func Load(path string, checks []check.Check) (*Config, error) {
	if path == "" {
		return &Config{Params: check.Params{}}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Reason: "read failed", Err: err}
	}
	cfg, err := Parse(data, filepath.Ext(path), checks)
	if err != nil {
		var ce *ConfigurationError
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a configuration document. ext selects the syntax: ".toml"
// for TOML, ".yml" or ".yaml" for YAML.
func Parse(data []byte, ext string, checks []check.Check) (*Config, error) {
	raw, err := decode(data, strings.ToLower(ext))
	if err != nil {
		return nil, err
	}
	generic, err := toJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := validate(generic); err != nil {
		return nil, err
	}
	var doc document
	buf, _ := json.Marshal(generic)
	if err := json.Unmarshal(buf, &doc); err != nil {
		return nil, &ConfigurationError{Reason: "malformed document", Err: err}
	}
	return normalize(&doc, checks)
}

func decode(data []byte, ext string) (any, error) {
	var raw any
	switch ext {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &ConfigurationError{Reason: "failed to parse YAML", Err: err}
		}
	case ".toml":
		m := map[string]any{}
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, &ConfigurationError{Reason: "failed to parse TOML", Err: err}
		}
		raw = m
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unsupported configuration format %q", ext)}
	}
	return raw, nil
}

// toJSON converts a decoded document into the plain JSON value model the
// schema validator expects.
func toJSON(raw any) (any, error) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, &ConfigurationError{Reason: "configuration must be a mapping with string keys", Err: err}
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &ConfigurationError{Reason: "malformed document", Err: err}
	}
	return v, nil
}

func validate(v any) error {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(schemaText)); err != nil {
		return fmt.Errorf("config schema load failed: %w", err)
	}
	schema, err := c.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("config schema compile failed: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return &ConfigurationError{Reason: "schema validation failed", Err: err}
	}
	return nil
}

func normalize(doc *document, checks []check.Check) (*Config, error) {
	cfg := &Config{Params: check.Params{}}

	known := check.KnownIdentifiers(checks)
	ids := make([]string, 0, len(doc.Filters))
	for id := range doc.Filters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !slices.Contains(known, id) {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown identifier '%s' specified", id)}
		}
		var specifiers []string
		for _, s := range doc.Filters[id] {
			if s != nil {
				specifiers = append(specifiers, s.Specifier)
			} else {
				specifiers = append(specifiers, "")
			}
		}
		f, err := check.NewFilter(id, specifiers...)
		if err != nil {
			return nil, &ConfigurationError{Reason: "invalid specifier", Err: err}
		}
		cfg.Filters = append(cfg.Filters, f)
	}

	names := check.Names(checks)
	for _, name := range doc.Exclusions {
		if !slices.Contains(names, name) {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown check '%s' in exclusions", name)}
		}
		cfg.Exclusions = append(cfg.Exclusions, name)
	}

	params := check.KnownParams(checks)
	for name, v := range doc.Params {
		if !slices.ContainsFunc(params, func(p check.Param) bool { return p.Name == name }) {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown parameter '%s'", name)}
		}
		cfg.Params[name] = fmt.Sprint(v)
	}
	return cfg, nil
}
