// Package fpxml decodes F´ description files into flat records: port
// interfaces (*PortAi.xml), component definitions (*ComponentAi.xml) and
// topology wiring lists (*TopologyAppAi.xml). It does no reconciliation;
// see package reconcile for that.
package fpxml

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/LeStarch/fplint/internal/model"
)

// Constants resolves "$NAME" references used in place of literal numbers.
type Constants interface {
	Lookup(name string) (string, bool)
}

// decodeFile decodes the XML document at path into v.
func decodeFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := xml.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// parseKind maps a port kind attribute onto a role and its invocation
// flavor ("sync", "async", "guarded" or empty).
func parseKind(kind string) (model.Role, string, error) {
	k := strings.ToLower(strings.TrimSpace(kind))
	switch {
	case k == "":
		return model.RoleUnset, "", nil
	case k == "output":
		return model.Output, "", nil
	case k == "input":
		return model.Input, "", nil
	case strings.HasSuffix(k, "_input"):
		return model.Input, strings.TrimSuffix(k, "_input"), nil
	}
	return model.RoleUnset, "", fmt.Errorf("unknown port kind %q", kind)
}

// parseCount parses a cardinality that is either a literal or a "$NAME"
// constant reference. Empty means unset.
func parseCount(raw string, consts Constants) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if name, ok := strings.CutPrefix(raw, "$"); ok {
		if consts == nil {
			return 0, fmt.Errorf("constant %s referenced but no constants file is configured", raw)
		}
		val, found := consts.Lookup(name)
		if !found {
			return 0, fmt.Errorf("undefined constant %s", raw)
		}
		raw = strings.TrimSpace(val)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid count %q", raw)
	}
	return n, nil
}

// parseIndex parses a connection endpoint index. Empty means 0.
func parseIndex(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid port number %q", raw)
	}
	return n, nil
}
