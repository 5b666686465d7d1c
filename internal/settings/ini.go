package settings

// ini.go - reader for the INI dialect used by F´ settings and constants
// files: [section] headers, key = value or key: value pairs, ; and #
// comments, and indented continuation lines appended to the previous value.

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// INI maps lower-cased section names to their key/value pairs. Keys are
// lower-cased as well. Pairs before the first header land in section "".
type INI map[string]map[string]string

// ParseINI reads an INI document.
func ParseINI(r io.Reader) (INI, error) {
	doc := INI{"": {}}
	section, lastKey := "", ""
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		line := strings.TrimSpace(raw)
		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}
		if raw[0] == ' ' || raw[0] == '\t' {
			if lastKey == "" {
				return nil, fmt.Errorf("line %d: continuation without a key", lineNo)
			}
			prev := doc[section][lastKey]
			if prev != "" {
				prev += "\n"
			}
			doc[section][lastKey] = prev + line
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("line %d: unterminated section header", lineNo)
			}
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			if doc[section] == nil {
				doc[section] = map[string]string{}
			}
			lastKey = ""
			continue
		}
		i := strings.IndexAny(line, "=:")
		if i <= 0 {
			return nil, fmt.Errorf("line %d: expected key = value", lineNo)
		}
		lastKey = strings.ToLower(strings.TrimSpace(line[:i]))
		doc[section][lastKey] = strings.TrimSpace(line[i+1:])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Get returns the value of key in section.
func (d INI) Get(section, key string) (string, bool) {
	s, ok := d[strings.ToLower(section)]
	if !ok {
		return "", false
	}
	v, ok := s[strings.ToLower(key)]
	return v, ok
}

// sections returns the section names in sorted order, "" first.
func (d INI) sections() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
