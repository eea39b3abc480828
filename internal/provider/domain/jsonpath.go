package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	indexSuffixPattern = regexp.MustCompile(`^(\[\d+\])+$`)
	indexPattern       = regexp.MustCompile(`\[(\d+)\]`)
)

// JSONPath is a parsed path such as "data[0].id" or "data.0.id". Numeric segments
// index arrays.
type JSONPath []string

// ParseJSONPath splits p on dots and expands "name[n]" segments into a key followed by
// its indexes. Empty segments and stray brackets are rejected.
func ParseJSONPath(p string) (JSONPath, error) {
	if p == "" {
		return nil, errors.New("path is empty")
	}

	var path JSONPath
	for i, s := range strings.Split(p, ".") {
		if s == "" {
			return nil, errors.New("path has an empty segment")
		}

		open := strings.IndexByte(s, '[')
		if open < 0 {
			if strings.ContainsRune(s, ']') {
				return nil, fmt.Errorf("segment %q has an unmatched ]", s)
			}
			path = append(path, s)
			continue
		}

		key, suffix := s[:open], s[open:]
		if strings.ContainsRune(key, ']') || !indexSuffixPattern.MatchString(suffix) {
			return nil, fmt.Errorf("segment %q: indexes must look like name[0]", s)
		}
		// A bare "[n]" is only meaningful against a top-level array.
		if key == "" && i > 0 {
			return nil, fmt.Errorf("segment %q: index must follow a key", s)
		}
		if key != "" {
			path = append(path, key)
		}
		for _, m := range indexPattern.FindAllStringSubmatch(suffix, -1) {
			path = append(path, m[1])
		}
	}
	return path, nil
}

// Lookup walks doc, a value produced by encoding/json, and returns the value at the path.
func (p JSONPath) Lookup(doc any) (any, bool) {
	current := doc
	for _, segment := range p {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func (p JSONPath) String() string {
	return strings.Join(p, ".")
}
