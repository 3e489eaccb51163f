package spaview

import (
	"fmt"
	"strings"
)

type segment struct {
	name  string
	param bool
	value string
}

func (s segment) String() string {
	if s.param {
		return ":" + s.name
	}
	return s.name
}

// parsePattern splits a route pattern into segments. The root marker ("/" or "")
// yields no segments.
func parsePattern(pattern string) (segments []segment, err error) {
	for _, part := range splitPath(pattern) {
		switch {
		case strings.HasPrefix(part, ":"):
			name := part[1:]
			if name == "" {
				return nil, fmt.Errorf("pattern %s: empty parameter name", pattern)
			}
			if !validParamName(name) {
				return nil, fmt.Errorf("pattern %s: invalid parameter name %q", pattern, name)
			}
			segments = append(segments, segment{name: name, param: true})
		case strings.ContainsAny(part, "*?#:"):
			return nil, fmt.Errorf("pattern %s: invalid segment %q", pattern, part)
		default:
			segments = append(segments, segment{name: part})
		}
	}
	return segments, nil
}

func validParamName(name string) bool {
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// trimQuery drops the query string and fragment of a location.
func trimQuery(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		return location[:i]
	}
	return location
}

// splitPath splits a path on "/" and drops empty segments.
func splitPath(p string) []string {
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// joinSegments renders segments back into an absolute path, substituting
// parameter values where they are set.
func joinSegments(segments []segment) string {
	if len(segments) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, s := range segments {
		sb.WriteByte('/')
		if s.value != "" {
			sb.WriteString(s.value)
		} else {
			sb.WriteString(s.String())
		}
	}
	return sb.String()
}

// shapeKey identifies a pattern with parameter names erased, so "a/:id" and
// "a/:name" collide.
func shapeKey(segments []segment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		if s.param {
			parts[i] = ":"
		} else {
			parts[i] = s.name
		}
	}
	return strings.Join(parts, "/")
}

// comparePrecedence orders sibling patterns by segment kind: at the first position
// where the kinds differ a literal sorts before a parameter. Patterns whose kinds
// agree over their common prefix compare equal and keep declaration order.
func comparePrecedence(a, b []segment) int {
	for i := range min(len(a), len(b)) {
		if a[i].param == b[i].param {
			continue
		}
		if !a[i].param {
			return -1
		}
		return 1
	}
	return 0
}
