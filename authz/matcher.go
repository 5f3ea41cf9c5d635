package authz

import (
	"errors"
	"strings"
)

const (
	anySegment = "*"
	anySuffix  = "**"
)

func compilePattern(pattern string) ([]string, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, errors.New("pattern must start with /")
	}
	segs := splitPath(pattern)
	for i, s := range segs {
		if s == anySuffix && i != len(segs)-1 {
			return nil, errors.New(`"**" is only allowed as the last segment`)
		}
		if strings.Contains(s, anySuffix) && s != anySuffix {
			return nil, errors.New(`"**" must be a whole segment`)
		}
		if s == ":" {
			return nil, errors.New("parameter segment needs a name")
		}
	}
	return segs, nil
}

// splitPath splits a path into segments, ignoring empty ones so "/a//b/"
// and "/a/b" compare equal. The root path has no segments.
func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// matchSegments reports whether path segments satisfy pattern segments.
func matchSegments(pattern, path []string) bool {
	for i, p := range pattern {
		if p == anySuffix {
			return true
		}
		if i >= len(path) {
			return false
		}
		if p == anySegment || strings.HasPrefix(p, ":") {
			continue
		}
		if p != path[i] {
			return false
		}
	}
	return len(pattern) == len(path)
}
