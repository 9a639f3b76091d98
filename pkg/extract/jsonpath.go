package extract

import (
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// NotFound is stored for a JSONPath that selects nothing in a row
const NotFound = "Not Found"

// ApplyJSONPaths replaces rec with one entry per path, keyed by the path's
// alias or the path itself. Paths that select nothing, or select null, yield
// NotFound. Paths with an empty expression are ignored; when none remain rec
// is returned unchanged.
func ApplyJSONPaths(rec *Record, paths []JSONPath) *Record {
	active := make([]JSONPath, 0, len(paths))
	for _, p := range paths {
		if p.Path != "" {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return rec
	}

	var doc any = map[string]any{}
	if rec != nil {
		doc = rec.document()
	}

	out := NewRecord()
	for _, p := range active {
		v := lookupPath(doc, p.Path)
		if v == nil {
			v = NotFound
		}
		out.Set(p.key(), v)
	}
	return out
}

// lookupPath returns the first value selected by path, or nil. Paths may
// omit the leading "$", so "a.b[0]" and "$.a.b[0]" are equivalent. Property
// names are taken literally, so keys such as "content-type" or "user id"
// resolve; anything beyond names and [n] subscripts is parsed as full
// JSONPath.
func lookupPath(doc any, path string) any {
	expr, ok := simplePath(path)
	if !ok {
		var err error
		if expr, err = jp.ParseString(normalizePath(path)); err != nil {
			return nil
		}
	}
	results := expr.Get(doc)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// simplePath builds the expression for a path made only of dot separated
// property names and [n] subscripts
func simplePath(path string) (jp.Expr, bool) {
	if strings.HasPrefix(path, "@") {
		return nil, false
	}
	rest := strings.TrimPrefix(path, "$")
	if rest == "" {
		return nil, false
	}
	if rest != path && rest[0] != '.' && rest[0] != '[' {
		return nil, false
	}

	expr := jp.R()
	first := rest == path
	for len(rest) > 0 {
		switch {
		case rest[0] == '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, false
			}
			n, err := strconv.Atoi(rest[1:end])
			if err != nil {
				return nil, false
			}
			expr = expr.N(n)
			rest = rest[end+1:]
		case rest[0] == '.' || first:
			if !first {
				rest = rest[1:]
			}
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			name := rest[:end]
			if name == "" || name == "*" || strings.ContainsAny(name, "]'\"") {
				return nil, false
			}
			expr = expr.C(name)
			rest = rest[end:]
		default:
			return nil, false
		}
		first = false
	}
	return expr, true
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "$"), strings.HasPrefix(path, "@"):
		return path
	case strings.HasPrefix(path, "["):
		return "$" + path
	default:
		return "$." + path
	}
}
