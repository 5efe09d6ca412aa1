package inspect

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Match is one hit from DeepSearch: where it was found and what was there.
type Match struct {
	Path  string
	Value any
}

// SearchOptions tunes DeepSearch.
type SearchOptions struct {
	// StringifyTarget also matches values whose fmt.Sprint equals the
	// target's, so DeepSearch(data, 42) finds the string "42" too.
	StringifyTarget bool
	// MaxDepth bounds recursion; 0 means a generous default.
	MaxDepth int
}

const defaultMaxDepth = 64

// DeepSearch walks a nested value (maps, slices, arrays, structs, pointers,
// interfaces) and returns every location whose value equals target. Paths
// use dot notation with [i] for sequence indexes. Cycles are detected via
// visited pointers.
func DeepSearch(data, target any, opts SearchOptions) []Match {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	s := &searcher{
		opts:    opts,
		visited: make(map[uintptr]bool),
	}
	s.target = reflect.ValueOf(target)
	if opts.StringifyTarget {
		s.targetStr = fmt.Sprint(target)
	}
	s.walk(reflect.ValueOf(data), "", 0)
	return s.matches
}

type searcher struct {
	opts      SearchOptions
	target    reflect.Value
	targetStr string
	visited   map[uintptr]bool
	matches   []Match
}

func (s *searcher) walk(v reflect.Value, path string, depth int) {
	if !v.IsValid() || depth > s.opts.MaxDepth {
		return
	}

	if s.hit(v) {
		s.matches = append(s.matches, Match{Path: rootPath(path), Value: v.Interface()})
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return
		}
		ptr := v.Pointer()
		if s.visited[ptr] {
			return
		}
		s.visited[ptr] = true
		s.walk(v.Elem(), path, depth+1)

	case reflect.Interface:
		if !v.IsNil() {
			s.walk(v.Elem(), path, depth+1)
		}

	case reflect.Map:
		if v.IsNil() {
			return
		}
		ptr := v.Pointer()
		if s.visited[ptr] {
			return
		}
		s.visited[ptr] = true
		iter := v.MapRange()
		for iter.Next() {
			s.walk(iter.Value(), joinPath(path, fmt.Sprint(iter.Key())), depth+1)
		}

	case reflect.Slice:
		if v.IsNil() {
			return
		}
		fallthrough
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			s.walk(v.Index(i), path+"["+strconv.Itoa(i)+"]", depth+1)
		}

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			s.walk(v.Field(i), joinPath(path, t.Field(i).Name), depth+1)
		}
	}
}

// hit reports whether v equals the search target.
func (s *searcher) hit(v reflect.Value) bool {
	if !v.CanInterface() {
		return false
	}
	// Containers are traversed, not compared, except to an identical container.
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct,
		reflect.Pointer, reflect.Interface:
		if s.target.IsValid() && v.Kind() == s.target.Kind() {
			return reflect.DeepEqual(v.Interface(), s.target.Interface())
		}
		return false
	}

	if s.target.IsValid() && v.Type() == s.target.Type() &&
		reflect.DeepEqual(v.Interface(), s.target.Interface()) {
		return true
	}
	if s.opts.StringifyTarget && fmt.Sprint(v.Interface()) == s.targetStr {
		return true
	}
	return false
}

func joinPath(base, elem string) string {
	if base == "" {
		return elem
	}
	return base + "." + elem
}

func rootPath(path string) string {
	if path == "" {
		return "."
	}
	return strings.TrimPrefix(path, ".")
}
