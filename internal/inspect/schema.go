package inspect

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScalarType classifies a leaf value in a dynamic document.
type ScalarType string

const (
	TypeNull   ScalarType = "null"
	TypeBool   ScalarType = "bool"
	TypeInt    ScalarType = "int"
	TypeFloat  ScalarType = "float"
	TypeString ScalarType = "string"
	TypeUUID   ScalarType = "uuid"
	TypeURL    ScalarType = "url"
	TypePath   ScalarType = "path"
	TypeDate   ScalarType = "date"
)

// ClassifyString inspects a string's content: numbers, booleans, UUIDs,
// URLs, dates, and path-looking strings are recognized; anything else is a
// plain string.
func ClassifyString(s string) ScalarType {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return TypeString
	}

	if _, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return TypeInt
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return TypeFloat
	}
	switch strings.ToLower(trimmed) {
	case "true", "false":
		return TypeBool
	}
	if _, err := uuid.Parse(trimmed); err == nil && len(trimmed) == 36 {
		return TypeUUID
	}
	if u, err := url.Parse(trimmed); err == nil && u.Scheme != "" && u.Host != "" {
		return TypeURL
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
		if _, err := time.Parse(layout, trimmed); err == nil {
			return TypeDate
		}
	}
	if looksLikePath(trimmed) {
		return TypePath
	}
	return TypeString
}

// looksLikePath is a lexical check only; it never touches the filesystem.
func looksLikePath(s string) bool {
	if strings.ContainsAny(s, " \t\n") {
		return false
	}
	return strings.HasPrefix(s, "/") || strings.HasPrefix(s, "./") ||
		strings.HasPrefix(s, "../") || strings.HasPrefix(s, "~/")
}

// Schema infers a schema for a dynamic value: maps produce nested schemas,
// sequences produce element-type summaries, strings are content-classified,
// and other scalars report their Go type.
func Schema(v any) any {
	switch val := v.(type) {
	case nil:
		return string(TypeNull)
	case string:
		return string(ClassifyString(val))
	case []byte:
		return string(ClassifyString(string(val)))
	case bool:
		return string(TypeBool)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Schema(item)
		}
		return out
	case []any:
		return sequenceSchema(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return string(TypeInt)
	case reflect.Float32, reflect.Float64:
		return string(TypeFloat)
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key())] = Schema(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
		return sequenceSchema(items)
	default:
		return rv.Type().String()
	}
}

// sequenceSchema summarizes a sequence: homogeneous sequences collapse to
// [elemType]; mixed ones list each distinct element type, sorted.
func sequenceSchema(items []any) any {
	if len(items) == 0 {
		return "[]"
	}
	distinct := make(map[string]bool)
	for _, item := range items {
		distinct[schemaKey(Schema(item))] = true
	}
	if len(distinct) == 1 {
		for k := range distinct {
			return "[" + k + "]"
		}
	}
	keys := make([]string, 0, len(distinct))
	for k := range distinct {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "[" + strings.Join(keys, "|") + "]"
}

func schemaKey(schema any) string {
	if s, ok := schema.(string); ok {
		return s
	}
	return fmt.Sprint(schema)
}
