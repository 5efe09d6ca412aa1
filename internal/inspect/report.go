// Package inspect provides reflection helpers: structured reports of
// arbitrary Go values, recursive search through nested data, and type
// schema inference for dynamic documents.
package inspect

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// MethodInfo describes one method of a type.
type MethodInfo struct {
	Name      string
	Signature string
}

// FieldInfo describes one struct field.
type FieldInfo struct {
	Name     string
	Type     string
	Tag      string
	Exported bool
}

// Report is a structured description of a value and its type.
type Report struct {
	Type       string
	Kind       string
	Underlying string
	Methods    []MethodInfo
	Fields     []FieldInfo
	Value      string
}

// NewReport builds a report for v via reflection.
func NewReport(v any) *Report {
	if v == nil {
		return &Report{Type: "<nil>", Kind: "invalid", Value: "<nil>"}
	}

	t := reflect.TypeOf(v)
	r := &Report{
		Type:  t.String(),
		Kind:  t.Kind().String(),
		Value: fmt.Sprintf("%+v", v),
	}

	elem := t
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem != t {
		r.Underlying = elem.String()
	}

	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		r.Methods = append(r.Methods, MethodInfo{
			Name:      m.Name,
			Signature: m.Type.String(),
		})
	}
	// Value methods are a subset of pointer methods; report the full set.
	if t.Kind() != reflect.Pointer {
		pt := reflect.PointerTo(t)
		for i := 0; i < pt.NumMethod(); i++ {
			m := pt.Method(i)
			if _, ok := t.MethodByName(m.Name); ok {
				continue
			}
			r.Methods = append(r.Methods, MethodInfo{
				Name:      m.Name,
				Signature: m.Type.String(),
			})
		}
	}
	sort.Slice(r.Methods, func(i, j int) bool { return r.Methods[i].Name < r.Methods[j].Name })

	if elem.Kind() == reflect.Struct {
		for i := 0; i < elem.NumField(); i++ {
			f := elem.Field(i)
			r.Fields = append(r.Fields, FieldInfo{
				Name:     f.Name,
				Type:     f.Type.String(),
				Tag:      string(f.Tag),
				Exported: f.IsExported(),
			})
		}
	}
	return r
}

// Format renders the report section by section.
func (r *Report) Format() string {
	var b strings.Builder

	section := func(name, detail string) {
		b.WriteString(name)
		b.WriteString(":\n")
		b.WriteString(detail)
		b.WriteString("\n\n")
	}

	section("Type", r.Type)
	section("Kind", r.Kind)
	if r.Underlying != "" {
		section("Underlying", r.Underlying)
	}

	if len(r.Fields) > 0 {
		var fields strings.Builder
		for _, f := range r.Fields {
			vis := ""
			if !f.Exported {
				vis = " (unexported)"
			}
			fmt.Fprintf(&fields, "    %s %s%s", f.Name, f.Type, vis)
			if f.Tag != "" {
				fmt.Fprintf(&fields, " `%s`", f.Tag)
			}
			fields.WriteString("\n")
		}
		section("Fields", strings.TrimRight(fields.String(), "\n"))
	}

	if len(r.Methods) > 0 {
		var methods strings.Builder
		for _, m := range r.Methods {
			fmt.Fprintf(&methods, "    %s %s\n", m.Name, m.Signature)
		}
		section("Methods", strings.TrimRight(methods.String(), "\n"))
	}

	section("Value", r.Value)
	return strings.TrimRight(b.String(), "\n") + "\n"
}
