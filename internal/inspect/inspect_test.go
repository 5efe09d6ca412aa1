package inspect

import (
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type probe struct {
	Name    string `yaml:"name"`
	Count   int
	hidden  bool
	Friends []string
}

func (p probe) Greet() string   { return "hi " + p.Name }
func (p *probe) Rename(n string) { p.Name = n }

func TestNewReportStruct(t *testing.T) {
	r := NewReport(probe{Name: "x"})

	if r.Type != "inspect.probe" {
		t.Errorf("Type = %q", r.Type)
	}
	if r.Kind != "struct" {
		t.Errorf("Kind = %q", r.Kind)
	}

	var fieldNames []string
	for _, f := range r.Fields {
		fieldNames = append(fieldNames, f.Name)
	}
	want := []string{"Name", "Count", "hidden", "Friends"}
	if diff := cmp.Diff(want, fieldNames); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}

	if r.Fields[0].Tag != `yaml:"name"` {
		t.Errorf("tag = %q", r.Fields[0].Tag)
	}
	if r.Fields[2].Exported {
		t.Error("hidden reported as exported")
	}

	var methodNames []string
	for _, m := range r.Methods {
		methodNames = append(methodNames, m.Name)
	}
	sort.Strings(methodNames)
	if diff := cmp.Diff([]string{"Greet", "Rename"}, methodNames); diff != "" {
		t.Errorf("methods (-want +got):\n%s", diff)
	}
}

func TestNewReportPointer(t *testing.T) {
	r := NewReport(&probe{})
	if r.Kind != "ptr" {
		t.Errorf("Kind = %q", r.Kind)
	}
	if r.Underlying != "inspect.probe" {
		t.Errorf("Underlying = %q", r.Underlying)
	}
	if len(r.Fields) != 4 {
		t.Errorf("fields through pointer = %d, want 4", len(r.Fields))
	}
}

func TestNewReportNil(t *testing.T) {
	r := NewReport(nil)
	if r.Type != "<nil>" || r.Kind != "invalid" {
		t.Errorf("nil report = %+v", r)
	}
}

func TestFormatSections(t *testing.T) {
	out := NewReport(probe{Name: "x"}).Format()
	for _, section := range []string{"Type:", "Kind:", "Fields:", "Methods:", "Value:"} {
		if !strings.Contains(out, section) {
			t.Errorf("Format output missing %q:\n%s", section, out)
		}
	}
}

func TestDeepSearchNestedMap(t *testing.T) {
	data := map[string]any{
		"a": map[string]any{"b": "c"},
		"list": []any{"x", "c", map[string]any{"deep": "c"}},
	}

	matches := DeepSearch(data, "c", SearchOptions{})
	var paths []string
	for _, m := range matches {
		paths = append(paths, m.Path)
	}
	sort.Strings(paths)

	want := []string{"a.b", "list[1]", "list[2].deep"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
}

func TestDeepSearchStruct(t *testing.T) {
	data := probe{Name: "alice", Friends: []string{"bob", "alice"}}
	matches := DeepSearch(data, "alice", SearchOptions{})

	var paths []string
	for _, m := range matches {
		paths = append(paths, m.Path)
	}
	sort.Strings(paths)
	if diff := cmp.Diff([]string{"Friends[1]", "Name"}, paths); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
}

func TestDeepSearchStringify(t *testing.T) {
	data := map[string]any{"n": 42, "s": "42"}

	strict := DeepSearch(data, 42, SearchOptions{})
	if len(strict) != 1 {
		t.Fatalf("strict matches = %d, want 1", len(strict))
	}

	loose := DeepSearch(data, 42, SearchOptions{StringifyTarget: true})
	if len(loose) != 2 {
		t.Fatalf("stringified matches = %d, want 2", len(loose))
	}
}

func TestDeepSearchCycleSafe(t *testing.T) {
	type node struct {
		Label string
		Next  *node
	}
	a := &node{Label: "a"}
	b := &node{Label: "b", Next: a}
	a.Next = b

	matches := DeepSearch(a, "b", SearchOptions{})
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if matches[0].Path != "Next.Label" {
		t.Errorf("path = %q", matches[0].Path)
	}
}

func TestClassifyString(t *testing.T) {
	cases := []struct {
		in   string
		want ScalarType
	}{
		{"42", TypeInt},
		{"-7", TypeInt},
		{"3.14", TypeFloat},
		{"true", TypeBool},
		{"False", TypeBool},
		{"550e8400-e29b-41d4-a716-446655440000", TypeUUID},
		{"https://example.com/x", TypeURL},
		{"/etc/fstab", TypePath},
		{"./relative/file", TypePath},
		{"2024-03-18", TypeDate},
		{"2024-03-18T10:00:00Z", TypeDate},
		{"plain words here", TypeString},
		{"", TypeString},
	}
	for _, tc := range cases {
		if got := ClassifyString(tc.in); got != tc.want {
			t.Errorf("ClassifyString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSchemaNested(t *testing.T) {
	doc := map[string]any{
		"id":    "550e8400-e29b-41d4-a716-446655440000",
		"count": 3,
		"tags":  []any{"a", "b"},
		"mixed": []any{1, "x"},
		"meta":  map[string]any{"enabled": true, "ratio": 0.5},
		"empty": nil,
	}

	got := Schema(doc).(map[string]any)
	want := map[string]any{
		"id":    "uuid",
		"count": "int",
		"tags":  "[string]",
		"mixed": "[int|string]",
		"meta":  map[string]any{"enabled": "bool", "ratio": "float"},
		"empty": "null",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("schema (-want +got):\n%s", diff)
	}
}
