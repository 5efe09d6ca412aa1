// Package yamlutil loads and rewrites YAML documents that use
// CloudFormation short tags (!Ref, !GetAtt, !Sub, ...). Short tags are
// normalized to their long-form map shape on load and can be folded back
// to short tags on dump, so templates survive a parse/transform/write
// round trip.
package yamlutil

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// intrinsics maps each supported short tag (without the leading !) to true.
// Ref and Condition expand to bare keys; the rest become Fn::<name>.
var intrinsics = map[string]bool{
	"Ref": true, "Condition": true,
	"GetAtt": true, "Sub": true, "Join": true, "Select": true,
	"Split": true, "FindInMap": true, "GetAZs": true, "ImportValue": true,
	"Base64": true, "Cidr": true, "If": true, "Not": true, "And": true,
	"Or": true, "Equals": true, "Transform": true,
}

func longKey(name string) string {
	if name == "Ref" || name == "Condition" {
		return name
	}
	return "Fn::" + name
}

// Load parses YAML and expands every short intrinsic tag into its long-form
// map shape. The returned node preserves document key order.
func Load(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Kind == 0 {
		// Empty document.
		return &doc, nil
	}
	if err := expandTags(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// expandTags rewrites !Name nodes into {<longKey>: payload} mappings,
// depth first so nested intrinsics expand too.
func expandTags(n *yaml.Node) error {
	for _, child := range n.Content {
		if err := expandTags(child); err != nil {
			return err
		}
	}

	if !strings.HasPrefix(n.Tag, "!") || strings.HasPrefix(n.Tag, "!!") {
		return nil
	}
	name := strings.TrimPrefix(n.Tag, "!")
	if !intrinsics[name] {
		return fmt.Errorf("unsupported tag %s at line %d", n.Tag, n.Line)
	}

	payload := *n
	payload.Tag = ""
	payload.Style &^= yaml.TaggedStyle
	switch n.Kind {
	case yaml.ScalarNode:
		payload.Tag = "!!str"
		if name == "GetAtt" {
			// Short form "Resource.Attribute" is a two-element list long form.
			parts := strings.SplitN(n.Value, ".", 2)
			if len(parts) == 2 {
				seq := yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
				for _, p := range parts {
					seq.Content = append(seq.Content,
						&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p})
				}
				payload = seq
			}
		}
	case yaml.SequenceNode:
		payload.Tag = "!!seq"
	case yaml.MappingNode:
		payload.Tag = "!!map"
	default:
		return fmt.Errorf("unsupported node kind for tag %s at line %d", n.Tag, n.Line)
	}

	key := yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: longKey(name)}
	value := payload

	n.Kind = yaml.MappingNode
	n.Tag = "!!map"
	n.Value = ""
	n.Style = 0
	n.Content = []*yaml.Node{&key, &value}
	return nil
}

// Options controls Dump output.
type Options struct {
	LongForm bool // keep Fn::* maps instead of folding back to short tags
	Indent   int  // defaults to 2
}

// Dump serializes the node. Unless LongForm is set, single-key intrinsic
// maps are folded back into short tags first.
func Dump(doc *yaml.Node, opts Options) ([]byte, error) {
	if doc.Kind == 0 {
		return nil, nil
	}
	if !opts.LongForm {
		foldTags(doc)
	}

	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(unwrapDocument(doc)); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unwrapDocument(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		return n.Content[0]
	}
	return n
}

// foldTags rewrites single-key {Fn::Name: payload} (and {Ref: ...}) maps
// back into !Name short-tag nodes, depth first.
func foldTags(n *yaml.Node) {
	for _, child := range n.Content {
		foldTags(child)
	}

	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return
	}
	key, value := n.Content[0], n.Content[1]
	name, ok := intrinsicName(key.Value)
	if !ok {
		return
	}
	// A value that already carries a short tag cannot take a second one;
	// directly nested intrinsics keep the outer map in long form.
	if strings.HasPrefix(value.Tag, "!") && !strings.HasPrefix(value.Tag, "!!") {
		return
	}

	folded := *value
	folded.Tag = "!" + name
	if name == "GetAtt" && value.Kind == yaml.SequenceNode {
		parts := make([]string, 0, len(value.Content))
		for _, p := range value.Content {
			if p.Kind != yaml.ScalarNode {
				return // non-scalar attribute path stays long form
			}
			parts = append(parts, p.Value)
		}
		folded = yaml.Node{Kind: yaml.ScalarNode, Value: strings.Join(parts, ".")}
		folded.Tag = "!GetAtt"
	}
	folded.Style = 0

	*n = folded
}

func intrinsicName(key string) (string, bool) {
	if key == "Ref" || key == "Condition" {
		return key, true
	}
	name := strings.TrimPrefix(key, "Fn::")
	if name != key && intrinsics[name] {
		return name, true
	}
	return "", false
}

// Clean parses raw YAML and re-emits it normalized (stable indentation,
// short or long intrinsic form per opts).
func Clean(data []byte, opts Options) ([]byte, error) {
	doc, err := Load(data)
	if err != nil {
		return nil, err
	}
	return Dump(doc, opts)
}
