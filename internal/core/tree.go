package core

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	tagBool  = "!!bool"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagNull  = "!!null"
	tagStr   = "!!str"
	tagMap   = "!!map"
	tagSeq   = "!!seq"
)

// Unwrap returns the content of a document node and follows alias nodes
// to their anchors. Any other node is returned as is.
func Unwrap(node *yaml.Node) *yaml.Node {
	for node != nil {
		switch node.Kind {
		case yaml.DocumentNode:
			if len(node.Content) == 0 {
				return nil
			}
			node = node.Content[0]
		case yaml.AliasNode:
			node = node.Alias
		default:
			return node
		}
	}
	return nil
}

// Clone deep copies a tree. Document wrappers and aliases are expanded so
// the copy shares nothing with the source.
func Clone(node *yaml.Node) *yaml.Node {
	node = Unwrap(node)
	if node == nil {
		return nil
	}
	out := &yaml.Node{
		Kind:        node.Kind,
		Style:       node.Style,
		Tag:         node.Tag,
		Value:       node.Value,
		HeadComment: node.HeadComment,
		LineComment: node.LineComment,
		FootComment: node.FootComment,
		Line:        node.Line,
		Column:      node.Column,
	}
	if len(node.Content) > 0 {
		out.Content = make([]*yaml.Node, 0, len(node.Content))
		for _, child := range node.Content {
			out.Content = append(out.Content, Clone(child))
		}
	}
	return out
}

func NewMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: tagMap}
}

func NewSequence(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: tagSeq, Content: items}
}

func NewString(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: value}
}

func isMapping(node *yaml.Node) bool {
	return node != nil && node.Kind == yaml.MappingNode
}

func isSequence(node *yaml.Node) bool {
	return node != nil && node.Kind == yaml.SequenceNode
}

func isScalar(node *yaml.Node) bool {
	return node != nil && node.Kind == yaml.ScalarNode
}

func isNull(node *yaml.Node) bool {
	return node == nil || (isScalar(node) && node.ShortTag() == tagNull)
}

// MappingGet returns the value stored under key and its position among
// the mapping's pairs, or (nil, -1).
func MappingGet(node *yaml.Node, key string) (*yaml.Node, int) {
	if !isMapping(node) {
		return nil, -1
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1], i / 2
		}
	}
	return nil, -1
}

// MappingSet replaces the value under key in place, keeping its position,
// or appends a new pair.
func MappingSet(node *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			node.Content[i+1] = value
			return
		}
	}
	node.Content = append(node.Content, NewString(key), value)
}

// MappingDelete removes key and reports whether it was present.
func MappingDelete(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			node.Content = append(node.Content[:i], node.Content[i+2:]...)
			return true
		}
	}
	return false
}

// MappingTake removes key and returns its value.
func MappingTake(node *yaml.Node, key string) (*yaml.Node, bool) {
	value, pos := MappingGet(node, key)
	if pos < 0 {
		return nil, false
	}
	MappingDelete(node, key)
	return value, true
}

func scalarBool(node *yaml.Node) (bool, bool) {
	if !isScalar(node) || node.ShortTag() != tagBool {
		return false, false
	}
	var value bool
	if err := node.Decode(&value); err != nil {
		return false, false
	}
	return value, true
}

func scalarInt(node *yaml.Node) (int, bool) {
	if !isScalar(node) {
		return 0, false
	}
	switch node.ShortTag() {
	case tagInt:
		var value int
		if err := node.Decode(&value); err != nil {
			return 0, false
		}
		return value, true
	case tagStr:
		value, err := strconv.Atoi(strings.TrimSpace(node.Value))
		if err != nil {
			return 0, false
		}
		return value, true
	}
	return 0, false
}

// truthy follows the usual loose truthiness of config values: null,
// false, zero, empty strings and empty collections are false.
func truthy(node *yaml.Node) bool {
	node = Unwrap(node)
	if node == nil {
		return false
	}
	switch node.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		return len(node.Content) > 0
	}
	switch node.ShortTag() {
	case tagNull:
		return false
	case tagBool:
		value, _ := scalarBool(node)
		return value
	case tagInt, tagFloat:
		var value float64
		if err := node.Decode(&value); err != nil {
			return true
		}
		return value != 0
	}
	return node.Value != ""
}

// ToValue decodes a tree into plain Go values, which is handy for
// comparisons and JSON encoding.
func ToValue(node *yaml.Node) (any, error) {
	node = Unwrap(node)
	if node == nil {
		return nil, nil
	}
	var value any
	if err := node.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}
