package csvw

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Field is one key of a column description.
type Field struct {
	Key   string
	Value interface{}
}

// Column is one tableSchema column description. Keys are written in the
// order they were given, nested mappings included; values pass through
// untouched.
type Column struct {
	fields []Field
}

// NewColumn builds a column from fields in order. A repeated key keeps its
// first position and its last value.
func NewColumn(fields ...Field) Column {
	var c Column
	for _, f := range fields {
		c.Set(f.Key, f.Value)
	}
	return c
}

// Set replaces the value of key, or appends key when it is new.
func (c *Column) Set(key string, value interface{}) {
	for i := range c.fields {
		if c.fields[i].Key == key {
			c.fields[i].Value = value
			return
		}
	}
	c.fields = append(c.fields, Field{Key: key, Value: value})
}

// Get returns the value of key.
func (c Column) Get(key string) (interface{}, bool) {
	for _, f := range c.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in output order.
func (c Column) Keys() []string {
	keys := make([]string, len(c.fields))
	for i, f := range c.fields {
		keys[i] = f.Key
	}
	return keys
}

func (c Column) Len() int {
	return len(c.fields)
}

// MarshalJSON writes the column as a JSON object in key order. An empty
// column is {}.
func (c Column) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeLiteral(&buf, f.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeLiteral(&buf, f.Value); err != nil {
			return nil, fmt.Errorf("column key %q: %w", f.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeLiteral(buf *bytes.Buffer, v interface{}) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

// UnmarshalYAML reads a mapping node, keeping the document's key order.
func (c *Column) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: column must be a mapping", node.Line)
	}

	*c = Column{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("line %d: column key: %w", node.Content[i].Line, err)
		}
		value, err := yamlValue(node.Content[i+1])
		if err != nil {
			return err
		}
		c.Set(key, value)
	}
	return nil
}

// yamlValue converts a node into plain values, with mappings as Columns so
// nested objects keep their order too.
func yamlValue(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return yamlValue(node.Alias)
	case yaml.MappingNode:
		var nested Column
		if err := nested.UnmarshalYAML(node); err != nil {
			return nil, err
		}
		return nested, nil
	case yaml.SequenceNode:
		items := make([]interface{}, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := yamlValue(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	default:
		var v interface{}
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return v, nil
	}
}
