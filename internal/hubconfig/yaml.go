// internal/hubconfig/yaml.go
package hubconfig

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// config.yaml is a sequence of single-key maps, and most sections are
// themselves sequences of single-key maps that merge into one map. These
// helpers walk yaml.v3 nodes so key order is preserved.

type pair struct {
	key   string
	value *yaml.Node
}

// props is an ordered, merged property map. Later keys overwrite earlier ones.
type props struct {
	keys   []string
	values map[string]*yaml.Node
}

func (p props) get(key string) (*yaml.Node, bool) {
	n, ok := p.values[key]
	return n, ok
}

func (p props) str(key string) string {
	n, ok := p.values[key]
	if !ok {
		return ""
	}
	return scalar(n)
}

func (p *props) set(key string, n *yaml.Node) {
	if p.values == nil {
		p.values = make(map[string]*yaml.Node)
	}
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = n
}

// mappingPairs returns the key/value pairs of a mapping node in order.
func mappingPairs(n *yaml.Node) []pair {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, pair{key: n.Content[i].Value, value: n.Content[i+1]})
	}
	return out
}

// mergeProps merges a sequence of maps into one props. A bare mapping is
// accepted too. Non-map items are ignored.
func mergeProps(n *yaml.Node) props {
	var p props
	if n == nil {
		return p
	}
	switch n.Kind {
	case yaml.MappingNode:
		for _, kv := range mappingPairs(n) {
			p.set(kv.key, kv.value)
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			for _, kv := range mappingPairs(item) {
				p.set(kv.key, kv.value)
			}
		}
	}
	return p
}

// entries flattens a section's sequence of single-key maps into pairs.
func entries(n *yaml.Node) []pair {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.MappingNode {
		return mappingPairs(n)
	}
	if n.Kind != yaml.SequenceNode {
		return nil
	}
	var out []pair
	for _, item := range n.Content {
		out = append(out, mappingPairs(item)...)
	}
	return out
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// scalar returns the raw text of a scalar node, or "" for null and non-scalars.
func scalar(n *yaml.Node) string {
	if isNull(n) || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

// intValue decodes an integer scalar. ok is false for any other value,
// including floats such as 7.0.
func intValue(n *yaml.Node) (int, bool) {
	if isNull(n) || n.Kind != yaml.ScalarNode || n.Tag != "!!int" {
		return 0, false
	}
	var v int
	if err := n.Decode(&v); err != nil {
		return 0, false
	}
	return v, true
}

// boolValue decodes a boolean scalar, returning def for null or missing.
func boolValue(n *yaml.Node, def bool) (bool, bool) {
	if isNull(n) {
		return def, true
	}
	var v bool
	if err := n.Decode(&v); err != nil {
		return def, false
	}
	return v, true
}

// stringList returns the scalar items of a sequence node. A single scalar
// is treated as a one-item list.
func stringList(n *yaml.Node) []string {
	if isNull(n) {
		return nil
	}
	if n.Kind == yaml.ScalarNode {
		return []string{n.Value}
	}
	if n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind == yaml.ScalarNode && !isNull(item) {
			out = append(out, item.Value)
		}
	}
	return out
}

// intList decodes a sequence of integers; ok is false if any item is not one.
func intList(n *yaml.Node) ([]int, bool) {
	if isNull(n) || n.Kind != yaml.SequenceNode {
		return nil, false
	}
	out := make([]int, 0, len(n.Content))
	for _, item := range n.Content {
		v, ok := intValue(item)
		if !ok {
			if f, err := strconv.ParseFloat(item.Value, 64); err == nil && f == float64(int(f)) {
				v, ok = int(f), true
			}
		}
		if !ok {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}
