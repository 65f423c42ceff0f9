package compose

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// pair is one key/value entry of a mapping node.
type pair struct {
	key, value *yaml.Node
}

// resolve follows alias nodes to the anchored node they point at.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isMerge(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!merge"
}

func isNull(n *yaml.Node) bool {
	n = resolve(n)
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func isMapping(n *yaml.Node) bool {
	n = resolve(n)
	return n != nil && n.Kind == yaml.MappingNode
}

func isSequence(n *yaml.Node) bool {
	n = resolve(n)
	return n != nil && n.Kind == yaml.SequenceNode
}

// pairs returns the entries of a mapping node in document order. Merge keys
// are expanded in place; an explicit key always wins over a merged one, and
// among merged sources the first occurrence wins.
func pairs(n *yaml.Node) []pair {
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}

	explicit := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if k := n.Content[i]; !isMerge(k) {
			explicit[k.Value] = true
		}
	}

	out := make([]pair, 0, len(n.Content)/2)
	merged := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if !isMerge(k) {
			out = append(out, pair{k, v})
			continue
		}
		for _, p := range mergeSources(v) {
			if explicit[p.key.Value] || merged[p.key.Value] {
				continue
			}
			merged[p.key.Value] = true
			out = append(out, p)
		}
	}
	return out
}

func mergeSources(v *yaml.Node) []pair {
	v = resolve(v)
	if v == nil {
		return nil
	}
	switch v.Kind {
	case yaml.MappingNode:
		return pairs(v)
	case yaml.SequenceNode:
		var out []pair
		for _, item := range v.Content {
			out = append(out, pairs(item)...)
		}
		return out
	}
	return nil
}

// items returns the entries of a sequence node, or nil for any other node.
func items(n *yaml.Node) []*yaml.Node {
	n = resolve(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]*yaml.Node, len(n.Content))
	for i, c := range n.Content {
		out[i] = resolve(c)
	}
	return out
}

// scalar returns the text of a non-null scalar node.
func scalar(n *yaml.Node) (string, bool) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return "", false
	}
	return n.Value, true
}

// isString reports whether n is a scalar that YAML resolves to a string.
func isString(n *yaml.Node) bool {
	n = resolve(n)
	return n != nil && n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

// boolTrue reports whether n is the boolean true. Strings such as "true"
// do not count.
func boolTrue(n *yaml.Node) bool {
	n = resolve(n)
	if n == nil || n.Kind != yaml.ScalarNode || n.ShortTag() != "!!bool" {
		return false
	}
	var b bool
	return n.Decode(&b) == nil && b
}

// numberText renders an integer scalar in decimal so that 0x1F90 and 8080
// compare equal; other scalars are returned verbatim.
func numberText(n *yaml.Node) (string, bool) {
	n = resolve(n)
	s, ok := scalar(n)
	if !ok {
		return "", false
	}
	if n.ShortTag() == "!!int" {
		var i int64
		if err := n.Decode(&i); err == nil {
			return strconv.FormatInt(i, 10), true
		}
	}
	return s, true
}

// truthy mirrors the loose presence test used for optional scalars: null,
// empty strings, false and numeric zero are all absent.
func truthy(n *yaml.Node) bool {
	n = resolve(n)
	if n == nil {
		return false
	}
	if n.Kind != yaml.ScalarNode {
		return true
	}
	switch n.ShortTag() {
	case "!!null":
		return false
	case "!!bool":
		return boolTrue(n)
	case "!!int", "!!float":
		var f float64
		return n.Decode(&f) == nil && f != 0
	}
	return n.Value != ""
}

// checkDuplicates rejects mappings that define the same key twice.
func checkDuplicates(n *yaml.Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			if err := checkDuplicates(c); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		seen := make(map[string]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind == yaml.ScalarNode && !isMerge(k) {
				if line, dup := seen[k.Value]; dup {
					return &SyntaxError{
						Line: k.Line,
						Msg:  fmt.Sprintf("mapping key %q already defined at line %d", k.Value, line),
					}
				}
				seen[k.Value] = k.Line
			}
			if err := checkDuplicates(n.Content[i+1]); err != nil {
				return err
			}
		}
	}
	return nil
}
