package jsontree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// InputFormat selects how Load decodes text.
type InputFormat string

const (
	FormatAuto InputFormat = "auto"
	FormatJSON InputFormat = "json"
	FormatYAML InputFormat = "yaml"
)

// ParseInputFormat validates a user-supplied format name. Empty means JSON;
// YAML is only decoded when asked for.
func ParseInputFormat(s string) (InputFormat, error) {
	switch InputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatAuto:
		return FormatAuto, nil
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown input format %q (expected auto, json or yaml)", s)
	}
}

// Load decodes text as JSON or YAML. An empty format is JSON. In auto mode
// YAML is accepted only when it decodes to a mapping or sequence; anything
// else reports the JSON syntax error, so typos such as "nul" or a bare word
// are never read as YAML strings.
func Load(text string, format InputFormat) (Value, error) {
	switch format {
	case "", FormatJSON:
		return Parse(text)
	case FormatYAML:
		return ParseYAML(text)
	}
	v, jsonErr := Parse(text)
	if jsonErr == nil {
		return v, nil
	}
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return nil, jsonErr
	}
	yv, err := ParseYAML(text)
	if err != nil || !IsContainer(yv) {
		return nil, jsonErr
	}
	return yv, nil
}

// ParseYAML decodes the first YAML document in text, keeping mapping order.
func ParseYAML(text string) (Value, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader([]byte(text)))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	return yamlNodeToValue(doc.Content[0])
}

func yamlNodeToValue(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) > 0 {
			return yamlNodeToValue(n.Content[0])
		}
		return nil, nil
	case yaml.MappingNode:
		obj := NewObject(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Tag == "!!merge" {
				if err := mergeYAML(obj, valNode); err != nil {
					return nil, err
				}
				continue
			}
			v, err := yamlNodeToValue(valNode)
			if err != nil {
				return nil, err
			}
			obj.Set(keyNode.Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlNodeToValue(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		return yamlNodeToValue(n.Alias)
	case yaml.ScalarNode:
		return yamlScalar(n)
	default:
		return nil, fmt.Errorf("yaml: unsupported node kind %v at line %d", n.Kind, n.Line)
	}
}

func mergeYAML(obj *Object, n *yaml.Node) error {
	sources := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		sources = n.Content
	}
	for _, src := range sources {
		v, err := yamlNodeToValue(src)
		if err != nil {
			return err
		}
		m, ok := v.(*Object)
		if !ok {
			return fmt.Errorf("yaml: merge key at line %d does not reference a mapping", src.Line)
		}
		for _, mem := range m.Members() {
			if _, exists := obj.Get(mem.Key); !exists {
				obj.Set(mem.Key, mem.Value)
			}
		}
	}
	return nil
}

func yamlScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// out of int64 range; keep the literal
			return json.Number(n.Value), nil
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		return n.Value, nil
	}
}
