package rule

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// recognizedKeys is the full set of keys a conjunction node may carry.
// Anything else is a load-time error (§4.4 "Rule-document invalid").
var recognizedKeys = map[string]bool{
	"match": true, "matchStart": true, "matchStop": true, "rewrite": true,
	"type": true, "valid": true, "validMeta": true,
	"not": true, "allOf": true, "anyOf": true, "oneOf": true,
	"if": true, "then": true, "else": true, "next": true,
	"description": true, "details": true,
}

// Parse parses a single YAML or JSON rule document (JSON is a YAML subset,
// so one decoder serves both, matching schema.LoadYAMLFile's approach of
// routing both formats through gopkg.in/yaml.v3) into a Rule.
func Parse(data []byte) (Rule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Rule{}, fmt.Errorf("rule: parse document: %w", err)
	}
	if doc.Kind == 0 {
		return Rule{}, fmt.Errorf("rule: empty document")
	}
	node := &doc
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return Rule{}, fmt.Errorf("rule: empty document")
		}
		node = node.Content[0]
	}
	return decodeRule(node)
}

func decodeRule(n *yaml.Node) (Rule, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		var b bool
		if err := n.Decode(&b); err != nil {
			return Rule{}, fmt.Errorf("rule: scalar rule must be a boolean, line %d: %w", n.Line, err)
		}
		if b {
			return True(), nil
		}
		return False(), nil

	case yaml.MappingNode:
		return decodeConjunction(n)

	default:
		return Rule{}, fmt.Errorf("rule: expected boolean or mapping, line %d", n.Line)
	}
}

func decodeConjunction(n *yaml.Node) (Rule, error) {
	var r Rule
	seen := make(map[string]bool)

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		var key string
		if err := keyNode.Decode(&key); err != nil {
			return Rule{}, fmt.Errorf("rule: non-string key, line %d", keyNode.Line)
		}
		if !recognizedKeys[key] {
			return Rule{}, fmt.Errorf("rule: unrecognized key %q, line %d", key, keyNode.Line)
		}
		if seen[key] {
			return Rule{}, fmt.Errorf("rule: duplicate key %q, line %d", key, keyNode.Line)
		}
		seen[key] = true

		if err := assignField(&r, key, valNode); err != nil {
			return Rule{}, err
		}
	}

	if r.Then != nil && r.Next != nil && r.If == nil {
		return Rule{}, fmt.Errorf("rule: \"then\" and \"next\" both present without \"if\"; ambiguous legacy/successor usage")
	}

	return r, nil
}

func assignField(r *Rule, key string, n *yaml.Node) error {
	switch key {
	case "match":
		s, err := decodeString(n, key)
		if err != nil {
			return err
		}
		r.Match = &s
	case "matchStart":
		v, err := decodeInt32(n, key)
		if err != nil {
			return err
		}
		r.MatchStart = &v
	case "matchStop":
		v, err := decodeInt32(n, key)
		if err != nil {
			return err
		}
		r.MatchStop = &v
	case "rewrite":
		s, err := decodeString(n, key)
		if err != nil {
			return err
		}
		r.Rewrite = &s
	case "type":
		tc, err := decodeTypeConstraint(n)
		if err != nil {
			return err
		}
		r.Type = &tc
	case "valid":
		ref, err := decodeSchemaRef(n)
		if err != nil {
			return err
		}
		r.Valid = &ref
	case "validMeta":
		ref, err := decodeSchemaRef(n)
		if err != nil {
			return err
		}
		r.ValidMeta = &ref
	case "not":
		sub, err := decodeRule(n)
		if err != nil {
			return err
		}
		r.Not = &sub
	case "allOf":
		subs, err := decodeRuleList(n, key)
		if err != nil {
			return err
		}
		r.AllOf = subs
	case "anyOf":
		subs, err := decodeRuleList(n, key)
		if err != nil {
			return err
		}
		r.AnyOf = subs
	case "oneOf":
		subs, err := decodeRuleList(n, key)
		if err != nil {
			return err
		}
		r.OneOf = subs
	case "if":
		sub, err := decodeRule(n)
		if err != nil {
			return err
		}
		r.If = &sub
	case "then":
		sub, err := decodeRule(n)
		if err != nil {
			return err
		}
		r.Then = &sub
	case "else":
		sub, err := decodeRule(n)
		if err != nil {
			return err
		}
		r.Else = &sub
	case "next":
		sub, err := decodeRule(n)
		if err != nil {
			return err
		}
		r.Next = &sub
	case "description":
		s, err := decodeString(n, key)
		if err != nil {
			return err
		}
		r.Description = s
	case "details":
		var b bool
		if err := n.Decode(&b); err != nil {
			return fmt.Errorf("rule: %q must be a boolean, line %d", key, n.Line)
		}
		r.Details = &b
	}
	return nil
}

func decodeString(n *yaml.Node, key string) (string, error) {
	var s string
	if err := n.Decode(&s); err != nil {
		return "", fmt.Errorf("rule: %q must be a string, line %d: %w", key, n.Line, err)
	}
	return s, nil
}

func decodeInt32(n *yaml.Node, key string) (int, error) {
	var v int
	if err := n.Decode(&v); err != nil {
		return 0, fmt.Errorf("rule: %q must be an integer, line %d: %w", key, n.Line, err)
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("rule: %q value %d out of signed 32-bit range, line %d", key, v, n.Line)
	}
	return v, nil
}

func decodeTypeConstraint(n *yaml.Node) (TypeConstraint, error) {
	if n.Kind == yaml.ScalarNode {
		var b bool
		if err := n.Decode(&b); err == nil {
			return TypeConstraint{Kind: TypeExists, Exists: b}, nil
		}
		var s string
		if err := n.Decode(&s); err == nil {
			switch s {
			case "file":
				return TypeConstraint{Kind: TypeFile}, nil
			case "dir":
				return TypeConstraint{Kind: TypeDir}, nil
			}
		}
	}
	return TypeConstraint{}, fmt.Errorf("rule: \"type\" must be true, false, \"file\", or \"dir\", line %d", n.Line)
}

func decodeSchemaRef(n *yaml.Node) (SchemaRef, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		var s string
		if err := n.Decode(&s); err != nil {
			return SchemaRef{}, fmt.Errorf("rule: schema reference must be a string or mapping, line %d", n.Line)
		}
		return SchemaRef{Reference: s}, nil
	case yaml.MappingNode:
		var m map[string]any
		if err := n.Decode(&m); err != nil {
			return SchemaRef{}, fmt.Errorf("rule: inline schema decode failed, line %d: %w", n.Line, err)
		}
		return SchemaRef{Inline: m, IsInline: true}, nil
	default:
		return SchemaRef{}, fmt.Errorf("rule: schema reference must be a string or mapping, line %d", n.Line)
	}
}

func decodeRuleList(n *yaml.Node, key string) ([]Rule, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("rule: %q must be a list, line %d", key, n.Line)
	}
	out := make([]Rule, 0, len(n.Content))
	for _, item := range n.Content {
		sub, err := decodeRule(item)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}
