package logic

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Propositions in problem files are structured YAML nodes, never parsed
// surface syntax:
//
//	{atom: raining}
//	{not: {atom: raining}}
//	{imp: [{atom: p}, {atom: q}]}
//	{eq: [x, x]}
//	true
//	false
//
// Connectives taking two operands expect a two-element sequence.

// UnmarshalYAML decodes the structured node form above.
func (p *Prop) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Value {
		case "true", "True":
			*p = True()
			return nil
		case "false", "False":
			*p = False()
			return nil
		}
		return fmt.Errorf("line %d: proposition scalar must be true or false, got %q", node.Line, node.Value)
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: proposition mapping must have exactly one key", node.Line)
		}
		key := node.Content[0].Value
		val := node.Content[1]
		switch key {
		case "atom":
			if val.Kind != yaml.ScalarNode || val.Value == "" {
				return fmt.Errorf("line %d: atom expects a non-empty name", node.Line)
			}
			*p = Atom(val.Value)
			return nil
		case "not":
			var kid Prop
			if err := val.Decode(&kid); err != nil {
				return err
			}
			*p = Not(kid)
			return nil
		case "and", "or", "imp", "iff":
			kids, err := decodePair(key, val)
			if err != nil {
				return err
			}
			switch key {
			case "and":
				*p = And(kids[0], kids[1])
			case "or":
				*p = Or(kids[0], kids[1])
			case "imp":
				*p = Imp(kids[0], kids[1])
			case "iff":
				*p = Iff(kids[0], kids[1])
			}
			return nil
		case "eq":
			if val.Kind != yaml.SequenceNode || len(val.Content) != 2 {
				return fmt.Errorf("line %d: eq expects a two-element sequence of terms", node.Line)
			}
			*p = Eq(val.Content[0].Value, val.Content[1].Value)
			return nil
		}
		return fmt.Errorf("line %d: unknown proposition form %q", node.Line, key)
	}
	return fmt.Errorf("line %d: proposition must be a scalar or a single-key mapping", node.Line)
}

func decodePair(key string, val *yaml.Node) ([2]Prop, error) {
	var kids [2]Prop
	if val.Kind != yaml.SequenceNode || len(val.Content) != 2 {
		return kids, fmt.Errorf("line %d: %s expects a two-element sequence", val.Line, key)
	}
	for i := 0; i < 2; i++ {
		if err := val.Content[i].Decode(&kids[i]); err != nil {
			return kids, err
		}
	}
	return kids, nil
}

// MarshalYAML emits the same structured form UnmarshalYAML accepts.
func (p Prop) MarshalYAML() (interface{}, error) {
	switch p.Kind {
	case KindAtom:
		return map[string]string{"atom": p.Name}, nil
	case KindTrue:
		return true, nil
	case KindFalse:
		return false, nil
	case KindNot:
		return map[string]Prop{"not": p.Kids[0]}, nil
	case KindAnd:
		return map[string][]Prop{"and": p.Kids}, nil
	case KindOr:
		return map[string][]Prop{"or": p.Kids}, nil
	case KindImp:
		return map[string][]Prop{"imp": p.Kids}, nil
	case KindIff:
		return map[string][]Prop{"iff": p.Kids}, nil
	case KindEq:
		return map[string][]string{"eq": {p.Lhs, p.Rhs}}, nil
	}
	return nil, fmt.Errorf("cannot marshal proposition kind %d", int(p.Kind))
}
