package ast

import (
	"encoding/json"
	"fmt"

	"github.com/flowcore/bpmnengine/workflow/value"
)

// FromJSON builds a Node tree from the generic JSON a host-supplied
// parse_jsep_expression(string) → json call (or a stored condition
// document) produces. The shape follows the conventional JSEP node
// encoding: a "type" discriminator plus the fields for that node kind.
func FromJSON(data []byte) (*Node, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse jsep json: %w", err)
	}
	return fromMap(raw)
}

func fromMap(raw map[string]any) (*Node, error) {
	t, _ := raw["type"].(string)
	switch t {
	case "Literal":
		return Literal(valueFromAny(raw["value"])), nil
	case "Identifier":
		name, _ := raw["name"].(string)
		return Identifier(name), nil
	case "MemberExpression":
		object, err := fromAny(raw["object"])
		if err != nil {
			return nil, err
		}
		property, err := fromAny(raw["property"])
		if err != nil {
			return nil, err
		}
		computed, _ := raw["computed"].(bool)
		return Member(object, property, computed), nil
	case "BinaryExpression", "LogicalExpression":
		opStr, _ := raw["operator"].(string)
		op, ok := ParseOperator(opStr)
		if !ok {
			return nil, fmt.Errorf("unknown jsep operator %q", opStr)
		}
		left, err := fromAny(raw["left"])
		if err != nil {
			return nil, err
		}
		right, err := fromAny(raw["right"])
		if err != nil {
			return nil, err
		}
		return Binary(op, left, right), nil
	case "ConditionalExpression":
		test, err := fromAny(raw["test"])
		if err != nil {
			return nil, err
		}
		consequent, err := fromAny(raw["consequent"])
		if err != nil {
			return nil, err
		}
		alternate, err := fromAny(raw["alternate"])
		if err != nil {
			return nil, err
		}
		return Conditional(test, consequent, alternate), nil
	default:
		return nil, fmt.Errorf("unsupported jsep node type %q", t)
	}
}

func fromAny(v any) (*Node, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected jsep node object, got %T", v)
	}
	return fromMap(m)
}

// valueFromAny converts a decoded JSON scalar/array/object into a
// value.Value, preserving numeric provenance the way §4.5's coercion rule
// does: integral non-negative numbers become PosInt, integral negative
// numbers NegInt, everything else Float.
func valueFromAny(v any) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Null
	case bool:
		return value.NewBool(t)
	case string:
		return value.NewString(t)
	case float64:
		return value.NewNumber(numberFromFloat(t))
	case []any:
		items := make([]value.Value, len(t))
		for i, e := range t {
			items[i] = valueFromAny(e)
		}
		return value.NewArray(items)
	case map[string]any:
		fields := make(map[string]value.Value, len(t))
		for k, e := range t {
			fields[k] = valueFromAny(e)
		}
		return value.NewObject(fields)
	default:
		return value.Null
	}
}

func numberFromFloat(f float64) value.Number {
	if f == float64(int64(f)) {
		if f >= 0 {
			return value.PosInt(uint64(f))
		}
		return value.NegInt(int64(f))
	}
	return value.Float(f)
}
