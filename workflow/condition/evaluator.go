// Package condition evaluates JSEP condition ASTs against a workflow
// instance's variable tree to decide exclusive-gateway branches. Its shape
// follows the teacher's condition evaluator (a struct method operating
// against a variable context), generalized to the JSEP-over-$steps model
// instead of CEL.
package condition

import (
	"github.com/flowcore/bpmnengine/workflow/ast"
	"github.com/flowcore/bpmnengine/workflow/graph"
	"github.com/flowcore/bpmnengine/workflow/value"
)

// Evaluator resolves and evaluates JSEP condition trees. It carries no
// mutable state of its own — unlike the CEL evaluator it's modeled on,
// there is no program cache to protect, since a parsed ast.Node is already
// the "compiled" form.
type Evaluator struct{}

// New returns a ready-to-use Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Evaluate implements evaluate_condition(condition, variables) → bool. Only
// a BinaryExpression at the root is accepted; any other root — including a
// nil condition — yields false. Errors inside expression evaluation never
// surface: unresolved operands or type mismatches fall through to false so
// that execution proceeds down the default branch.
func (e *Evaluator) Evaluate(cond *graph.Condition, variables value.Value) bool {
	if cond == nil || cond.Expr == nil {
		return false
	}
	return e.evaluateBinaryRoot(cond.Expr, variables)
}

func (e *Evaluator) evaluateBinaryRoot(node *ast.Node, variables value.Value) bool {
	if node.Kind != ast.KindBinaryExpression {
		return false
	}
	left := e.resolve(node.Left, variables)
	right := e.resolve(node.Right, variables)
	return evalBinary(node.Operator, left, right)
}

// resolve implements the operand resolution rules: literals resolve to
// themselves; $steps-rooted (or recursively nested) member expressions walk
// into the variable tree; anything else — including malformed shapes —
// resolves to Null.
func (e *Evaluator) resolve(node *ast.Node, variables value.Value) value.Value {
	if node == nil {
		return value.Null
	}
	switch node.Kind {
	case ast.KindLiteral:
		return node.Literal
	case ast.KindMemberExpression:
		return e.resolveMember(node, variables)
	default:
		return value.Null
	}
}

func (e *Evaluator) resolveMember(node *ast.Node, variables value.Value) value.Value {
	property := node.Property
	if property == nil || property.Kind != ast.KindIdentifier {
		return value.Null
	}
	name := property.Name

	object := node.Object
	if object == nil {
		return value.Null
	}

	switch object.Kind {
	case ast.KindIdentifier:
		if object.Name != ast.StepsIdentifier {
			return value.Null
		}
		return variables.Get(name)
	case ast.KindMemberExpression:
		parent := e.resolveMember(object, variables)
		return parent.Get(name)
	default:
		return value.Null
	}
}

// evalBinary implements the binary operator table from §4.1.
func evalBinary(op ast.Operator, l, r value.Value) bool {
	switch op {
	case ast.OpEqual:
		return value.Equal(l, r)
	case ast.OpNotEqual:
		return !value.Equal(l, r)
	case ast.OpGreater:
		cmp, ok := value.Compare(l, r)
		return ok && cmp > 0
	case ast.OpGreaterOrEqual:
		cmp, ok := value.Compare(l, r)
		return ok && cmp >= 0
	case ast.OpLess:
		cmp, ok := value.Compare(l, r)
		return ok && cmp < 0
	case ast.OpLessOrEqual:
		cmp, ok := value.Compare(l, r)
		return ok && cmp <= 0
	case ast.OpAnd:
		lb, lok := l.AsBool()
		rb, rok := r.AsBool()
		return lok && rok && lb && rb
	case ast.OpOr:
		lb, lok := l.AsBool()
		if lok && lb {
			return true
		}
		rb, rok := r.AsBool()
		return rok && rb
	default:
		return false
	}
}

// ChooseBranch implements choose_branch(gateway, definition, variables):
// initialise the result to the gateway's default flow, then walk its
// outgoing flows in document order, taking the first one whose condition
// evaluates true. A gateway with no matching condition and no default
// yields -1, which callers must tolerate rather than treat as an error.
func (e *Evaluator) ChooseBranch(gateway graph.Task, def *graph.Definition, variables value.Value) int32 {
	result := gateway.Default
	for _, flowID := range gateway.Outgoing {
		flow, ok := def.Flow(flowID)
		if !ok || flow.Condition == nil {
			continue
		}
		if e.Evaluate(flow.Condition, variables) {
			return flowID
		}
	}
	return result
}
