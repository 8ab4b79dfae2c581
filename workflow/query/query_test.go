package query

import (
	"testing"

	"github.com/flowcore/bpmnengine/workflow/value"
)

func TestGet_ResolvesNestedPath(t *testing.T) {
	vars := value.EmptyObject().WithField("UT1",
		value.EmptyObject().WithField("choice", value.NewString("approve")))

	got := Get(vars, "UT1.choice")
	s, ok := got.AsString()
	if !ok || s != "approve" {
		t.Errorf("expected UT1.choice to resolve to 'approve', got %q ok=%v", s, ok)
	}
}

func TestGet_ArrayIndexPath(t *testing.T) {
	vars := value.EmptyObject().WithField("items",
		value.NewArray([]value.Value{value.NewString("x"), value.NewString("y")}))

	got := Get(vars, "items.1")
	s, ok := got.AsString()
	if !ok || s != "y" {
		t.Errorf("expected items.1 to resolve to 'y', got %q ok=%v", s, ok)
	}
}

func TestGet_MissingPathReturnsNull(t *testing.T) {
	vars := value.EmptyObject()
	if got := Get(vars, "nope.nested"); !got.IsNull() {
		t.Errorf("expected a missing path to resolve to Null")
	}
}

func TestGet_NumericAndBoolValuesPreserved(t *testing.T) {
	vars := value.EmptyObject().
		WithField("approved", value.NewBool(true)).
		WithField("amount", value.NewNumber(value.PosInt(42)))

	approved, ok := Get(vars, "approved").AsBool()
	if !ok || !approved {
		t.Errorf("expected approved=true, got %v ok=%v", approved, ok)
	}
	amount, ok := Get(vars, "amount").AsNumber()
	if !ok || amount.AsFloat64() != 42 {
		t.Errorf("expected amount=42, got %v ok=%v", amount, ok)
	}
}
