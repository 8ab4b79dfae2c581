package value

import "testing"

func TestEqual_NumbersCompareByFloatProjection(t *testing.T) {
	a := NewNumber(PosInt(3))
	b := NewNumber(Float(3.0))
	if !Equal(a, b) {
		t.Errorf("expected PosInt(3) to equal Float(3.0)")
	}

	c := NewNumber(NegInt(-3))
	if Equal(a, c) {
		t.Errorf("expected PosInt(3) to not equal NegInt(-3)")
	}
}

func TestEqual_MismatchedKindsAreUnequal(t *testing.T) {
	if Equal(NewString("1"), NewNumber(PosInt(1))) {
		t.Errorf("expected string and number to be unequal regardless of content")
	}
}

func TestEqual_ObjectsCompareByFieldSet(t *testing.T) {
	a := EmptyObject().WithField("x", NewNumber(PosInt(1)))
	b := EmptyObject().WithField("x", NewNumber(PosInt(1)))
	if !Equal(a, b) {
		t.Errorf("expected identical objects to be equal")
	}

	c := EmptyObject().WithField("x", NewNumber(PosInt(2)))
	if Equal(a, c) {
		t.Errorf("expected objects with differing field values to be unequal")
	}
}

func TestCompare_NumbersOrderByFloatProjection(t *testing.T) {
	cmp, ok := Compare(NewNumber(NegInt(-5)), NewNumber(PosInt(5)))
	if !ok || cmp >= 0 {
		t.Errorf("expected -5 < 5, got cmp=%d ok=%v", cmp, ok)
	}
}

func TestCompare_MixedKindsNotOrderable(t *testing.T) {
	if _, ok := Compare(NewString("a"), NewNumber(PosInt(1))); ok {
		t.Errorf("expected mixed-kind comparison to report ok=false")
	}
	if _, ok := Compare(NewArray(nil), NewArray(nil)); ok {
		t.Errorf("expected arrays to be non-orderable")
	}
}

func TestGet_NonObjectReturnsNull(t *testing.T) {
	if got := NewString("hi").Get("x"); !got.IsNull() {
		t.Errorf("expected Get on a non-object to return Null")
	}
}

func TestGet_AbsentKeyReturnsNull(t *testing.T) {
	obj := EmptyObject()
	if got := obj.Get("missing"); !got.IsNull() {
		t.Errorf("expected Get of a missing key to return Null")
	}
}

func TestWithField_DoesNotMutateOriginal(t *testing.T) {
	base := EmptyObject()
	updated := base.WithField("a", NewBool(true))

	if len(mustObject(t, base)) != 0 {
		t.Errorf("expected base object to remain empty after WithField")
	}
	if !mustBool(t, updated.Get("a")) {
		t.Errorf("expected updated object to carry the new field")
	}
}

func TestNewArray_DefensiveCopy(t *testing.T) {
	items := []Value{NewNumber(PosInt(1))}
	v := NewArray(items)

	items[0] = NewNumber(PosInt(99))

	arr, ok := v.AsArray()
	if !ok || len(arr) != 1 {
		t.Fatalf("expected array of length 1")
	}
	n, _ := arr[0].AsNumber()
	if n.UInt != 1 {
		t.Errorf("expected the stored array to be unaffected by later mutation of the source slice, got %d", n.UInt)
	}
}

func mustObject(t *testing.T, v Value) map[string]Value {
	t.Helper()
	obj, ok := v.AsObject()
	if !ok {
		t.Fatalf("expected an object value")
	}
	return obj
}

func mustBool(t *testing.T, v Value) bool {
	t.Helper()
	b, ok := v.AsBool()
	if !ok {
		t.Fatalf("expected a bool value")
	}
	return b
}
