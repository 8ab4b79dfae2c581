package patch

import (
	"testing"

	"github.com/flowcore/bpmnengine/workflow/value"
)

func TestApply_AddsField(t *testing.T) {
	vars := value.EmptyObject().WithField("UT1", value.EmptyObject())
	doc := []byte(`[{"op":"add","path":"/UT1/choice","value":"approve"}]`)

	got, err := Apply(vars, doc)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	choice, ok := got.Get("UT1").Get("choice").AsString()
	if !ok || choice != "approve" {
		t.Errorf("expected UT1.choice=approve, got %q ok=%v", choice, ok)
	}
}

func TestApply_ReplacesField(t *testing.T) {
	vars := value.EmptyObject().WithField("amount", value.NewNumber(value.PosInt(10)))
	doc := []byte(`[{"op":"replace","path":"/amount","value":99}]`)

	got, err := Apply(vars, doc)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	n, ok := got.Get("amount").AsNumber()
	if !ok || n.AsFloat64() != 99 {
		t.Errorf("expected amount=99, got %v ok=%v", n, ok)
	}
}

func TestApply_RemovesField(t *testing.T) {
	vars := value.EmptyObject().WithField("temp", value.NewBool(true))
	doc := []byte(`[{"op":"remove","path":"/temp"}]`)

	got, err := Apply(vars, doc)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !got.Get("temp").IsNull() {
		t.Errorf("expected temp to be removed")
	}
}

func TestApply_InvalidPatchPathFails(t *testing.T) {
	vars := value.EmptyObject()
	doc := []byte(`[{"op":"replace","path":"/missing","value":1}]`)

	if _, err := Apply(vars, doc); err == nil {
		t.Errorf("expected an error replacing a path that does not exist")
	}
}

func TestApply_MalformedPatchDocumentFails(t *testing.T) {
	vars := value.EmptyObject()
	if _, err := Apply(vars, []byte(`not json`)); err == nil {
		t.Errorf("expected an error decoding a malformed patch document")
	}
}

func TestApply_IsAllOrNothing(t *testing.T) {
	vars := value.EmptyObject().WithField("a", value.NewNumber(value.PosInt(1)))
	doc := []byte(`[
		{"op":"replace","path":"/a","value":2},
		{"op":"remove","path":"/does-not-exist"}
	]`)

	got, err := Apply(vars, doc)
	if err == nil {
		t.Fatalf("expected the patch application to fail on the second op")
	}
	if !got.IsNull() {
		t.Errorf("expected no variables returned on a failed apply")
	}
}
