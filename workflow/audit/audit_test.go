package audit

import (
	"testing"
	"time"
)

func TestNew_MintsFreshEventIDPerCall(t *testing.T) {
	now := time.Now()
	a := New(EventInstanceStarted, "inst-1", 0, now)
	b := New(EventInstanceStarted, "inst-1", 0, now)

	if a.EventID == b.EventID {
		t.Errorf("expected distinct EventIDs across calls, got the same %v twice", a.EventID)
	}
	if a.Type != EventInstanceStarted || a.EntityID != "inst-1" || !a.OccurredAt.Equal(now) {
		t.Errorf("expected New to populate the event fields verbatim, got %+v", a)
	}
}

func TestNew_CarriesTaskID(t *testing.T) {
	e := New(EventInstanceCompleted, "inst-2", 7, time.Now())
	if e.TaskID != 7 {
		t.Errorf("expected TaskID=7, got %d", e.TaskID)
	}
}

func TestSinkFunc_AdaptsPlainFunction(t *testing.T) {
	var recorded Event
	var sink Sink = SinkFunc(func(e Event) { recorded = e })

	want := New(EventInstanceNavigated, "inst-3", 2, time.Now())
	sink.Record(want)

	if recorded != want {
		t.Errorf("expected SinkFunc to forward the event unchanged, got %+v want %+v", recorded, want)
	}
}

func TestNilSink_IsValidToReferenceButNotToCall(t *testing.T) {
	var sink Sink
	if sink != nil {
		t.Errorf("expected a zero-value Sink variable to be nil")
	}
}
