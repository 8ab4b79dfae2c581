package interpreter

import (
	"testing"

	"github.com/flowcore/bpmnengine/workflow/ast"
	"github.com/flowcore/bpmnengine/workflow/condition"
	"github.com/flowcore/bpmnengine/workflow/graph"
	"github.com/flowcore/bpmnengine/workflow/state"
	"github.com/flowcore/bpmnengine/workflow/value"
)

// linearDefinition: start(0) -f0-> task(1) -f1-> end(2)
func linearDefinition(t *testing.T) *graph.Definition {
	t.Helper()
	return &graph.Definition{
		StartEvent: 0,
		Tasks: []graph.Task{
			{ID: 0, Kind: graph.TaskStartEvent, Outgoing: []int32{0}},
			{ID: 1, Kind: graph.TaskUserTask, Incoming: []int32{0}, Outgoing: []int32{1}},
			{ID: 2, Kind: graph.TaskEndEvent, Incoming: []int32{1}},
		},
		Flows: []graph.Flow{
			{ID: 0, SourceRef: 0, TargetRef: 1},
			{ID: 1, SourceRef: 1, TargetRef: 2},
		},
	}
}

func TestRun_SuspendsAtUserTask(t *testing.T) {
	def := linearDefinition(t)
	in := New(def, condition.New())
	s := state.New(def.StartEvent)

	s.Mutate(func(l *state.Locked) { in.Run(l) })

	s.Read(func(l state.Locked) {
		if len(l.PendingTasks) != 1 || l.PendingTasks[0] != 1 {
			t.Fatalf("expected task 1 pending, got %v", l.PendingTasks)
		}
		if !l.HasVisited(1) {
			t.Errorf("expected task 1 marked visited")
		}
		if l.Completed {
			t.Errorf("expected instance not yet completed")
		}
	})
}

func TestComplete_AdvancesToEndEvent(t *testing.T) {
	def := linearDefinition(t)
	in := New(def, condition.New())
	s := state.New(def.StartEvent)
	s.Mutate(func(l *state.Locked) { in.Run(l) })

	var completeErr error
	s.Mutate(func(l *state.Locked) { completeErr = in.Complete(l, 1) })
	if completeErr != nil {
		t.Fatalf("Complete failed: %v", completeErr)
	}

	s.Read(func(l state.Locked) {
		if !l.Completed {
			t.Errorf("expected instance completed after reaching the end event")
		}
		if len(l.PendingTasks) != 0 {
			t.Errorf("expected no pending tasks once completed, got %v", l.PendingTasks)
		}
	})
}

func TestComplete_UnknownTaskReturnsError(t *testing.T) {
	def := linearDefinition(t)
	in := New(def, condition.New())
	s := state.New(def.StartEvent)
	s.Mutate(func(l *state.Locked) { in.Run(l) })

	var err error
	s.Mutate(func(l *state.Locked) { err = in.Complete(l, 99) })
	if err == nil {
		t.Errorf("expected an error completing a task that is not pending")
	}
}

func TestComplete_NonUserTaskReturnsError(t *testing.T) {
	def := linearDefinition(t)
	in := New(def, condition.New())
	s := state.New(def.StartEvent)

	s.Mutate(func(l *state.Locked) {
		l.PushPendingTask(2) // end event, not a user task
		err := in.Complete(l, 2)
		if err == nil {
			t.Errorf("expected an error completing a non-user-task")
		}
	})
}

// gatewayDefinition: start(0) -f0-> gw(1) -f1(cond)-> a(2), -f2(default)-> b(3)
func gatewayDefinition(t *testing.T, gwDefault int32) *graph.Definition {
	t.Helper()
	return &graph.Definition{
		StartEvent: 0,
		Tasks: []graph.Task{
			{ID: 0, Kind: graph.TaskStartEvent, Outgoing: []int32{0}},
			{ID: 1, Kind: graph.TaskExclusiveGateway, Incoming: []int32{0}, Outgoing: []int32{1, 2}, Default: gwDefault},
			{ID: 2, Kind: graph.TaskEndEvent, Incoming: []int32{1}},
			{ID: 3, Kind: graph.TaskEndEvent, Incoming: []int32{2}},
		},
		Flows: []graph.Flow{
			{ID: 0, SourceRef: 0, TargetRef: 1},
			{
				ID: 1, SourceRef: 1, TargetRef: 2,
				Condition: &graph.Condition{
					Expr: ast.Binary(ast.OpEqual, ast.Literal(value.NewBool(true)), ast.Literal(value.NewBool(true))),
				},
			},
			{ID: 2, SourceRef: 1, TargetRef: 3},
		},
	}
}

func TestRun_GatewayTakesMatchingCondition(t *testing.T) {
	def := gatewayDefinition(t, 2)
	in := New(def, condition.New())
	s := state.New(def.StartEvent)

	s.Mutate(func(l *state.Locked) { in.Run(l) })

	s.Read(func(l state.Locked) {
		if !l.Completed {
			t.Fatalf("expected instance to run to completion through the gateway")
		}
		if len(l.VisitedFlows) != 2 || l.VisitedFlows[1] != 1 {
			t.Errorf("expected flow 1 (the matching branch) traversed, got %v", l.VisitedFlows)
		}
		if containsFlow(l.VisitedFlows, 2) {
			t.Errorf("expected flow 2 (the default branch) not traversed, got %v", l.VisitedFlows)
		}
	})
}

func containsFlow(flows []int32, id int32) bool {
	for _, f := range flows {
		if f == id {
			return true
		}
	}
	return false
}

func TestRun_GatewayNoMatchNoDefaultStallsSilently(t *testing.T) {
	def := gatewayDefinition(t, -1)
	def.Flows[1].Condition = &graph.Condition{
		Expr: ast.Binary(ast.OpEqual, ast.Literal(value.NewBool(true)), ast.Literal(value.NewBool(false))),
	}
	in := New(def, condition.New())
	s := state.New(def.StartEvent)

	s.Mutate(func(l *state.Locked) { in.Run(l) })

	s.Read(func(l state.Locked) {
		if l.Completed {
			t.Errorf("expected instance to stall, not complete, when choose_branch yields -1")
		}
		if len(l.CurrentTasks) != 0 || len(l.CurrentFlows) != 0 {
			t.Errorf("expected driver to quiesce with empty current stacks, got tasks=%v flows=%v", l.CurrentTasks, l.CurrentFlows)
		}
	})
}

func TestSetDefaultActiveTask(t *testing.T) {
	l := &state.Locked{}
	SetDefaultActiveTask(l)
	if l.Active != -1 {
		t.Errorf("expected Active=-1 with no pending tasks, got %d", l.Active)
	}

	l.PendingTasks = []int32{5, 6}
	SetDefaultActiveTask(l)
	if l.Active != 5 {
		t.Errorf("expected Active=5 (first pending), got %d", l.Active)
	}
}
