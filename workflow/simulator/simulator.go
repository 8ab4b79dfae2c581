// Package simulator computes a speculative forward reachability pass over
// the same process graph as the interpreter, using current variable values,
// without ever mutating the real execution markers. It exists purely to
// let a UI preview which user tasks are reachable before the user commits
// to a decision.
package simulator

import (
	"github.com/flowcore/bpmnengine/workflow/condition"
	"github.com/flowcore/bpmnengine/workflow/graph"
	"github.com/flowcore/bpmnengine/workflow/state"
)

// Simulator walks the speculative frontier (MaybeFutureTasks/Flows) of an
// instance's state against an immutable Definition.
type Simulator struct {
	def  *graph.Definition
	cond *condition.Evaluator
}

// New returns a Simulator bound to def, evaluating gateway conditions with
// eval.
func New(def *graph.Definition, eval *condition.Evaluator) *Simulator {
	return &Simulator{def: def, cond: eval}
}

// Simulate implements simulate(): clear the speculative frontier, seed it
// with the definition's root start event, then drain it to completion.
// Must be called with the instance's state locked for writing.
func (sim *Simulator) Simulate(l *state.Locked) {
	l.ClearFuture(sim.def.RootStartEvent())
	sim.run(l)
}

// run drains MaybeFutureTasks/MaybeFutureFlows, identical in shape to the
// interpreter's driver except that user tasks do not suspend — the
// simulator walks straight through them — and every user-task source
// encountered when popping a flow is recorded (duplicates allowed).
func (sim *Simulator) run(l *state.Locked) {
	for {
		if taskID, ok := l.PopMaybeFutureTask(); ok {
			task, found := sim.def.Task(taskID)
			if !found {
				continue
			}
			switch task.Kind {
			case graph.TaskStartEvent, graph.TaskUserTask:
				for _, flowID := range task.Outgoing {
					l.PushMaybeFutureFlow(flowID)
				}
				continue
			case graph.TaskExclusiveGateway:
				chosen := sim.cond.ChooseBranch(task, sim.def, l.Variables)
				if chosen != -1 {
					l.PushMaybeFutureFlow(chosen)
				}
				continue
			case graph.TaskEndEvent:
				continue
			}
			continue
		}

		if flowID, ok := l.PopMaybeFutureFlow(); ok {
			flow, found := sim.def.Flow(flowID)
			if !found {
				continue
			}
			l.PushMaybeFutureTask(flow.TargetRef)
			if source, ok := sim.def.Task(flow.SourceRef); ok && source.IsUserTask() {
				l.PushMaybeVisitedTask(flow.SourceRef)
			}
			continue
		}

		return
	}
}
