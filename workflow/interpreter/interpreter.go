// Package interpreter advances the real execution frontier of a workflow
// instance: start events push their outgoing flows, user tasks suspend,
// exclusive gateways branch, end events terminate. The driver is expressed
// as an explicit worklist rather than recursion, per the portability note
// in the design notes, to keep stack depth bounded on pathological graphs.
package interpreter

import (
	"github.com/flowcore/bpmnengine/workflow/condition"
	"github.com/flowcore/bpmnengine/workflow/errs"
	"github.com/flowcore/bpmnengine/workflow/graph"
	"github.com/flowcore/bpmnengine/workflow/state"
)

// Interpreter drives one instance's real execution frontier against an
// immutable Definition.
type Interpreter struct {
	def  *graph.Definition
	cond *condition.Evaluator
}

// New returns an Interpreter bound to def, evaluating gateway conditions
// with eval.
func New(def *graph.Definition, eval *condition.Evaluator) *Interpreter {
	return &Interpreter{def: def, cond: eval}
}

// Run drains CurrentTasks/CurrentFlows to quiescence: a user task pushed
// onto Pending, or an end event reached. It must be called with the
// instance's state already locked for writing (st.Mutate's fn).
func (in *Interpreter) Run(l *state.Locked) {
	for {
		if taskID, ok := l.PopCurrentTask(); ok {
			task, found := in.def.Task(taskID)
			if !found {
				continue
			}
			switch task.Kind {
			case graph.TaskStartEvent:
				for _, flowID := range task.Outgoing {
					l.PushCurrentFlow(flowID)
				}
				continue
			case graph.TaskUserTask:
				l.PushPendingTask(taskID)
				l.PushVisitedTask(taskID)
				return
			case graph.TaskExclusiveGateway:
				chosen := in.cond.ChooseBranch(task, in.def, l.Variables)
				if chosen != -1 {
					l.PushCurrentFlow(chosen)
				}
				continue
			case graph.TaskEndEvent:
				l.SetCompleted()
				return
			}
			continue
		}

		if flowID, ok := l.PopCurrentFlow(); ok {
			flow, found := in.def.Flow(flowID)
			if !found {
				continue
			}
			l.PushVisitedFlow(flowID)
			l.PushCurrentTask(flow.TargetRef)
			l.PushVisitedTask(flow.SourceRef)
			continue
		}

		return
	}
}

// Complete implements the user-task step: find task_id in PendingTasks,
// validate it really is a user task, remove it from the pending set, push
// its outgoing flows, then resume the driver loop.
func (in *Interpreter) Complete(l *state.Locked, taskID int32) error {
	idx := l.PositionInPending(taskID)
	if idx == -1 {
		return errs.TaskNotFound(taskID)
	}

	task, found := in.def.Task(taskID)
	if !found {
		return errs.TaskNotFound(taskID)
	}
	if !task.IsUserTask() {
		return errs.NotAUserTask(taskID)
	}

	if _, ok := l.PendingTaskByIndex(idx); !ok {
		return errs.TaskNotFound(taskID)
	}

	for _, flowID := range task.Outgoing {
		l.PushCurrentFlow(flowID)
	}

	in.Run(l)
	return nil
}

// SetDefaultActiveTask sets Active to the first pending task, or -1 if none.
func SetDefaultActiveTask(l *state.Locked) {
	if len(l.PendingTasks) > 0 {
		l.Active = l.PendingTasks[0]
		return
	}
	l.Active = -1
}
