// Package navigator implements the "jump back to a previously visited user
// task" operation used by UIs that let a user revisit an earlier step.
package navigator

import (
	"github.com/flowcore/bpmnengine/workflow/graph"
	"github.com/flowcore/bpmnengine/workflow/state"
)

// Navigator resolves navigate_to against an immutable Definition.
type Navigator struct {
	def *graph.Definition
}

// New returns a Navigator bound to def.
func New(def *graph.Definition) *Navigator {
	return &Navigator{def: def}
}

// NavigateTo implements navigate_to(task_id): if task_id is itself a user
// task that has been both really visited and maybe-visited, activate it
// directly; otherwise walk backward through VisitedTasks to find the
// nearest qualifying predecessor and activate that instead. It reports
// whether a target was found and activated — callers (the engine layer)
// are responsible for re-running the interpreter/simulator afterward, since
// activating a task here only rewrites the pending/current markers.
//
// completed is deliberately left untouched even when navigating away from
// a finished instance — the source leaves it as-is, and this engine
// follows that rather than guessing at richer "uncomplete" semantics.
func (n *Navigator) NavigateTo(l *state.Locked, taskID int32) bool {
	if task, ok := n.def.Task(taskID); ok && task.IsUserTask() && l.HasVisited(taskID) && l.HasMaybeVisited(taskID) {
		l.SetUserTask(taskID)
		return true
	}

	if prev, ok := n.GetPreviousUserTask(l, taskID); ok {
		l.SetUserTask(prev)
		return true
	}

	return false
}

// GetPreviousUserTask walks backward through VisitedTasks starting from
// taskID's position, returning the nearest earlier element that is both a
// user task and really visited. Because VisitedTasks is deduplicated on
// push, this walk naturally skips re-visited tasks — gateways interleaved
// in the history are skipped the same way.
func (n *Navigator) GetPreviousUserTask(l *state.Locked, taskID int32) (int32, bool) {
	current := taskID
	for {
		pos := indexOf(l.VisitedTasks, current)
		if pos <= 0 {
			return 0, false
		}
		candidate := l.VisitedTasks[pos-1]
		if task, ok := n.def.Task(candidate); ok && task.IsUserTask() && l.HasVisited(candidate) {
			return candidate, true
		}
		current = candidate
	}
}

// Back implements instance.back(): the previous user task from Active, or
// -1 if none.
func (n *Navigator) Back(l *state.Locked) int32 {
	if prev, ok := n.GetPreviousUserTask(l, l.Active); ok {
		return prev
	}
	return -1
}

func indexOf(xs []int32, v int32) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}
