// Package graph implements the immutable process graph: the compiled
// Definition a host parser produces, plus a structural validation pass
// (task and flow index bounds, start-event kind, default-branch bounds).
// Reachability is not checked.
package graph

import (
	"fmt"

	"github.com/flowcore/bpmnengine/workflow/ast"
)

// TaskKind discriminates the node variants the engine understands. Parallel
// gateways, timers, message events and the rest of full BPMN are explicitly
// out of scope.
type TaskKind int

const (
	TaskStartEvent TaskKind = iota
	TaskEndEvent
	TaskUserTask
	TaskExclusiveGateway
)

// Task is one node of the compiled graph. Id always equals its own index
// into Definition.Tasks; Incoming/Outgoing hold flow indices.
type Task struct {
	ID       int32
	Kind     TaskKind
	Incoming []int32
	Outgoing []int32
	// Default is only meaningful for TaskExclusiveGateway: the flow index
	// chosen when no outgoing condition matches, or -1 if none.
	Default int32
}

// IsUserTask reports whether this task suspends the real interpreter.
func (t Task) IsUserTask() bool { return t.Kind == TaskUserTask }

// Condition is the parsed gateway-flow guard. A flow with no condition
// (nil) leaving a gateway is only taken via the gateway default slot;
// flows leaving start events and user tasks are always taken.
type Condition struct {
	Expr *ast.Node
}

// Flow is one directed edge of the compiled graph.
type Flow struct {
	ID        int32
	SourceRef int32
	TargetRef int32
	Condition *Condition // nil when unconditional
}

// Definition is the immutable, shareable compiled process graph.
type Definition struct {
	ID         string
	Version    string
	StartEvent int32
	Tasks      []Task
	Flows      []Flow
	TaskIDs    []string
	FlowIDs    []string
	Parent     *Definition
	Children   []*Definition
	Autostart  bool
}

// RootStartEvent returns the start event to use when beginning execution,
// recursing into Parent when present (sub-process definitions delegate to
// their ancestor's entry point).
func (d *Definition) RootStartEvent() int32 {
	if d.Parent != nil {
		return d.Parent.RootStartEvent()
	}
	return d.StartEvent
}

// FormatEntityID composes the host store key for an instance of this
// definition, stable across restore/load/start.
func (d *Definition) FormatEntityID(entityID string) string {
	return fmt.Sprintf("%s_%s", d.ID, entityID)
}

// UserTasks returns the indices of every UserTask node, for UI
// pre-rendering of the full task list independent of any instance.
func (d *Definition) UserTasks() []int32 {
	var out []int32
	for _, t := range d.Tasks {
		if t.IsUserTask() {
			out = append(out, t.ID)
		}
	}
	return out
}

// Task fetches a task by id, reporting whether it exists.
func (d *Definition) Task(id int32) (Task, bool) {
	if id < 0 || int(id) >= len(d.Tasks) {
		return Task{}, false
	}
	return d.Tasks[id], true
}

// Flow fetches a flow by id, reporting whether it exists.
func (d *Definition) Flow(id int32) (Flow, bool) {
	if id < 0 || int(id) >= len(d.Flows) {
		return Flow{}, false
	}
	return d.Flows[id], true
}

// Validate checks the structural invariants every compiled Definition must
// satisfy before it is handed to an interpreter: flow indices in bounds,
// task indices in bounds, start_event naming a start-event node, default
// slots either -1 or a valid flow index. It does not check that the start
// event is unique (Compile does) or that any task is reachable.
func (d *Definition) Validate() error {
	if d.StartEvent < 0 || int(d.StartEvent) >= len(d.Tasks) {
		return fmt.Errorf("start_event %d out of range", d.StartEvent)
	}
	if d.Tasks[d.StartEvent].Kind != TaskStartEvent {
		return fmt.Errorf("start_event %d is not a StartEvent node", d.StartEvent)
	}
	for _, t := range d.Tasks {
		for _, f := range t.Incoming {
			if f < 0 || int(f) >= len(d.Flows) {
				return fmt.Errorf("task %d incoming flow %d out of range", t.ID, f)
			}
		}
		for _, f := range t.Outgoing {
			if f < 0 || int(f) >= len(d.Flows) {
				return fmt.Errorf("task %d outgoing flow %d out of range", t.ID, f)
			}
		}
		if t.Kind == TaskExclusiveGateway && t.Default != -1 {
			if t.Default < 0 || int(t.Default) >= len(d.Flows) {
				return fmt.Errorf("gateway %d default flow %d out of range", t.ID, t.Default)
			}
		}
	}
	for _, f := range d.Flows {
		if f.SourceRef < 0 || int(f.SourceRef) >= len(d.Tasks) {
			return fmt.Errorf("flow %d source_ref %d out of range", f.ID, f.SourceRef)
		}
		if f.TargetRef < 0 || int(f.TargetRef) >= len(d.Tasks) {
			return fmt.Errorf("flow %d target_ref %d out of range", f.ID, f.TargetRef)
		}
	}
	return nil
}
