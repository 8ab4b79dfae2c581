package engine

import (
	"context"
	"time"

	"github.com/flowcore/bpmnengine/workflow/audit"
	"github.com/flowcore/bpmnengine/workflow/codec"
	"github.com/flowcore/bpmnengine/workflow/errs"
	"github.com/flowcore/bpmnengine/workflow/host"
	"github.com/flowcore/bpmnengine/workflow/interpreter"
	"github.com/flowcore/bpmnengine/workflow/navigator"
	"github.com/flowcore/bpmnengine/workflow/patch"
	"github.com/flowcore/bpmnengine/workflow/query"
	"github.com/flowcore/bpmnengine/workflow/simulator"
	"github.com/flowcore/bpmnengine/workflow/state"
	"github.com/flowcore/bpmnengine/workflow/value"
)

// Instance is one live traversal of a Definition tied to an entity_id.
type Instance struct {
	def      *Definition
	entityID string
	state    *state.State

	interp *interpreter.Interpreter
	sim    *simulator.Simulator
	nav    *navigator.Navigator
}

func (inst *Instance) persist(ctx context.Context) error {
	data, err := codec.EncodeState(inst.state.Snapshot())
	if err != nil {
		return err
	}
	rec := inst.def.storeRecord(inst.entityID, data)
	if err := inst.def.store.Put(ctx, rec); err != nil {
		return errs.Storage("persist instance", err)
	}
	if inst.def.notifier != nil {
		_ = inst.def.notifier.NotifyInstanceChanged(ctx, inst.entityID)
	}
	return nil
}

func (d *Definition) storeRecord(entityID string, data []byte) host.Record {
	return host.Record{
		ID:      d.graph.FormatEntityID(entityID),
		Data:    data,
		Touched: time.Now(),
	}
}

// Complete implements instance.complete(task_id): the user-task step. On
// success the simulator is re-run and Active is set to the first pending
// task (or -1), then the instance is persisted.
func (inst *Instance) Complete(ctx context.Context, taskID int32) error {
	var stepErr error
	inst.state.Mutate(func(l *state.Locked) {
		if err := inst.interp.Complete(l, taskID); err != nil {
			stepErr = err
			return
		}
		inst.sim.Simulate(l)
		interpreter.SetDefaultActiveTask(l)
	})
	if stepErr != nil {
		return stepErr
	}
	if err := inst.persist(ctx); err != nil {
		return err
	}
	inst.def.recordEvent(audit.EventInstanceCompleted, inst.entityID, taskID)
	return nil
}

// NavigateTo implements instance.navigate_to(task_id). Unlike Complete,
// activating a task here doesn't itself suspend at a user task via Run —
// the navigator only rewrites pending/current markers — so Run is invoked
// explicitly afterward, mirroring the host wrapper's two-step call in the
// original source (navigate_to then run, then simulate).
func (inst *Instance) NavigateTo(ctx context.Context, taskID int32) error {
	inst.state.Mutate(func(l *state.Locked) {
		if inst.nav.NavigateTo(l, taskID) {
			inst.interp.Run(l)
			inst.sim.Simulate(l)
		}
	})
	if err := inst.persist(ctx); err != nil {
		return err
	}
	inst.def.recordEvent(audit.EventInstanceNavigated, inst.entityID, taskID)
	return nil
}

// SetVariables implements set_variables(task_id, map): refuse silently if
// task_id is not pending, otherwise coerce each entry into a Value and
// merge it into variables[task_ids[task_id]], then re-simulate and persist.
func (inst *Instance) SetVariables(ctx context.Context, taskID int32, fields map[string]any) error {
	applied := false
	inst.state.Mutate(func(l *state.Locked) {
		if l.PositionInPending(taskID) == -1 {
			return
		}
		key := inst.def.graph.TaskIDs[taskID]
		existing := l.Variables.Get(key)
		if !existing.IsObject() {
			existing = value.EmptyObject()
		}
		for k, v := range fields {
			existing = existing.WithField(k, coerce(v))
		}
		l.Variables = l.Variables.WithField(key, existing)
		applied = true
	})
	if !applied {
		return nil
	}
	inst.state.Mutate(func(l *state.Locked) {
		inst.sim.Simulate(l)
	})
	if err := inst.persist(ctx); err != nil {
		return err
	}
	inst.def.recordEvent(audit.EventInstanceVariablesSet, inst.entityID, taskID)
	return nil
}

// coerce implements the §4.5 type coercion rule: strings/booleans pass
// through, numbers become PosInt if non-negative and integral, NegInt if
// negative and integral, else Float; unsupported types are dropped to Null.
func coerce(v any) value.Value {
	switch t := v.(type) {
	case string:
		return value.NewString(t)
	case bool:
		return value.NewBool(t)
	case int:
		return coerceFloat(float64(t))
	case int32:
		return coerceFloat(float64(t))
	case int64:
		return coerceFloat(float64(t))
	case float32:
		return coerceFloat(float64(t))
	case float64:
		return coerceFloat(t)
	default:
		return value.Null
	}
}

func coerceFloat(f float64) value.Value {
	if f == float64(int64(f)) {
		if f >= 0 {
			return value.NewNumber(value.PosInt(uint64(f)))
		}
		return value.NewNumber(value.NegInt(int64(f)))
	}
	return value.NewNumber(value.Float(f))
}

// GetVariables implements instance.get_variables(task_id): only returns
// variables if task_id is currently pending.
func (inst *Instance) GetVariables(taskID int32) (value.Value, bool) {
	var v value.Value
	found := false
	inst.state.Read(func(l state.Locked) {
		if l.PositionInPending(taskID) == -1 {
			return
		}
		key := inst.def.graph.TaskIDs[taskID]
		v = l.Variables.Get(key)
		found = true
	})
	return v, found
}

// Query resolves a read-only dotted path against the instance's variable
// tree, for debugging/inspection.
func (inst *Instance) Query(path string) value.Value {
	var v value.Value
	inst.state.Read(func(l state.Locked) {
		v = query.Get(l.Variables, path)
	})
	return v
}

// ApplyVariablePatch applies an RFC 6902 JSON Patch document to the
// instance's variable tree as a single atomic edit, re-simulates, and
// persists.
func (inst *Instance) ApplyVariablePatch(ctx context.Context, patchDoc []byte) error {
	var applyErr error
	inst.state.Mutate(func(l *state.Locked) {
		next, err := patch.Apply(l.Variables, patchDoc)
		if err != nil {
			applyErr = err
			return
		}
		l.Variables = next
		inst.sim.Simulate(l)
	})
	if applyErr != nil {
		return applyErr
	}
	return inst.persist(ctx)
}

// State implements instance.state() → bytes.
func (inst *Instance) State() ([]byte, error) {
	return codec.EncodeState(inst.state.Snapshot())
}

// SetState implements instance.set_state(bytes).
func (inst *Instance) SetState(data []byte) error {
	locked, err := codec.DecodeState(data)
	if err != nil {
		return err
	}
	inst.state.Replace(locked)
	return nil
}

// PendingTasks implements instance.pending_tasks().
func (inst *Instance) PendingTasks() []int32 {
	var out []int32
	inst.state.Read(func(l state.Locked) { out = append(out, l.PendingTasks...) })
	return out
}

// VisitedTasks implements instance.visited_tasks().
func (inst *Instance) VisitedTasks() []int32 {
	var out []int32
	inst.state.Read(func(l state.Locked) { out = append(out, l.VisitedTasks...) })
	return out
}

// MaybeVisitedTasks implements instance.maybe_visited_tasks().
func (inst *Instance) MaybeVisitedTasks() []int32 {
	var out []int32
	inst.state.Read(func(l state.Locked) { out = append(out, l.MaybeVisitedTasks...) })
	return out
}

// GetActive implements instance.get_active().
func (inst *Instance) GetActive() int32 {
	var active int32
	inst.state.Read(func(l state.Locked) { active = l.Active })
	return active
}

// IsCompleted implements instance.is_completed().
func (inst *Instance) IsCompleted() bool {
	var completed bool
	inst.state.Read(func(l state.Locked) { completed = l.Completed })
	return completed
}

// Back implements instance.back() → int32.
func (inst *Instance) Back() int32 {
	var back int32
	inst.state.Read(func(l state.Locked) { back = inst.nav.Back(&l) })
	return back
}

// Destroy implements instance.destroy(): removes the persisted record.
// There is no in-process handle to free beyond normal garbage collection.
func (inst *Instance) Destroy(ctx context.Context) error {
	key := inst.def.graph.FormatEntityID(inst.entityID)
	if err := inst.def.store.Delete(ctx, key); err != nil {
		return errs.Storage("destroy instance", err)
	}
	return nil
}

// SetRemoteID implements Instance.SetRemoteID, persisting the new
// correlation immediately.
func (inst *Instance) SetRemoteID(ctx context.Context, remoteID string, remoteVersion int64) error {
	inst.state.Mutate(func(l *state.Locked) {
		l.SetRemoteID(remoteID, remoteVersion)
	})
	return inst.persist(ctx)
}

// GetRemoteID implements Instance.GetRemoteID.
func (inst *Instance) GetRemoteID() (string, int64, bool) {
	var id string
	var version int64
	var ok bool
	inst.state.Read(func(l state.Locked) {
		id, version, ok = l.RemoteID, l.RemoteVersion, l.HasRemoteID
	})
	return id, version, ok
}

// DebugSnapshot implements the original's print(): dumps every index
// vector plus variables; engine-server's responses are built from it.
type DebugSnapshot struct {
	Active            int32
	CurrentTasks      []int32
	CurrentFlows      []int32
	VisitedTasks      []int32
	VisitedFlows      []int32
	PendingTasks      []int32
	MaybeFutureTasks  []int32
	MaybeFutureFlows  []int32
	MaybeVisitedTasks []int32
	Variables         value.Value
	Completed         bool
}

// Snapshot returns a DebugSnapshot of the instance's current state.
func (inst *Instance) Snapshot() DebugSnapshot {
	snap := inst.state.Snapshot()
	return DebugSnapshot{
		Active:            snap.Active,
		CurrentTasks:      snap.CurrentTasks,
		CurrentFlows:      snap.CurrentFlows,
		VisitedTasks:      snap.VisitedTasks,
		VisitedFlows:      snap.VisitedFlows,
		PendingTasks:      snap.PendingTasks,
		MaybeFutureTasks:  snap.MaybeFutureTasks,
		MaybeFutureFlows:  snap.MaybeFutureFlows,
		MaybeVisitedTasks: snap.MaybeVisitedTasks,
		Variables:         snap.Variables,
		Completed:         snap.Completed,
	}
}
