// Package engine is the top-level public API the host embeds: Definition
// (an immutable, shareable compiled process) and Instance (one live
// traversal of it). It wires together graph, condition, state,
// interpreter, simulator, navigator, codec and the host-supplied
// collaborators into the operations listed in the external interfaces
// section: create_definition, start, load, restore, and the instance-level
// lifecycle calls.
package engine

import (
	"context"
	"time"

	"github.com/flowcore/bpmnengine/common/logger"
	"github.com/flowcore/bpmnengine/workflow/audit"
	"github.com/flowcore/bpmnengine/workflow/codec"
	"github.com/flowcore/bpmnengine/workflow/condition"
	"github.com/flowcore/bpmnengine/workflow/errs"
	"github.com/flowcore/bpmnengine/workflow/graph"
	"github.com/flowcore/bpmnengine/workflow/host"
	"github.com/flowcore/bpmnengine/workflow/interpreter"
	"github.com/flowcore/bpmnengine/workflow/navigator"
	"github.com/flowcore/bpmnengine/workflow/simulator"
	"github.com/flowcore/bpmnengine/workflow/state"
)

// Definition wraps an immutable graph.Definition with the host
// collaborators needed to create and hydrate instances of it.
type Definition struct {
	graph    *graph.Definition
	store    host.Store
	notifier host.Notifier
	audit    audit.Sink
	log      *logger.Logger
	cond     *condition.Evaluator
}

// Option configures a Definition at construction time, following the
// teacher's functional-options pattern (common/bootstrap).
type Option func(*Definition)

// WithNotifier attaches a change notifier.
func WithNotifier(n host.Notifier) Option { return func(d *Definition) { d.notifier = n } }

// WithAuditSink attaches an audit event sink.
func WithAuditSink(s audit.Sink) Option { return func(d *Definition) { d.audit = s } }

// WithLogger attaches a structured logger; a nil logger is ignored and the
// default info-level text logger set by New is kept.
func WithLogger(l *logger.Logger) Option {
	return func(d *Definition) {
		if l != nil {
			d.log = l
		}
	}
}

// New wraps an already-compiled graph.Definition with the given store and
// options.
func New(g *graph.Definition, store host.Store, opts ...Option) *Definition {
	d := &Definition{
		graph: g,
		store: store,
		cond:  condition.New(),
		log:   logger.New("info", "text"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateDefinition implements create_definition(bytes) → Definition:
// decode a compiled Definition from its binary archive.
func CreateDefinition(data []byte, store host.Store, opts ...Option) (*Definition, error) {
	g, err := codec.DecodeDefinition(data)
	if err != nil {
		return nil, err
	}
	return New(g, store, opts...), nil
}

// ID returns the underlying graph's id.
func (d *Definition) ID() string { return d.graph.ID }

// Graph exposes the underlying immutable process graph for read-only
// inspection (the compiler, tooling, tests).
func (d *Definition) Graph() *graph.Definition { return d.graph }

// UserTasks returns the indices of every UserTask node.
func (d *Definition) UserTasks() []int32 { return d.graph.UserTasks() }

// TaskIDs returns the stable id table parallel to the task index space.
func (d *Definition) TaskIDs() []string { return d.graph.TaskIDs }

// Exists implements WorkflowDefinition.exist(entity_id): a read-only
// existence check against the host store before load/start.
func (d *Definition) Exists(ctx context.Context, entityID string) (bool, error) {
	ok, err := d.store.Exists(ctx, d.graph.FormatEntityID(entityID))
	if err != nil {
		return false, errs.Storage("check instance existence", err)
	}
	return ok, nil
}

// Start implements definition.start(entity_id) → Instance: create a fresh
// instance, run the interpreter to its first suspension point, simulate,
// set the default active task, then persist.
func (d *Definition) Start(ctx context.Context, entityID string) (*Instance, error) {
	st := state.New(d.graph.RootStartEvent())
	inst := d.newInstance(entityID, st)

	st.Mutate(func(l *state.Locked) {
		inst.interp.Run(l)
		inst.sim.Simulate(l)
		interpreter.SetDefaultActiveTask(l)
	})

	if err := inst.persist(ctx); err != nil {
		return nil, err
	}
	d.recordEvent(audit.EventInstanceStarted, entityID, -1)
	return inst, nil
}

// Load implements definition.load(entity_id) → Instance: create an
// instance and, if the store already has an entry, adopt its state
// directly. Unlike Start, no run()/simulate() pass happens here — whatever
// was last persisted is trusted as-is.
func (d *Definition) Load(ctx context.Context, entityID string) (*Instance, error) {
	st := state.New(d.graph.RootStartEvent())
	inst := d.newInstance(entityID, st)

	rec, ok, err := d.store.Get(ctx, d.graph.FormatEntityID(entityID))
	if err != nil {
		return nil, errs.Storage("load instance", err)
	}
	if ok {
		locked, err := codec.DecodeState(rec.Data)
		if err != nil {
			return nil, err
		}
		st.Replace(locked)
	}
	return inst, nil
}

// Restore implements definition.restore(entity_id, remote_id,
// remote_version, state_bytes) → Instance: decode state bytes, set the
// remote correlation, then persist.
func (d *Definition) Restore(ctx context.Context, entityID, remoteID string, remoteVersion int64, stateBytes []byte) (*Instance, error) {
	locked, err := codec.DecodeState(stateBytes)
	if err != nil {
		return nil, err
	}
	locked.SetRemoteID(remoteID, remoteVersion)

	st := state.FromLocked(locked)
	inst := d.newInstance(entityID, st)

	if err := inst.persist(ctx); err != nil {
		return nil, err
	}
	d.recordEvent(audit.EventInstanceRestored, entityID, -1)
	return inst, nil
}

func (d *Definition) newInstance(entityID string, st *state.State) *Instance {
	return &Instance{
		def:      d,
		entityID: entityID,
		state:    st,
		interp:   interpreter.New(d.graph, d.cond),
		sim:      simulator.New(d.graph, d.cond),
		nav:      navigator.New(d.graph),
	}
}

func (d *Definition) recordEvent(t audit.EventType, entityID string, taskID int32) {
	if d.audit == nil {
		return
	}
	d.audit.Record(audit.New(t, entityID, taskID, timeNow()))
}

// timeNow is split out so tests can stub determinism if ever needed; no
// clock injection is wired today since audit timestamps are best-effort.
func timeNow() time.Time { return time.Now() }
