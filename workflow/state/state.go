// Package state implements the mutable per-instance record: the eight
// index vectors tracking real and speculative traversal, the variable
// tree, and the completion/correlation flags, all behind a single
// reader-writer lock. It mirrors the teacher's pattern of a plain struct
// guarded by one lock rather than actor/channel-based state.
package state

import (
	"sync"

	"github.com/flowcore/bpmnengine/workflow/value"
)

// Locked is the guarded payload. Every field here is part of the
// serialized state and must round-trip through the codec.
type Locked struct {
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
	RemoteID          string
	HasRemoteID       bool
	RemoteVersion     int64
	HasRemoteVersion  bool
}

// State wraps Locked behind a reader-writer lock, the single synchronization
// point for an instance (§5: "single-logical-threaded per instance").
type State struct {
	mu    sync.RWMutex
	inner Locked
}

// New initializes a fresh State with the start event pushed onto
// CurrentTasks, Active at -1, and Variables as an empty Object.
func New(startEvent int32) *State {
	return &State{
		inner: Locked{
			Active:       -1,
			CurrentTasks: []int32{startEvent},
			Variables:    value.EmptyObject(),
		},
	}
}

// FromLocked wraps an already-built Locked record, e.g. one just decoded
// from the binary codec.
func FromLocked(l Locked) *State {
	return &State{inner: l}
}

// Snapshot returns a deep-enough copy of the locked record for read-only
// inspection (DebugSnapshot, codec encode).
func (s *State) Snapshot() Locked {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLocked(s.inner)
}

// Replace swaps the entire locked record, used by set_state/restore.
func (s *State) Replace(l Locked) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner = cloneLocked(l)
}

func cloneLocked(l Locked) Locked {
	clone := l
	clone.CurrentTasks = append([]int32(nil), l.CurrentTasks...)
	clone.CurrentFlows = append([]int32(nil), l.CurrentFlows...)
	clone.VisitedTasks = append([]int32(nil), l.VisitedTasks...)
	clone.VisitedFlows = append([]int32(nil), l.VisitedFlows...)
	clone.PendingTasks = append([]int32(nil), l.PendingTasks...)
	clone.MaybeFutureTasks = append([]int32(nil), l.MaybeFutureTasks...)
	clone.MaybeFutureFlows = append([]int32(nil), l.MaybeFutureFlows...)
	clone.MaybeVisitedTasks = append([]int32(nil), l.MaybeVisitedTasks...)
	return clone
}

// Mutate runs fn with exclusive access to the locked record. Every public
// operation that changes the instance (complete, navigate_to,
// set_variables, simulate) funnels through this single entry point so that
// intermediate states during a worklist drain stay invisible to readers.
func (s *State) Mutate(fn func(*Locked)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.inner)
}

// Read runs fn with shared access to the locked record.
func (s *State) Read(fn func(Locked)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.inner)
}

// HasVisited reports whether taskID appears in VisitedTasks.
func (l *Locked) HasVisited(taskID int32) bool { return contains(l.VisitedTasks, taskID) }

// HasMaybeVisited reports whether taskID appears in MaybeVisitedTasks.
func (l *Locked) HasMaybeVisited(taskID int32) bool { return contains(l.MaybeVisitedTasks, taskID) }

func contains(xs []int32, v int32) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// PushCurrentTask pushes onto the LIFO current-task stack.
func (l *Locked) PushCurrentTask(id int32) { l.CurrentTasks = append(l.CurrentTasks, id) }

// PopCurrentTask pops the LIFO current-task stack.
func (l *Locked) PopCurrentTask() (int32, bool) { return pop(&l.CurrentTasks) }

// PushCurrentFlow pushes onto the LIFO current-flow stack.
func (l *Locked) PushCurrentFlow(id int32) { l.CurrentFlows = append(l.CurrentFlows, id) }

// PopCurrentFlow pops the LIFO current-flow stack.
func (l *Locked) PopCurrentFlow() (int32, bool) { return pop(&l.CurrentFlows) }

// PushVisitedTask appends id to VisitedTasks only if not already present,
// preserving the duplicate-free, insertion-ordered invariant.
func (l *Locked) PushVisitedTask(id int32) {
	if !contains(l.VisitedTasks, id) {
		l.VisitedTasks = append(l.VisitedTasks, id)
	}
}

// PushVisitedFlow appends id to VisitedFlows (duplicates allowed).
func (l *Locked) PushVisitedFlow(id int32) { l.VisitedFlows = append(l.VisitedFlows, id) }

// PushPendingTask appends id to PendingTasks.
func (l *Locked) PushPendingTask(id int32) { l.PendingTasks = append(l.PendingTasks, id) }

// PendingTaskByIndex removes and returns the pending task at position idx.
func (l *Locked) PendingTaskByIndex(idx int) (int32, bool) {
	if idx < 0 || idx >= len(l.PendingTasks) {
		return 0, false
	}
	id := l.PendingTasks[idx]
	l.PendingTasks = append(l.PendingTasks[:idx], l.PendingTasks[idx+1:]...)
	return id, true
}

// PositionInPending returns the index of taskID in PendingTasks, or -1.
func (l *Locked) PositionInPending(taskID int32) int {
	for i, id := range l.PendingTasks {
		if id == taskID {
			return i
		}
	}
	return -1
}

// PushMaybeFutureTask pushes onto the LIFO simulator task stack.
func (l *Locked) PushMaybeFutureTask(id int32) {
	l.MaybeFutureTasks = append(l.MaybeFutureTasks, id)
}

// PopMaybeFutureTask pops the LIFO simulator task stack.
func (l *Locked) PopMaybeFutureTask() (int32, bool) { return pop(&l.MaybeFutureTasks) }

// PushMaybeFutureFlow pushes onto the LIFO simulator flow stack.
func (l *Locked) PushMaybeFutureFlow(id int32) {
	l.MaybeFutureFlows = append(l.MaybeFutureFlows, id)
}

// PopMaybeFutureFlow pops the LIFO simulator flow stack.
func (l *Locked) PopMaybeFutureFlow() (int32, bool) { return pop(&l.MaybeFutureFlows) }

// PushMaybeVisitedTask appends id to MaybeVisitedTasks; unlike VisitedTasks
// this list allows duplicates — the same task reached by two branches
// appears twice.
func (l *Locked) PushMaybeVisitedTask(id int32) {
	l.MaybeVisitedTasks = append(l.MaybeVisitedTasks, id)
}

// SetUserTask clears current/pending state and activates a single user
// task as the sole pending step, used by the navigator's jump-to logic.
func (l *Locked) SetUserTask(taskID int32) {
	l.CurrentTasks = nil
	l.CurrentFlows = nil
	l.PendingTasks = []int32{taskID}
	l.Active = taskID
}

// ClearFuture resets the simulator frontier and seeds it with startEvent,
// the first step of every simulate() call.
func (l *Locked) ClearFuture(startEvent int32) {
	l.MaybeFutureTasks = []int32{startEvent}
	l.MaybeFutureFlows = nil
	l.MaybeVisitedTasks = nil
}

// SetCompleted marks the instance as terminated.
func (l *Locked) SetCompleted() { l.Completed = true }

// SetRemoteID records correlation with an external system.
func (l *Locked) SetRemoteID(id string, version int64) {
	l.RemoteID = id
	l.HasRemoteID = true
	l.RemoteVersion = version
	l.HasRemoteVersion = true
}

func pop(stack *[]int32) (int32, bool) {
	n := len(*stack)
	if n == 0 {
		return 0, false
	}
	v := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	return v, true
}
