// Package errs defines the typed error kinds that cross the engine's public
// API boundary, per the host-facing error contract.
package errs

import "fmt"

// Kind classifies an engine error for the host so it can decide how to
// recover without parsing error strings.
type Kind int

const (
	// KindTaskNotFound is returned when complete is called with a task id
	// that is not currently pending (or not found at all).
	KindTaskNotFound Kind = iota
	// KindNotAUserTask indicates a pending id resolved to a non-user-task
	// node; this only happens if internal state has been corrupted.
	KindNotAUserTask
	// KindCodecError indicates bytes given to create_definition, set_state
	// or restore failed to decode against the expected schema.
	KindCodecError
	// KindStorageError wraps a failure surfaced verbatim from the host
	// store.
	KindStorageError
)

func (k Kind) String() string {
	switch k {
	case KindTaskNotFound:
		return "TaskNotFound"
	case KindNotAUserTask:
		return "NotAUserTask"
	case KindCodecError:
		return "CodecError"
	case KindStorageError:
		return "StorageError"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned across the engine's public
// operations; callers type-assert or use errors.As to inspect Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// TaskNotFound builds a KindTaskNotFound error for the given task id.
func TaskNotFound(taskID int32) error {
	return &Error{Kind: KindTaskNotFound, Msg: fmt.Sprintf("task with id %d not found", taskID)}
}

// NotAUserTask builds a KindNotAUserTask error for the given task id.
func NotAUserTask(taskID int32) error {
	return &Error{Kind: KindNotAUserTask, Msg: fmt.Sprintf("task with id %d is not a usertask", taskID)}
}

// Codec wraps an underlying decode/encode failure as a KindCodecError.
func Codec(msg string, err error) error {
	return &Error{Kind: KindCodecError, Msg: msg, Err: err}
}

// Storage wraps an underlying host store failure as a KindStorageError.
func Storage(msg string, err error) error {
	return &Error{Kind: KindStorageError, Msg: msg, Err: err}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	} else {
		return false
	}
	return e.Kind == kind
}
