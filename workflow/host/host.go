// Package host declares the interfaces the engine expects its embedder to
// supply: persistent storage for instance state, the text-form JSEP
// expression parser, an optional change notifier and an optional
// definition cache. None
// of these are implemented by the engine itself — §1 scopes them out as
// external collaborators with only their interfaces specified.
package host

import (
	"context"
	"time"
)

// Record is the persisted shape the host store keys by entity_id:
// "<definition_id>_<user_entity_id>" (Definition.FormatEntityID).
type Record struct {
	ID      string
	Data    []byte
	Touched time.Time
}

// Store is the persistent key-value contract for instance state. The
// engine never assumes anything about the backing technology — Postgres,
// Redis, an embedded KV store — only that Get/Put/Delete behave like a
// map keyed by the formatted entity id.
type Store interface {
	// Get fetches a Record, reporting ok=false if no entry exists (not an
	// error — a missing entry is the ordinary "first load" case).
	Get(ctx context.Context, id string) (rec Record, ok bool, err error)
	Put(ctx context.Context, rec Record) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// Notifier publishes a best-effort signal whenever an instance finishes a
// mutating operation; it is optional — engine operations must succeed even
// if Notifier is nil or a publish fails, since notification is purely an
// optimization for cache invalidation in other processes.
type Notifier interface {
	NotifyInstanceChanged(ctx context.Context, entityID string) error
}

// DefinitionCache is an optional lookup cache for encoded Definitions,
// keyed by definition id.
type DefinitionCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// JsepParser converts the text form of a condition expression into the
// JSEP-shaped JSON the engine's ast package understands. Supplied by the
// host; the engine treats it as a pure function.
type JsepParser interface {
	ParseJsepExpression(expr string) ([]byte, error)
}
