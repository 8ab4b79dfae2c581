// Package handlers wires the engine's public operations onto Echo routes,
// grounded on the teacher's cmd/orchestrator/handlers (request struct in,
// JSON response out, errors mapped to HTTP status by kind).
package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flowcore/bpmnengine/common/logger"
	"github.com/flowcore/bpmnengine/workflow/engine"
	"github.com/flowcore/bpmnengine/workflow/errs"
	"github.com/flowcore/bpmnengine/workflow/host"
)

// Notifier matches workflow/host.Notifier; declared locally so main.go
// doesn't need to import the host package just to type an optional field.
type Notifier = host.Notifier

// DefinitionCache matches workflow/host.DefinitionCache, for the same
// reason.
type DefinitionCache = host.DefinitionCache

// Registry holds every loaded Definition (keyed by its id) and every live
// Instance (keyed by entity_id), and exposes them over HTTP. Production
// deployments would shard or evict this; for the reference bridge a single
// in-memory map mirrors the WorkflowStore the original wasm host used.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]*engine.Definition
	instances   map[string]*engine.Instance

	store       host.Store
	notifier    Notifier
	defCache    host.DefinitionCache
	defCacheTTL time.Duration
	log         *logger.Logger
}

// NewRegistry builds an empty Registry bound to the given store/notifier.
// defCache may be nil, in which case definitions are only ever held in the
// in-process map; defCacheTTL governs how long a raw archive survives in
// defCache before a fresh create_definition call is required to repopulate
// it.
func NewRegistry(store host.Store, notifier Notifier, defCache host.DefinitionCache, defCacheTTL time.Duration, log *logger.Logger) *Registry {
	return &Registry{
		definitions: make(map[string]*engine.Definition),
		instances:   make(map[string]*engine.Instance),
		store:       store,
		notifier:    notifier,
		defCache:    defCache,
		defCacheTTL: defCacheTTL,
		log:         log,
	}
}

// Register mounts every route this bridge exposes.
func (r *Registry) Register(e *echo.Echo) {
	e.POST("/definitions", r.createDefinition)
	e.GET("/definitions/:id/tasks", r.userTasks)

	e.POST("/definitions/:id/instances/:entity_id/start", r.start)
	e.POST("/definitions/:id/instances/:entity_id/load", r.load)
	e.POST("/definitions/:id/instances/:entity_id/restore", r.restore)

	e.POST("/instances/:entity_id/complete", r.complete)
	e.POST("/instances/:entity_id/navigate", r.navigateTo)
	e.POST("/instances/:entity_id/variables/:task_id", r.setVariables)
	e.GET("/instances/:entity_id/variables/:task_id", r.getVariables)
	e.GET("/instances/:entity_id/state", r.getState)
	e.POST("/instances/:entity_id/state", r.setState)
	e.GET("/instances/:entity_id/snapshot", r.snapshot)
	e.DELETE("/instances/:entity_id", r.destroy)
}

func (r *Registry) definitionOpts() []engine.Option {
	opts := []engine.Option{engine.WithLogger(r.log)}
	if r.notifier != nil {
		opts = append(opts, engine.WithNotifier(r.notifier))
	}
	return opts
}

func (r *Registry) putDefinition(d *engine.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[d.ID()] = d
}

// getDefinition looks up a previously registered definition by id. If it is
// not held in-process but a definition cache is configured, it falls back
// to rehydrating the compiled definition from the cached archive bytes —
// the scenario a second engine-server replica hits after a create_definition
// call lands on the first one.
func (r *Registry) getDefinition(ctx context.Context, id string) (*engine.Definition, bool) {
	r.mu.RLock()
	d, ok := r.definitions[id]
	r.mu.RUnlock()
	if ok {
		return d, true
	}

	if r.defCache == nil {
		return nil, false
	}
	data, found, err := r.defCache.Get(ctx, id)
	if err != nil || !found {
		return nil, false
	}
	rehydrated, err := engine.CreateDefinition(data, r.store, r.definitionOpts()...)
	if err != nil {
		return nil, false
	}
	r.putDefinition(rehydrated)
	return rehydrated, true
}

func (r *Registry) putInstance(entityID string, inst *engine.Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[entityID] = inst
}

func (r *Registry) getInstance(entityID string) (*engine.Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[entityID]
	return inst, ok
}

func (r *Registry) dropInstance(entityID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, entityID)
}

// statusFor maps an engine error kind onto an HTTP status, the way
// errs.Is kind dispatch lets a host recover without string matching.
func statusFor(err error) int {
	switch {
	case errs.Is(err, errs.KindTaskNotFound):
		return http.StatusNotFound
	case errs.Is(err, errs.KindNotAUserTask):
		return http.StatusConflict
	case errs.Is(err, errs.KindCodecError):
		return http.StatusBadRequest
	case errs.Is(err, errs.KindStorageError):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func jsonErr(c echo.Context, err error) error {
	return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
}
