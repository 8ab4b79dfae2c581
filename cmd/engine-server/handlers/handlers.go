package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/flowcore/bpmnengine/workflow/engine"
)


type createDefinitionRequest struct {
	Data []byte `json:"data"` // base64-decoded binary archive, per create_definition(bytes)
}

func (r *Registry) createDefinition(c echo.Context) error {
	var req createDefinitionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	def, err := engine.CreateDefinition(req.Data, r.store, r.definitionOpts()...)
	if err != nil {
		return jsonErr(c, err)
	}
	r.putDefinition(def)

	if r.defCache != nil {
		if err := r.defCache.Set(c.Request().Context(), def.ID(), req.Data, r.defCacheTTL); err != nil {
			r.log.Warn("definition cache write failed", "id", def.ID(), "error", err)
		}
	}

	return c.JSON(http.StatusCreated, map[string]string{"id": def.ID()})
}

func (r *Registry) userTasks(c echo.Context) error {
	def, ok := r.getDefinition(c.Request().Context(), c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "definition not found"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user_tasks": def.UserTasks(),
		"task_ids":   def.TaskIDs(),
	})
}

func (r *Registry) start(c echo.Context) error {
	def, ok := r.getDefinition(c.Request().Context(), c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "definition not found"})
	}
	entityID := c.Param("entity_id")

	inst, err := def.Start(c.Request().Context(), entityID)
	if err != nil {
		return jsonErr(c, err)
	}
	r.putInstance(entityID, inst)

	return c.JSON(http.StatusOK, snapshotResponse(inst))
}

func (r *Registry) load(c echo.Context) error {
	def, ok := r.getDefinition(c.Request().Context(), c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "definition not found"})
	}
	entityID := c.Param("entity_id")

	inst, err := def.Load(c.Request().Context(), entityID)
	if err != nil {
		return jsonErr(c, err)
	}
	r.putInstance(entityID, inst)

	return c.JSON(http.StatusOK, snapshotResponse(inst))
}

type restoreRequest struct {
	RemoteID      string `json:"remote_id"`
	RemoteVersion int64  `json:"remote_version"`
	State         []byte `json:"state"`
}

func (r *Registry) restore(c echo.Context) error {
	def, ok := r.getDefinition(c.Request().Context(), c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "definition not found"})
	}
	entityID := c.Param("entity_id")

	var req restoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	inst, err := def.Restore(c.Request().Context(), entityID, req.RemoteID, req.RemoteVersion, req.State)
	if err != nil {
		return jsonErr(c, err)
	}
	r.putInstance(entityID, inst)

	return c.JSON(http.StatusOK, snapshotResponse(inst))
}

type taskIDRequest struct {
	TaskID int32 `json:"task_id"`
}

func (r *Registry) complete(c echo.Context) error {
	inst, ok := r.getInstance(c.Param("entity_id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "instance not found"})
	}

	var req taskIDRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := inst.Complete(c.Request().Context(), req.TaskID); err != nil {
		return jsonErr(c, err)
	}

	return c.JSON(http.StatusOK, snapshotResponse(inst))
}

func (r *Registry) navigateTo(c echo.Context) error {
	inst, ok := r.getInstance(c.Param("entity_id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "instance not found"})
	}

	var req taskIDRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := inst.NavigateTo(c.Request().Context(), req.TaskID); err != nil {
		return jsonErr(c, err)
	}

	return c.JSON(http.StatusOK, snapshotResponse(inst))
}

func (r *Registry) setVariables(c echo.Context) error {
	inst, ok := r.getInstance(c.Param("entity_id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "instance not found"})
	}

	taskID, err := strconv.ParseInt(c.Param("task_id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid task_id"})
	}

	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := inst.SetVariables(c.Request().Context(), int32(taskID), fields); err != nil {
		return jsonErr(c, err)
	}

	return c.JSON(http.StatusOK, snapshotResponse(inst))
}

func (r *Registry) getVariables(c echo.Context) error {
	inst, ok := r.getInstance(c.Param("entity_id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "instance not found"})
	}

	taskID, err := strconv.ParseInt(c.Param("task_id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid task_id"})
	}

	vars, found := inst.GetVariables(int32(taskID))
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task is not pending"})
	}

	return c.JSON(http.StatusOK, map[string]any{"variables": vars.String()})
}

func (r *Registry) getState(c echo.Context) error {
	inst, ok := r.getInstance(c.Param("entity_id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "instance not found"})
	}

	data, err := inst.State()
	if err != nil {
		return jsonErr(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"state": data})
}

type setStateRequest struct {
	State []byte `json:"state"`
}

func (r *Registry) setState(c echo.Context) error {
	inst, ok := r.getInstance(c.Param("entity_id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "instance not found"})
	}

	var req setStateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := inst.SetState(req.State); err != nil {
		return jsonErr(c, err)
	}

	return c.JSON(http.StatusOK, snapshotResponse(inst))
}

func (r *Registry) snapshot(c echo.Context) error {
	inst, ok := r.getInstance(c.Param("entity_id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "instance not found"})
	}
	return c.JSON(http.StatusOK, snapshotResponse(inst))
}

func (r *Registry) destroy(c echo.Context) error {
	entityID := c.Param("entity_id")
	inst, ok := r.getInstance(entityID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "instance not found"})
	}

	if err := inst.Destroy(c.Request().Context()); err != nil {
		return jsonErr(c, err)
	}
	r.dropInstance(entityID)

	return c.NoContent(http.StatusNoContent)
}

func snapshotResponse(inst *engine.Instance) map[string]any {
	snap := inst.Snapshot()
	return map[string]any{
		"active":              snap.Active,
		"pending_tasks":       snap.PendingTasks,
		"visited_tasks":       snap.VisitedTasks,
		"maybe_visited_tasks": snap.MaybeVisitedTasks,
		"completed":           snap.Completed,
	}
}
