// Command engine-server exposes the workflow engine over HTTP, the
// reference implementation of the §6 host bridge. It is a consumer of the
// engine, not part of the engine's own surface, so it does not violate the
// "no network/RPC transport" non-goal for the interpreter itself — grounded
// on the teacher's cmd/orchestrator/main.go wiring (Echo + middleware +
// graceful shutdown via common/server).
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/flowcore/bpmnengine/cmd/engine-server/handlers"
	"github.com/flowcore/bpmnengine/common/bootstrap"
	"github.com/flowcore/bpmnengine/common/repository"
	"github.com/flowcore/bpmnengine/common/server"
)

func main() {
	ctx := context.Background()

	components, err := bootstrap.Setup(ctx, "engine-server")
	if err != nil {
		panic(err)
	}
	defer components.Shutdown(ctx)

	store := repository.NewInstanceRepository(components.DB)

	var notifier handlers.Notifier
	if components.Redis != nil {
		notifier = components.Redis
	}

	var defCache handlers.DefinitionCache
	if components.Cache != nil {
		defCache = components.Cache
	}

	registry := handlers.NewRegistry(store, notifier, defCache, components.Config.Engine.DefinitionCacheTTL, components.Logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	registry.Register(e)

	srv := server.New("engine-server", components.Config.Service.Port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
