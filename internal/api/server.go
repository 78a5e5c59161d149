// Package api assembles the ops and admin HTTP server.
package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avoronov/pricedrop/internal/api/handlers"
	"github.com/avoronov/pricedrop/internal/api/middleware"
	"github.com/avoronov/pricedrop/internal/store"
)

// ServerOption attaches optional routes to the server.
type ServerOption func(*echo.Echo)

// WithEvents mounts the messenger callback endpoint.
func WithEvents(h *handlers.EventsHandler) ServerOption {
	return func(e *echo.Echo) {
		e.POST("/vk/callback", h.HandleEvent)
	}
}

// NewServer builds the Echo server with all middleware and routes attached.
// The caller starts and shuts it down.
func NewServer(st store.Store, log *slog.Logger, opts ...ServerOption) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		middleware.Recovery(log),
		middleware.RequestLog(log),
		middleware.Metrics(),
	)

	health := handlers.NewHealthHandler(st)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	items := handlers.NewItemsHandler(st)
	state := handlers.NewStateHandler(st)

	v1 := e.Group("/api/v1")
	v1.GET("/items", items.ListItems)
	v1.GET("/items/:id", items.GetItem)
	v1.GET("/items/:id/subscribers", items.ListSubscribers)
	v1.DELETE("/items/:id", items.DeleteItem)
	v1.GET("/state", state.GetState)

	for _, opt := range opts {
		opt(e)
	}

	return e
}
