// Package api exposes the hotwatch daemon's HTTP surface: a WebSocket
// stream of reload events, a health endpoint, and Prometheus metrics.
package api

import (
	"net/http"

	"hotwatch/internal/event"
	"hotwatch/internal/hotload"
	"hotwatch/internal/logging"
)

type Deps struct {
	Engine         *hotload.Engine
	Bus            *event.Bus[hotload.ReloadEvent]
	Logger         *logging.Logger
	Metrics        http.Handler
	AllowedOrigins []string
}

func RegisterRoutes(mux *http.ServeMux, deps Deps) {
	mux.Handle("/api/events", &EventsHandler{
		Bus:            deps.Bus,
		Logger:         deps.Logger,
		AllowedOrigins: deps.AllowedOrigins,
	})
	mux.Handle("/api/health", &HealthHandler{Engine: deps.Engine})
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics)
	}
}
