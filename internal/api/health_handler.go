package api

import (
	"encoding/json"
	"net/http"

	"hotwatch/internal/hotload"
)

// HealthHandler reports engine liveness. A fail-stopped engine shows up
// here as state "stopped" with zero active handles, which is how operators
// notice the loop went idle.
type HealthHandler struct {
	Engine *hotload.Engine
}

type healthPayload struct {
	Status string        `json:"status"`
	Engine hotload.Stats `json:"engine"`
}

func (handler *HealthHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	stats := handler.Engine.Stats()

	payload := healthPayload{Status: "ok", Engine: stats}
	status := http.StatusOK
	if stats.State != "running" {
		payload.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}
