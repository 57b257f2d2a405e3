package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotwatch/internal/hotload"
	"hotwatch/internal/source"
)

func newRunningEngine(t *testing.T) *hotload.Engine {
	t.Helper()
	engine := hotload.New(hotload.Options{
		WaitTimeout: 20 * time.Millisecond,
		NewSource: func() (source.Source, error) {
			return source.NewFake(), nil
		},
	})
	if err := engine.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(engine.Stop)
	if err := engine.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	return engine
}

func TestHealthHandlerReportsRunningEngine(t *testing.T) {
	engine := newRunningEngine(t)
	server := httptest.NewServer(&HealthHandler{Engine: engine})
	defer server.Close()

	response, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
	var payload healthPayload
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Status != "ok" || payload.Engine.State != "running" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestHealthHandlerReportsStoppedEngineAsDegraded(t *testing.T) {
	engine := newRunningEngine(t)
	engine.Stop()

	server := httptest.NewServer(&HealthHandler{Engine: engine})
	defer server.Close()

	response, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", response.StatusCode)
	}
	var payload healthPayload
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Status != "degraded" || payload.Engine.State != "stopped" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
