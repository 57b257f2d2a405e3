package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"hotwatch/internal/event"
	"hotwatch/internal/hotload"
)

func TestEventsHandlerStreamsReloadEvents(t *testing.T) {
	bus := event.NewBus[hotload.ReloadEvent](8)
	defer bus.Close()

	server := httptest.NewServer(&EventsHandler{Bus: bus})
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	connection, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer connection.Close()

	// The subscription is taken before the upgrade completes, but give the
	// writer goroutine a moment to start anyway.
	time.Sleep(50 * time.Millisecond)
	bus.Publish(hotload.ReloadEvent{
		Target:    "/etc/app/config.yaml",
		Reason:    hotload.ReasonWrite,
		Watchers:  2,
		Timestamp: time.Now().UTC(),
	})

	var received hotload.ReloadEvent
	_ = connection.SetReadDeadline(time.Now().Add(3 * time.Second))
	if err := connection.ReadJSON(&received); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if received.Target != "/etc/app/config.yaml" {
		t.Fatalf("unexpected target %q", received.Target)
	}
	if received.Reason != hotload.ReasonWrite || received.Watchers != 2 {
		t.Fatalf("unexpected event: %+v", received)
	}
}

func TestEventsHandlerRejectsDisallowedOrigin(t *testing.T) {
	bus := event.NewBus[hotload.ReloadEvent](8)
	defer bus.Close()

	server := httptest.NewServer(&EventsHandler{
		Bus:            bus,
		AllowedOrigins: []string{"https://allowed.example"},
	})
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	header := http.Header{"Origin": []string{"https://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatal("expected handshake rejection for disallowed origin")
	}
}

func TestEventsHandlerWithoutBusFails(t *testing.T) {
	server := httptest.NewServer(&EventsHandler{})
	defer server.Close()

	response, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", response.StatusCode)
	}
}

func TestIsOriginAllowed(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	request.Header.Set("Origin", "https://ok.example")

	if !isOriginAllowed(request, nil) {
		t.Fatal("empty allow list should accept any origin")
	}
	if !isOriginAllowed(request, []string{"https://ok.example"}) {
		t.Fatal("listed origin should be accepted")
	}
	if isOriginAllowed(request, []string{"https://other.example"}) {
		t.Fatal("unlisted origin should be rejected")
	}
}
