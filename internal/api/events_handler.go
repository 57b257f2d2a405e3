package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"hotwatch/internal/event"
	"hotwatch/internal/hotload"
	"hotwatch/internal/logging"
)

const eventWriteTimeout = 10 * time.Second

// EventsHandler streams reload events to WebSocket clients as JSON, one
// message per dispatched target.
type EventsHandler struct {
	Bus            *event.Bus[hotload.ReloadEvent]
	Logger         *logging.Logger
	AllowedOrigins []string
}

func (handler *EventsHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if handler.Bus == nil {
		http.Error(writer, "events unavailable", http.StatusInternalServerError)
		return
	}
	events, cancel := handler.Bus.Subscribe()
	defer cancel()

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(request *http.Request) bool {
			return isOriginAllowed(request, handler.AllowedOrigins)
		},
	}

	connection, err := upgrader.Upgrade(writer, request, nil)
	if err != nil {
		return
	}
	defer connection.Close()

	if handler.Logger != nil {
		handler.Logger.Debug("event stream client connected", map[string]string{
			"remote": request.RemoteAddr,
		})
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case published, ok := <-events:
				if !ok {
					return
				}
				if err := connection.SetWriteDeadline(time.Now().Add(eventWriteTimeout)); err != nil {
					return
				}
				if err := connection.WriteJSON(published); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// The read loop exists only to notice the client going away.
	for {
		if _, _, err := connection.ReadMessage(); err != nil {
			return
		}
	}
}

func isOriginAllowed(request *http.Request, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	origin := request.Header.Get("Origin")
	for _, candidate := range allowed {
		if candidate == origin {
			return true
		}
	}
	return false
}
