package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type StreamHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
}

type streamHandlerImpl struct {
	dispatcher notification.Dispatcher
	keepalive  time.Duration
}

func NewStreamHandler(dispatcher notification.Dispatcher) StreamHandler {
	return &streamHandlerImpl{
		dispatcher: dispatcher,
		keepalive:  30 * time.Second,
	}
}

// Stream handles the SSE connection for live clock events
func (h *streamHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	subscriberID, events, cleanup := h.dispatcher.Subscribe()
	defer cleanup()

	slog.Debug("Stream subscriber connected", "subscriber_id", subscriberID)
	defer slog.Debug("Stream subscriber disconnected", "subscriber_id", subscriberID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"subscriber_id\":\"%s\"}\n\n", subscriberID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("Failed to encode stream event", "event", event.Event, "error", err)
				continue
			}
			if event.ID != "" {
				fmt.Fprintf(w, "id: %s\n", event.ID)
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// Stats handles GET /stream/stats
func (h *streamHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.dispatcher.Stats())
}
