package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/providers"
)

// SSEHandler streams provider and enquiry events over Server-Sent Events
type SSEHandler struct {
	eventBus providers.EventBus
	clients  int64
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{eventBus: eventBus}
}

// StreamProviderUpdates handles SSE connections for provider listing changes.
// GET /api/stream/providers?provider_id=X narrows the stream to one listing.
func (h *SSEHandler) StreamProviderUpdates(w http.ResponseWriter, r *http.Request) {
	providerID := r.URL.Query().Get("provider_id")
	h.stream(w, r, providers.EventChannelProviderUpdates, func(event *entities.ProviderEvent) bool {
		return providerID == "" || event.ProviderID == providerID
	})
}

// StreamEnquiries handles SSE connections for enquiry creation events.
// GET /api/stream/enquiries
func (h *SSEHandler) StreamEnquiries(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, providers.EventChannelEnquiries, nil)
}

// GetClientCount returns the number of connected SSE clients
func (h *SSEHandler) GetClientCount() int64 {
	return atomic.LoadInt64(&h.clients)
}

func (h *SSEHandler) stream(
	w http.ResponseWriter,
	r *http.Request,
	channel string,
	keep func(*entities.ProviderEvent) bool,
) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		log.Error().Str("channel", channel).Err(err).Msg("Failed to subscribe")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	atomic.AddInt64(&h.clients, 1)
	defer atomic.AddInt64(&h.clients, -1)

	h.sendEvent(w, "connected", map[string]interface{}{
		"channel":   channel,
		"timestamp": time.Now(),
	})
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug().Str("channel", channel).Msg("SSE client disconnected")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event, open := <-eventChan:
			if !open {
				return
			}
			if event == nil {
				continue
			}
			if keep != nil && !keep(event) {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal SSE event")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
}
