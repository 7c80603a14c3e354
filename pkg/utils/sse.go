package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/finpsyche/advisor/backend/pkg/logger"
)

// SetupSSEHeaders prepares w for Server-Sent Events.
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// SendSSEEvent writes one named event with a JSON payload and flushes it.
func SendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		logger.Component("sse").WithError(err).Warn("failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData)
	flusher.Flush()
}
