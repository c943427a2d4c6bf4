package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"comprules/internal/snapshot"
	"comprules/internal/telemetry"
)

// handleSnapshot serves the current rule snapshot with ETag support.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := snapshot.Load()
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == snap.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", snap.ETag)
	_ = json.NewEncoder(w).Encode(snap)
}

// handleStream streams snapshot ETag updates over SSE. Consumers refetch
// the snapshot when an event arrives.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		InternalError(w, r, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// The gauge mirrors the subscriber registry so it cannot drift from it.
	ch, unsub := snapshot.Subscribe()
	defer func() {
		unsub()
		telemetry.SSEClients.Set(float64(snapshot.SubscriberCount()))
	}()
	telemetry.SSEClients.Set(float64(snapshot.SubscriberCount()))

	// Send the current ETag immediately so new consumers can sync.
	fmt.Fprintf(w, "event: etag\ndata: %s\n\n", snapshot.Load().ETag)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case etag, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: etag\ndata: %s\n\n", etag)
			flusher.Flush()
		}
	}
}
