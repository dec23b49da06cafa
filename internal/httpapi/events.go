package httpapi

import (
	"net/http"
	"time"
)

// handleTaskEvents streams task lifecycle events over a websocket. The
// subscription is dropped as soon as the client goes away; a slow client
// loses events instead of stalling the registry.
func (s *Server) handleTaskEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := s.service.Subscribe()
	defer cancel()

	ctx := r.Context()

	// Reads are discarded; the read loop only notices the client closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		}
	}
}
