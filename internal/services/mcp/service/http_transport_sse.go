package service

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// handleSSE handles GET /mcp for Server-Sent Events streaming.
// SSE is kept as a notification-only path so request/reply operations stay
// decoupled from streaming delivery.
func (t *HTTPTransport) handleSSE(w http.ResponseWriter, r *http.Request) {
	if err := t.validateLocalRequest(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !t.authorizeRequest(w, r) {
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := strings.TrimSpace(r.Header.Get("Mcp-Session-Id"))
	var session *httpSession
	var exists bool
	if sessionID != "" {
		t.sessionsMu.RLock()
		session, exists = t.sessions[sessionID]
		t.sessionsMu.RUnlock()
	}

	if !exists || session == nil {
		http.Error(w, "Invalid or missing session ID", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	ctx := r.Context()

	touchSession := func() {
		t.sessionsMu.Lock()
		if s, ok := t.sessions[sessionID]; ok && s != nil {
			s.lastUsed = time.Now()
		}
		t.sessionsMu.Unlock()
	}

	// Keep the session out of idle cleanup while this stream is open
	touchSession()
	ticker := time.NewTicker(sseHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-session.conn.closed:
			return
		case <-ticker.C:
			touchSession()
		case msg := <-session.conn.notifyChan:
			touchSession()

			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Failed to marshal SSE message: %v", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}
