package service

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// handleMessages handles POST /mcp for JSON-RPC requests.
// It maps transport-agnostic JSON-RPC payloads onto session-local MCP
// connection state so one client can stay contiguous across multiple HTTP
// round-trips. It is the write path for all request/notification traffic and
// performs per-session validation before routing into the MCP runtime.
func (t *HTTPTransport) handleMessages(w http.ResponseWriter, r *http.Request) {
	if err := t.validateLocalRequest(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !t.authorizeRequest(w, r) {
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Failed to read request body: %v", err)
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	msg, err := jsonrpc.DecodeMessage(body)
	if err != nil {
		log.Printf("Invalid JSON-RPC message: %v", err)
		http.Error(w, "Invalid JSON-RPC message", http.StatusBadRequest)
		return
	}

	// The MCP HTTP transport requires initialize before other methods.
	isInitialize := false
	if req, ok := msg.(*jsonrpc.Request); ok {
		isInitialize = req.Method == "initialize"
	}

	// Resolve the session from the Mcp-Session-Id header
	var session *httpSession
	var exists bool

	sessionID := strings.TrimSpace(r.Header.Get("Mcp-Session-Id"))
	if sessionID != "" {
		t.sessionsMu.RLock()
		session, exists = t.sessions[sessionID]
		t.sessionsMu.RUnlock()
		if !exists || session == nil {
			if !isInitialize {
				writeSessionError(w, "Invalid session ID")
				return
			}
			session = nil
			exists = false
		}
	}

	if !exists || session == nil {
		if !isInitialize {
			writeSessionError(w, "Invalid or missing session ID")
			return
		}
		// Create a new session for this client
		conn, err := t.Connect(r.Context())
		if err != nil {
			log.Printf("Failed to create session: %v", err)
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		sessionID = conn.SessionID()
		t.sessionsMu.RLock()
		session = t.sessions[sessionID]
		t.sessionsMu.RUnlock()

		w.Header().Set("Mcp-Session-Id", sessionID)
	}

	t.sessionsMu.Lock()
	if session != nil {
		session.lastUsed = time.Now()
	}
	t.sessionsMu.Unlock()

	if session == nil {
		http.Error(w, "Failed to retrieve session after creation", http.StatusInternalServerError)
		return
	}

	// Start the per-session MCP runtime if it is not already running
	t.ensureServerRunning(session)

	// In JSON-RPC 2.0, requests carry a non-zero ID and expect a response;
	// notifications carry no ID and complete with 204.
	var isRequest bool
	switch v := msg.(type) {
	case *jsonrpc.Request:
		isRequest = v.ID != jsonrpc.ID{}
	case *jsonrpc.Response:
		http.Error(w, "Invalid message type: response", http.StatusBadRequest)
		return
	default:
		isRequest = true
	}

	if !isRequest {
		select {
		case session.conn.reqChan <- msg:
		case <-r.Context().Done():
			http.Error(w, "Request cancelled", http.StatusRequestTimeout)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	req, ok := msg.(*jsonrpc.Request)
	if !ok {
		http.Error(w, "Invalid request type", http.StatusBadRequest)
		return
	}

	// Register a channel to receive the response for this specific request
	respChan := make(chan jsonrpc.Message, 1)
	session.conn.pendingMu.Lock()
	session.conn.pendingReqs[req.ID] = respChan
	session.conn.pendingMu.Unlock()

	removePending := func() {
		session.conn.pendingMu.Lock()
		delete(session.conn.pendingReqs, req.ID)
		session.conn.pendingMu.Unlock()
	}

	select {
	case session.conn.reqChan <- msg:
	case <-r.Context().Done():
		removePending()
		http.Error(w, "Request cancelled", http.StatusRequestTimeout)
		return
	}

	select {
	case resp := <-respChan:
		removePending()
		data, err := jsonrpc.EncodeMessage(resp)
		if err != nil {
			log.Printf("Failed to encode response: %v", err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(data); err != nil {
			log.Printf("Failed to write response: %v", err)
		}
	case <-r.Context().Done():
		removePending()
		http.Error(w, "Request cancelled", http.StatusRequestTimeout)
	case <-time.After(defaultRequestTimeout):
		removePending()
		http.Error(w, "Request timeout", http.StatusRequestTimeout)
	}
}

func writeSessionError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    -32000,
			"message": message,
		},
		"id": nil,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		_, _ = w.Write([]byte("{\"jsonrpc\":\"2.0\",\"error\":{\"code\":-32000,\"message\":\"Session error\"},\"id\":null}"))
		return
	}
	_, _ = w.Write(data)
}
