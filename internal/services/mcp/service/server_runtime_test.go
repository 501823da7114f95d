package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/polyhedral/d20mcp/internal/services/mcp/domain"
)

// TestRunWithTransportServesAndStops ensures runWithTransport serves tool
// calls end to end and exits on cancel.
func TestRunWithTransportServesAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- runWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer clientCancel()

	session, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	defer session.Close()

	tools, err := session.ListTools(clientCtx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := make(map[string]bool, len(tools.Tools))
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"roll", "roll_detailed", "roll_batch", "validate_syntax"} {
		if !names[want] {
			t.Errorf("tool %q is not registered; got %v", want, names)
		}
	}

	// 2d1+3 is fully deterministic: one-sided dice always land on 1
	result, err := session.CallTool(clientCtx, &mcp.CallToolParams{
		Name:      "roll",
		Arguments: map[string]any{"expression": "2d1+3"},
	})
	if err != nil {
		t.Fatalf("call roll: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}

	raw, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out domain.RollResult
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal roll result: %v", err)
	}
	if out.Total == nil || *out.Total != 5 {
		t.Errorf("total = %v, want 5", out.Total)
	}

	cancel()

	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("runWithTransport returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runWithTransport did not stop after cancel")
	}
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	err := Run(context.Background(), Config{Transport: TransportKind("carrier-pigeon")})
	if err == nil {
		t.Fatal("expected error for unknown transport")
	}
}

func TestServeWithTransportNilServer(t *testing.T) {
	var s *Server
	if err := s.serveWithTransport(context.Background(), &mcp.StdioTransport{}); err == nil {
		t.Fatal("expected error for nil server")
	}
}

func TestAddMCPToolRejectsUnknownHandler(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v0.0.1"}, nil)
	err := addMCPTool(server, &mcp.Tool{Name: "bogus"}, func() {})
	if err == nil {
		t.Fatal("expected error for unsupported handler type")
	}
}

func TestRegisterDiceTools(t *testing.T) {
	registrar := &recordingRegistrar{}
	if err := registerDiceTools(registrar, domain.NewRoller()); err != nil {
		t.Fatalf("registerDiceTools: %v", err)
	}
	want := []string{"roll", "roll_detailed", "roll_batch", "validate_syntax"}
	if len(registrar.tools) != len(want) {
		t.Fatalf("registered %d tools, want %d", len(registrar.tools), len(want))
	}
	for i, name := range want {
		if registrar.tools[i] != name {
			t.Errorf("tools[%d] = %q, want %q", i, registrar.tools[i], name)
		}
	}
}

type recordingRegistrar struct {
	tools []string
}

func (r *recordingRegistrar) AddTool(tool *mcp.Tool, handler any) error {
	r.tools = append(r.tools, tool.Name)
	return nil
}

func TestNewServerRegistersWithoutError(t *testing.T) {
	server, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if server.mcpServer == nil {
		t.Fatal("expected configured MCP server")
	}
	if server.roller == nil {
		t.Fatal("expected configured roller")
	}
}
