package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/polyhedral/d20mcp/internal/platform/branding"
	"github.com/polyhedral/d20mcp/internal/services/mcp/domain"
)

const (
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"

	mcpDiceToolsModuleName = "dice-tools"
)

// serverName identifies this MCP server to clients.
var serverName = branding.AppName + " MCP"

type mcpRegistrationModule struct {
	name     string
	register func(mcpRegistrationTarget) error
}

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.RollInput, domain.RollResult](),
	newMCPToolRegistrar[domain.RollDetailedInput, domain.RollDetailedResult](),
	newMCPToolRegistrar[domain.RollBatchInput, domain.RollBatchResult](),
	newMCPToolRegistrar[domain.ValidateSyntaxInput, domain.ValidateSyntaxResult](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func newMCPRegistrationModules(roller domain.Roller) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpDiceToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerDiceTools(registrar, roller)
			},
		},
	}
}

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over HTTP/SSE for browser or remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the HTTP server address (e.g., "localhost:8081").
	// Defaults to localhost:8081 for HTTP transport.
	HTTPAddr string
	// AuthToken, when set, requires HTTP clients to present it as a bearer
	// token. Stdio transport inherits process-level trust and ignores it.
	AuthToken string
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	roller    domain.Roller
}

// New creates a configured MCP server backed by the dice engine.
func New() (*Server, error) {
	return newServer(domain.NewRoller())
}

// newServer creates MCP tool handler bindings once so stdio and HTTP runs
// share identical tool behavior.
func newServer(roller domain.Roller) (*Server, error) {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		CompletionHandler: completionHandler,
	})

	server := &Server{mcpServer: mcpServer, roller: roller}
	for _, module := range newMCPRegistrationModules(roller) {
		if err := module.register(mcpServerRegistrationAdapter{server: mcpServer}); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}

	return server, nil
}
