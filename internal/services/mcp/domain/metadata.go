package domain

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/polyhedral/d20mcp/internal/platform/id"
)

// invocationIDMetaKey is the CallToolResult meta key carrying the
// correlation identifier for one tool call.
const invocationIDMetaKey = "invocation-id"

// NewInvocationID generates a correlation identifier for a tool call.
func NewInvocationID() (string, error) {
	return id.NewID()
}

// CallToolResultWithMetadata builds a tool result carrying correlation
// metadata so clients can reference a specific roll in follow-ups.
func CallToolResultWithMetadata(invocationID string) *mcp.CallToolResult {
	if invocationID == "" {
		return &mcp.CallToolResult{}
	}
	return &mcp.CallToolResult{
		Meta: map[string]any{
			invocationIDMetaKey: invocationID,
		},
	}
}
