package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/polyhedral/d20mcp/internal/services/mcp/domain"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
}

func registerDiceTools(registrar mcpRegistrationTarget, roller domain.Roller) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.RollTool(), handler: domain.RollHandler(roller)},
		{tool: domain.RollDetailedTool(), handler: domain.RollDetailedHandler(roller)},
		{tool: domain.RollBatchTool(), handler: domain.RollBatchHandler(roller)},
		{tool: domain.ValidateSyntaxTool(), handler: domain.ValidateSyntaxHandler(roller)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}
