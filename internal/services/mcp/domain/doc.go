// Package domain translates MCP tool calls into dice engine operations.
//
// The package is intentionally explicit about that mapping:
// - decode MCP tool input into an engine request,
// - route the call through the narrow Roller capability,
// - and surface structured outputs that MCP clients can render.
//
// Engine failures are data, not protocol errors: every roll error becomes
// an error payload (kind + message) inside the tool result, so a bad
// expression never fails the MCP call itself.
package domain
