// Package service wires protocol transport to the dice domain.
//
// It is the transport adapter layer: the package knows how to run MCP over
// stdio or HTTP and delegates roll semantics to domain handlers.
package service
