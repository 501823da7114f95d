// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/polyhedral/d20mcp/internal/platform/config"
	"github.com/polyhedral/d20mcp/internal/platform/otel"
	"github.com/polyhedral/d20mcp/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	HTTPAddr  string `env:"POLYHEDRAL_MCP_HTTP_ADDR"  envDefault:"localhost:8081"`
	Transport string `env:"POLYHEDRAL_MCP_TRANSPORT"  envDefault:"stdio"`
	AuthToken string `env:"POLYHEDRAL_MCP_AUTH_TOKEN"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "mcp")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	return service.Run(ctx, service.Config{
		Transport: service.TransportKind(cfg.Transport),
		HTTPAddr:  cfg.HTTPAddr,
		AuthToken: cfg.AuthToken,
	})
}
