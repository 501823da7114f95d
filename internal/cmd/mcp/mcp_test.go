package mcp

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "localhost:8081" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("expected default transport stdio, got %q", cfg.Transport)
	}
	if cfg.AuthToken != "" {
		t.Fatalf("expected empty default auth token, got %q", cfg.AuthToken)
	}
}

func TestParseConfigEnvOverrides(t *testing.T) {
	t.Setenv("POLYHEDRAL_MCP_HTTP_ADDR", "env-http")
	t.Setenv("POLYHEDRAL_MCP_TRANSPORT", "http")
	t.Setenv("POLYHEDRAL_MCP_AUTH_TOKEN", "env-token")

	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "env-http" {
		t.Fatalf("expected env http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Transport != "http" {
		t.Fatalf("expected env transport http, got %q", cfg.Transport)
	}
	if cfg.AuthToken != "env-token" {
		t.Fatalf("expected env auth token, got %q", cfg.AuthToken)
	}
}

func TestParseConfigFlagOverrides(t *testing.T) {
	t.Setenv("POLYHEDRAL_MCP_HTTP_ADDR", "env-http")

	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	args := []string{"-http-addr", "flag-http", "-transport", "http"}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-http" {
		t.Fatalf("expected flag http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Transport != "http" {
		t.Fatalf("expected transport http, got %q", cfg.Transport)
	}
}
