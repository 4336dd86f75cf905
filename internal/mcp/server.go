package mcp

import (
	"context"
	"sync"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"pipewatch/internal/registry"
	"pipewatch/internal/terminal"
)

// Server exposes the registries of one loaded run as MCP tools. The
// registries are not safe for concurrent use, so every handler holds mu.
type Server struct {
	mu        sync.Mutex
	plugins   *registry.PluginRegistry
	instances *registry.InstanceRegistry
	terminal  *terminal.Registry
	mcp       *sdk.Server
}

func NewServer(plugins *registry.PluginRegistry, instances *registry.InstanceRegistry, term *terminal.Registry, version string) *Server {
	s := &Server{
		plugins:   plugins,
		instances: instances,
		terminal:  term,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "pipewatch",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
